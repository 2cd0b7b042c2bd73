// Package main is a container health probe. It exits 0 when the local
// server answers HEAD /livez with 200 and 1 otherwise.
package main

import (
	"context"
	"net/http"
	"os"
	"time"
)

const probeTimeout = 8 * time.Second

func main() {
	port := os.Getenv("GAOKAO_PORT")
	if port == "" {
		port = "10000"
	}
	os.Exit(probe("http://localhost:" + port + "/livez"))
}

func probe(url string) int {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, http.NoBody)
	if err != nil {
		return 1
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 1
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}
