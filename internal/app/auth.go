package app

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zjgaokao/major-advisor/internal/config"
)

const (
	metricsRealm    = `Basic realm="major-advisor metrics"`
	MsgUnauthorized = "需要有效的监控凭据。"
)

// metricsAuthMiddleware guards the Prometheus scrape endpoint with Basic
// Auth. With auth disabled every request passes.
func metricsAuthMiddleware(cfg config.MetricsConfig) gin.HandlerFunc {
	wantUser, wantPass := []byte(cfg.Username), []byte(cfg.Password)

	return func(c *gin.Context) {
		if !cfg.AuthEnabled {
			c.Next()
			return
		}

		user, pass, ok := c.Request.BasicAuth()
		// Both comparisons always run.
		userOK := subtle.ConstantTimeCompare([]byte(user), wantUser) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), wantPass) == 1
		if !ok || !userOK || !passOK {
			c.Header("WWW-Authenticate", metricsRealm)
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: MsgUnauthorized, Code: "unauthorized"})
			return
		}
		c.Next()
	}
}
