// Package data provides the static admission dataset the catalog is built
// from. The dataset is embedded at build time and decoded once per process.
package data

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"github.com/zjgaokao/major-advisor/internal/major"
	"gopkg.in/yaml.v3"
)

//go:embed majors.yaml
var majorsYAML []byte

// DefaultSeed is the probability seed used when none is configured.
const DefaultSeed int64 = 2025

// Load decodes the embedded dataset and fills in admission probabilities
// deterministically from seed.
func Load(seed int64) ([]major.Major, error) {
	return Decode(bytes.NewReader(majorsYAML), seed)
}

// Decode reads a YAML list of records from r. Records must carry a
// university, a major code and a name, and composite keys must be unique.
func Decode(r io.Reader, seed int64) ([]major.Major, error) {
	var records []major.Major
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	seen := make(map[major.Key]int, len(records))
	var errs []error
	for i := range records {
		m := &records[i]
		if m.University == "" || m.MajorCode == "" || m.MajorName == "" {
			errs = append(errs, fmt.Errorf("record %d: university, majorCode and majorName are required", i))
			continue
		}
		if prev, dup := seen[m.Key()]; dup {
			errs = append(errs, fmt.Errorf("record %d: duplicate key %s (first at %d)", i, m.Key(), prev))
			continue
		}
		seen[m.Key()] = i
		if m.AdmissionProbability == nil {
			m.AdmissionProbability = Probability(seed, m.Key(), m.EstimatedRanking2025)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return records, nil
}
