package genai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	apperrors "github.com/zjgaokao/major-advisor/internal/errors"
	"github.com/zjgaokao/major-advisor/internal/major"
)

// ParseOutput validates the model's final answer. The answer must be one
// JSON object with a recommendedMajors array and a non-blank reasoning;
// every listed major needs a name, a code and a university, and numeric
// fields must be whole numbers or null. Anything else is a schema violation.
func ParseOutput(text string) (*Output, error) {
	body := extractJSON(text)
	if body == "" {
		return nil, apperrors.NewSchemaViolation("model returned no output", nil)
	}

	var raw struct {
		RecommendedMajors json.RawMessage `json:"recommendedMajors"`
		Reasoning         *string         `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, apperrors.NewSchemaViolation("answer is not a JSON object", err)
	}
	if len(raw.RecommendedMajors) == 0 || bytes.Equal(raw.RecommendedMajors, []byte("null")) {
		return nil, apperrors.NewSchemaViolation("missing recommendedMajors", nil)
	}
	if raw.Reasoning == nil || strings.TrimSpace(*raw.Reasoning) == "" {
		return nil, apperrors.NewSchemaViolation("missing reasoning", nil)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw.RecommendedMajors, &items); err != nil {
		return nil, apperrors.NewSchemaViolation("recommendedMajors is not an array", err)
	}

	majors := make([]major.Major, 0, len(items))
	for i, item := range items {
		m, err := decodeMajor(item)
		if err != nil {
			return nil, apperrors.NewSchemaViolation(fmt.Sprintf("recommendedMajors[%d]", i), err)
		}
		majors = append(majors, m)
	}

	return &Output{
		RecommendedMajors: majors,
		Reasoning:         strings.TrimSpace(*raw.Reasoning),
	}, nil
}

func decodeMajor(item json.RawMessage) (major.Major, error) {
	dec := json.NewDecoder(bytes.NewReader(item))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return major.Major{}, err
	}
	if fields == nil {
		return major.Major{}, fmt.Errorf("not an object")
	}
	// 612.0 is a valid score; 612.5 is not.
	for k, v := range fields {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if _, err := n.Int64(); err == nil {
			continue
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) || strings.ContainsAny(n.String(), "eE") {
			continue
		}
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return major.Major{}, fmt.Errorf("%s: %s out of range", k, n)
		}
		fields[k] = int64(f)
	}
	normalized, err := json.Marshal(fields)
	if err != nil {
		return major.Major{}, err
	}

	var m major.Major
	if err := json.Unmarshal(normalized, &m); err != nil {
		return major.Major{}, err
	}
	switch {
	case strings.TrimSpace(m.MajorName) == "":
		return major.Major{}, fmt.Errorf("missing majorName")
	case strings.TrimSpace(m.MajorCode) == "":
		return major.Major{}, fmt.Errorf("missing majorCode")
	case strings.TrimSpace(m.University) == "":
		return major.Major{}, fmt.Errorf("missing university")
	}
	return m, nil
}

// extractJSON strips Markdown code fences and any prose around the outermost
// JSON object.
func extractJSON(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if s == "" || s[0] == '{' {
		return s
	}
	start, end := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
