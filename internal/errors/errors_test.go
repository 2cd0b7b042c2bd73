package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"validation", NewValidationError("selectedSubjects", "必须选择 3 个选考科目。"), "validation_error"},
		{"wrapped validation", fmt.Errorf("recommend: %w", NewValidationError("score", "x")), "validation_error"},
		{"not found sentinel", ErrNotFound, "not_found"},
		{"not found typed", NewNotFoundError("浙江大学", "000000"), "not_found"},
		{"schema violation", NewSchemaViolation("missing reasoning", nil), "schema_violation"},
		{"upstream", NewUpstreamError("gemini", "gemini-2.5-flash", context.DeadlineExceeded), "upstream_error"},
		{"rate limited", ErrRateLimitExceeded, "rate_limited"},
		{"other", errors.New("boom"), "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypedErrorsUnwrap(t *testing.T) {
	cause := errors.New("invalid json")
	sv := NewSchemaViolation("decode answer", cause)
	if !errors.Is(sv, ErrSchemaViolation) || !errors.Is(sv, cause) {
		t.Error("schema violation should match both the sentinel and its cause")
	}

	up := NewUpstreamError("groq", "llama", context.DeadlineExceeded)
	if !errors.Is(up, ErrUpstream) || !errors.Is(up, context.DeadlineExceeded) {
		t.Error("upstream error should match both the sentinel and its cause")
	}

	var nf *NotFoundError
	if !errors.As(fmt.Errorf("lookup: %w", NewNotFoundError("a", "b")), &nf) || nf.MajorCode != "b" {
		t.Error("errors.As should find NotFoundError")
	}
}
