package errors

import (
	"errors"
	"testing"
)

func TestWrapper(t *testing.T) {
	wrapper := NewWrapper("recommend", "generate")

	t.Run("Wrap returns nil for nil error", func(t *testing.T) {
		if result := wrapper.Wrap(nil, "推荐生成失败"); result != nil {
			t.Errorf("expected nil, got %v", result)
		}
	})

	t.Run("Wrap creates WrappedError", func(t *testing.T) {
		baseErr := errors.New("connection reset")
		wrapped := wrapper.Wrap(baseErr, "推荐生成失败")

		var wrappedErr *WrappedError
		if !errors.As(wrapped, &wrappedErr) {
			t.Fatal("expected WrappedError type")
		}
		if wrappedErr.Component != "recommend" || wrappedErr.Operation != "generate" {
			t.Errorf("unexpected context %s:%s", wrappedErr.Component, wrappedErr.Operation)
		}
		if !errors.Is(wrapped, baseErr) {
			t.Error("wrapped error should unwrap to base error")
		}
	})

	t.Run("Wrapf formats message", func(t *testing.T) {
		wrapped := wrapper.Wrapf(errors.New("x"), "调用 %s 失败", "gemini")
		var wrappedErr *WrappedError
		if !errors.As(wrapped, &wrappedErr) || wrappedErr.UserMessage != "调用 gemini 失败" {
			t.Errorf("unexpected user message: %v", wrapped)
		}
	})
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), "boom"},
		{"validation", NewValidationError("gaokaoScore", "缺少考生分数或排名信息。"), "缺少考生分数或排名信息。"},
		{
			"wrapped with cause",
			NewWrapper("recommend", "generate").Wrap(errors.New("timeout"), "推荐生成失败"),
			"推荐生成失败：timeout",
		},
		{
			"wrapped validation shows validation message",
			NewWrapper("recommend", "generate").Wrap(NewValidationError("f", "必须选择 3 个选考科目。"), "推荐生成失败"),
			"必须选择 3 个选考科目。",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
