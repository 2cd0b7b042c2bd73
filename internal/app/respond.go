package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/zjgaokao/major-advisor/internal/errors"
	"github.com/zjgaokao/major-advisor/internal/sentry"
)

// statusClientClosedRequest is used when the caller went away mid-flow.
const statusClientClosedRequest = 499

// MsgInternal hides unexpected failures from clients.
const MsgInternal = "服务器内部错误，请稍后重试。"

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps the error taxonomy to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, apperrors.ErrSchemaViolation), errors.Is(err, apperrors.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// messageFor renders the user-facing text for err.
func messageFor(err error) string {
	var nf *apperrors.NotFoundError
	if errors.As(err, &nf) {
		return fmt.Sprintf("未找到院校 %q 的专业代码为 %q 的详细信息。", nf.University, nf.MajorCode)
	}
	if apperrors.Kind(err) == "internal_error" && !errors.Is(err, context.DeadlineExceeded) {
		return MsgInternal
	}
	return apperrors.UserMessage(err)
}

// respondError writes err as JSON, attaches it to the gin context for the
// access log and reports unexpected ones to Sentry.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		sentry.CaptureExceptionWithContext(c.Request.Context(), err)
	}
	c.AbortWithStatusJSON(status, errorBody{
		Error: messageFor(err),
		Code:  apperrors.Kind(err),
	})
}
