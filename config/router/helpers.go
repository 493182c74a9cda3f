package router

import (
	"net/http"

	"github.com/akeren/multiverse-waitlist/internal/log"
)

func GetLogger(ctx *RequestContext) *log.Logger {
	return log.GetLoggerInstanceFromContext(ctx.Request.Context(), nil)
}

func OKResult(data any, message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusOK,
		Data:       data,
		Message:    message,
	}
}

func TooManyRequestsResult(data RateLimitResponse) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusTooManyRequests,
		Data:       data,
		Message:    "Too many requests",
	}
}

func BadRequestResult(message string, payload any) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusBadRequest,
		Data:       payload,
		Message:    message,
	}
}

func UnauthorizedResult(message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusUnauthorized,
		Message:    message,
	}
}

func NotFoundResult(message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusNotFound,
		Message:    message,
	}
}

func MethodNotAllowedResult() *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    "Method not allowed",
	}
}

func InternalServerErrorResult(message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusInternalServerError,
		Message:    message,
	}
}

func ErrorResult(statusCode int, message string, data any) *ServiceResult {
	return &ServiceResult{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
	}
}
