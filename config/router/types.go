package router

import (
	"github.com/gin-gonic/gin"
)

type RequestContext = gin.Context

type MiddlewareFunc = gin.HandlerFunc

// ServiceResult is what every handler returns. For error results Message is
// rendered as the "error" field; for successes it is the optional "message".
type ServiceResult struct {
	StatusCode int
	Data       any
	Message    string
}

type RateLimitResponse struct {
	Limit      int    `json:"limit"`
	Window     string `json:"window"`
	RetryAfter string `json:"retry_after"`
}

type HandlerFunction func(*RequestContext) *ServiceResult

type RESTController struct {
	name         string
	mountPoint   string
	handlerCount int
	prepare      func(*RouterService, *RESTController)
}

func (result *ServiceResult) ToJSON() gin.H {
	if result.IsError() {
		body := gin.H{
			"success": false,
			"error":   result.Message,
		}
		if result.Data != nil {
			body["data"] = result.Data
		}
		return body
	}

	body := gin.H{"success": true}
	if result.Message != "" {
		body["message"] = result.Message
	}
	if result.Data != nil {
		body["data"] = result.Data
	}
	return body
}

func (result *ServiceResult) IsSuccess() bool {
	return result.StatusCode >= 200 && result.StatusCode < 300
}

func (result *ServiceResult) IsError() bool {
	return result.StatusCode >= 400
}
