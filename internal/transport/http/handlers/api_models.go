package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mercatto/storefront-iam/internal/transport/http/middleware"
)

// ErrorResponse is the uniform error body for handler failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse builds an error body carrying the request trace ID.
func NewErrorResponse(c *gin.Context, message string) ErrorResponse {
	return ErrorResponse{
		Error:   message,
		TraceID: middleware.GetTraceID(c),
	}
}

// LoginRequest is the credential payload accepted by the login endpoint.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// SessionResponse reflects the authenticated context back to the caller.
type SessionResponse struct {
	Subject     string   `json:"subject"`
	Authorities []string `json:"authorities"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}
