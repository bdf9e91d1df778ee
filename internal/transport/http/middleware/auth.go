package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mercatto/storefront-iam/internal/core/domain"
	"github.com/mercatto/storefront-iam/internal/infra/security"
	"github.com/mercatto/storefront-iam/internal/usecase"
)

// ErrorResponse is the uniform error body returned from middleware.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// unauthenticatedBody is the single externally visible rejection message for
// every token failure. Which check failed is only recorded in logs.
const unauthenticatedBody = "unauthenticated"

// TokenFilter reconstructs the authenticated context from the Authorization
// header. Requests without a token proceed anonymously; downstream authority
// checks decide whether the operation is publicly accessible. Requests with a
// malformed, tampered, or expired token are rejected terminally.
func TokenFilter(auth *usecase.AuthService, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(AuthContextKey, domain.AuthenticatedContext{})
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			log.Info("token rejected",
				zap.String("trace_id", GetTraceID(c)),
				zap.String("reason", "malformed-header"),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, unauthenticatedBody))
			return
		}

		authCtx, err := auth.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			reason := "invalid-signature"
			if errors.Is(err, security.ErrExpiredToken) {
				reason = "expired"
			}
			log.Info("token rejected",
				zap.String("trace_id", GetTraceID(c)),
				zap.String("reason", reason),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, unauthenticatedBody))
			return
		}

		c.Set(AuthContextKey, *authCtx)
		c.Next()
	}
}

// GetAuthContext retrieves the authenticated context populated by TokenFilter.
// The zero value denotes an anonymous request.
func GetAuthContext(c *gin.Context) domain.AuthenticatedContext {
	if raw, exists := c.Get(AuthContextKey); exists {
		if authCtx, ok := raw.(domain.AuthenticatedContext); ok {
			return authCtx
		}
	}
	return domain.AuthenticatedContext{}
}

// RequireAuthenticated rejects anonymous requests.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetAuthContext(c).IsAnonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, unauthenticatedBody))
			return
		}
		c.Next()
	}
}

// RequireAuthority rejects requests whose authenticated context does not
// carry the given permission code. Anonymous requests get 401, authenticated
// ones without the code get 403.
func RequireAuthority(code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authCtx := GetAuthContext(c)
		if authCtx.IsAnonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, unauthenticatedBody))
			return
		}
		if !authCtx.HasAuthority(code) {
			c.AbortWithStatusJSON(http.StatusForbidden, newErrorResponse(c, "insufficient permissions"))
			return
		}
		c.Next()
	}
}
