package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mercatto/storefront-iam/internal/transport/http/middleware"
)

// SessionHandler reflects the validated token claims back to the caller.
type SessionHandler struct{}

// NewSessionHandler builds a SessionHandler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Current returns the subject and authority set reconstructed from the
// presented token. No storage is consulted; the response mirrors the claims
// exactly as embedded at issuance.
func (h *SessionHandler) Current(c *gin.Context) {
	authCtx := middleware.GetAuthContext(c)

	authorities := authCtx.Authorities
	if authorities == nil {
		authorities = []string{}
	}

	c.JSON(http.StatusOK, SessionResponse{
		Subject:     authCtx.Subject,
		Authorities: authorities,
	})
}
