package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mercatto/storefront-iam/internal/infra/config"
	"github.com/mercatto/storefront-iam/internal/infra/logger"
	"github.com/mercatto/storefront-iam/internal/usecase"
)

// authFailedBody is the single body returned for every authentication
// failure. Unknown identity, wrong password, and disabled account must not be
// distinguishable from outside.
const authFailedBody = "authentication failed"

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	cfg  *config.AppConfig
	auth *usecase.AuthService
	log  *zap.Logger
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(cfg *config.AppConfig, auth *usecase.AuthService, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{cfg: cfg, auth: auth, log: log}
}

// Login validates the provided identity and password, returning a signed
// access token on success.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "name is required"))
		return
	}

	// Phone-shaped identifiers are validated against the configured pattern
	// before they reach the principal loader.
	if looksLikePhone(name) && !h.cfg.Security.PhoneRegexp().MatchString(name) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), name, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) || errors.Is(err, usecase.ErrAccountDisabled) {
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, authFailedBody))
			return
		}
		h.log.Error("login failed",
			zap.String("identity", logger.MaskIdentity(name)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, authFailedBody))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   result.ExpiresIn,
	})
}

func looksLikePhone(identifier string) bool {
	if identifier == "" {
		return false
	}
	rest := strings.TrimPrefix(identifier, "+")
	if rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
