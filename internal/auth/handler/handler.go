package handler

import (
	"net/http"

	"github.com/Rinkore1/BookServer/internal/auth/credentials"
	"github.com/Rinkore1/BookServer/internal/middleware"
	"github.com/Rinkore1/BookServer/internal/session"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	credentialService *credentials.Service
	sessions          *session.Manager
}

func NewHandler(
	credentialService *credentials.Service,
	sessions *session.Manager,
) *Handler {
	return &Handler{
		credentialService: credentialService,
		sessions:          sessions,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	user := r.Group("/api/user")
	user.POST("/register", h.Register)
	user.POST("/login", h.Login)
	user.GET("/validate", h.Validate)
	user.POST("/logout", h.Logout)
}

// Validate reports whether the presented token maps to a live
// session. It never refreshes the session TTL.
func (h *Handler) Validate(c *gin.Context) {
	token := middleware.BearerToken(c.Request)

	valid, err := h.sessions.Validate(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

// Logout revokes the presented token. Revoking an expired or unknown
// token is a no-op, so logout is idempotent.
func (h *Handler) Logout(c *gin.Context) {
	token := middleware.BearerToken(c.Request)
	if token != "" {
		if err := h.sessions.Revoke(c.Request.Context(), token); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
			return
		}
	}

	c.Status(http.StatusNoContent)
}
