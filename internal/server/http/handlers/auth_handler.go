package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/fosgateway/internal/server/http/dto"
	"github.com/polkiloo/fosgateway/internal/server/http/middleware"
)

// AuthHandler processes login, logout and session lookups.
type AuthHandler struct {
	facade AuthFacade
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade) *AuthHandler {
	return &AuthHandler{facade: facade}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed_request", Message: "invalid JSON body"})
		return
	}

	session, token, err := h.facade.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuthCookie(c, token, session.ExpiresAt)
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token, Session: dto.NewSessionResponse(session)})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.facade.Logout(c.Request.Context(), c.GetString(middleware.TokenContextKey)); err != nil {
		writeError(c, err)
		return
	}
	middleware.ClearAuthCookie(c)
	c.Status(http.StatusNoContent)
}

// Session handles GET /api/auth/session.
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSessionResponse(CurrentSession(c)))
}
