package http

import (
	"github.com/gin-gonic/gin"

	"github.com/williamsps/maintenance-portal/internal/http/middleware"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, result)
}

func (h *Handler) me(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	user, err := h.auth.Me(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, user)
}

func (h *Handler) logout(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	if err := h.auth.Logout(c.Request.Context(), principal, middleware.TokenExpiry(c)); err != nil {
		h.handleError(c, err)
		return
	}
	respondMessage(c, "logged out", nil)
}
