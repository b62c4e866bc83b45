package http

import (
	"github.com/gin-gonic/gin"

	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/service"
)

func (h *Handler) listUsers(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	users, pagination, err := h.users.List(c.Request.Context(), principal, service.UserListInput{
		Search: c.Query("search"),
		Role:   model.Role(c.Query("role")),
		Page:   pageFrom(c),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondPage(c, users, pagination)
}

func (h *Handler) getUser(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	user, err := h.users.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, user)
}

type createUserRequest struct {
	service.CreateUserInput
	ClientID string `json:"client_id"`
}

func (h *Handler) createUser(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	var req createUserRequest
	if !bind(c, &req) {
		return
	}
	clientID, err := parseOptionalID(req.ClientID)
	if err != nil {
		badRequest(c, "invalid client_id")
		return
	}
	input := req.CreateUserInput
	input.ClientID = clientID
	user, err := h.users.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondCreated(c, user)
}

type updateUserRequest struct {
	Name     *string     `json:"name"`
	Email    *string     `json:"email"`
	Phone    *string     `json:"phone"`
	Role     *model.Role `json:"role"`
	Active   *bool       `json:"active"`
	Password *string     `json:"password"`
}

func (h *Handler) updateUser(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req updateUserRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.users.Update(c.Request.Context(), principal, id, service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
		Active:   req.Active,
		Password: req.Password,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, user)
}

func (h *Handler) deleteUser(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	if err := h.users.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	respondMessage(c, "user deactivated", nil)
}
