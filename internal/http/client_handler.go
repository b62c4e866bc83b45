package http

import (
	"github.com/gin-gonic/gin"

	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/service"
)

func (h *Handler) listClients(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	clients, pagination, err := h.clients.List(c.Request.Context(), principal, service.ClientListInput{
		Search: c.Query("search"),
		Status: model.ClientStatus(c.Query("status")),
		Page:   pageFrom(c),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondPage(c, clients, pagination)
}

func (h *Handler) getClient(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	client, err := h.clients.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, client)
}

func (h *Handler) createClient(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	var req service.CreateClientInput
	if !bind(c, &req) {
		return
	}
	client, err := h.clients.Create(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondCreated(c, client)
}

type updateClientRequest struct {
	Name         *string             `json:"name"`
	Code         *string             `json:"code"`
	Status       *model.ClientStatus `json:"status"`
	ContactName  *string             `json:"contact_name"`
	ContactEmail *string             `json:"contact_email"`
	ContactPhone *string             `json:"contact_phone"`
	Version      *int                `json:"version"`
}

func (h *Handler) updateClient(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req updateClientRequest
	if !bind(c, &req) {
		return
	}
	client, err := h.clients.Update(c.Request.Context(), principal, id, service.UpdateClientInput{
		Name:         req.Name,
		Code:         req.Code,
		Status:       req.Status,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Version:      req.Version,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, client)
}

func (h *Handler) deleteClient(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	if err := h.clients.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	respondMessage(c, "client deleted", nil)
}

func (h *Handler) clientStats(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	stats, err := h.clients.Stats(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, stats)
}
