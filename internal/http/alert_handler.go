package http

import (
	"github.com/gin-gonic/gin"
)

func (h *Handler) listAlerts(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	unread := boolQuery(c, "unread")
	alerts, pagination, err := h.alerts.List(c.Request.Context(), principal, unread != nil && *unread, pageFrom(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondPage(c, alerts, pagination)
}

func (h *Handler) unreadAlerts(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	count, err := h.alerts.UnreadCount(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, gin.H{"count": count})
}

func (h *Handler) markAlertRead(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	alert, err := h.alerts.MarkRead(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, alert)
}

func (h *Handler) markAllAlertsRead(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	updated, err := h.alerts.MarkAllRead(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, gin.H{"updated": updated})
}
