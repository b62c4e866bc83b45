package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) exportQuotes(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	result, err := h.exports.QuoteRegister(c.Request.Context(), principal, quoteListInput(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, xlsxContentType, result.Content)
}

func (h *Handler) exportWorkOrderPDF(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	result, err := h.exports.WorkOrderPDF(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}
