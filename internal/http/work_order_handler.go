package http

import (
	"github.com/gin-gonic/gin"

	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/service"
)

type createWorkOrderRequest struct {
	service.CreateWorkOrderInput
	ScheduleDate *string `json:"schedule_date"`
	ClientID     string  `json:"client_id"`
	// Supplier fields are accepted and ignored.
	SupplierName  string `json:"supplier_name"`
	SupplierPhone string `json:"supplier_phone"`
	SupplierEmail string `json:"supplier_email"`
}

func (h *Handler) listWorkOrders(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	orders, pagination, err := h.workOrders.List(c.Request.Context(), principal, service.WorkOrderListInput{
		Status: model.WorkOrderStatus(c.Query("status")),
		Search: c.Query("search"),
		Urgent: boolQuery(c, "urgent"),
		Page:   pageFrom(c),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondPage(c, orders, pagination)
}

func (h *Handler) workOrderSummary(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	summary, err := h.workOrders.Summary(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, summary)
}

func (h *Handler) getWorkOrder(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	order, err := h.workOrders.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, order)
}

func (h *Handler) createWorkOrder(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	var req createWorkOrderRequest
	if !bind(c, &req) {
		return
	}
	schedule, err := parseOptionalDate(req.ScheduleDate)
	if err != nil {
		badRequest(c, "invalid schedule_date")
		return
	}
	clientID, err := parseOptionalID(req.ClientID)
	if err != nil {
		badRequest(c, "invalid client_id")
		return
	}
	input := req.CreateWorkOrderInput
	input.ScheduleDate = schedule
	input.ClientID = clientID
	input.Supplier = model.Supplier{Name: req.SupplierName, Phone: req.SupplierPhone, Email: req.SupplierEmail}

	order, err := h.workOrders.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondCreated(c, order)
}

type updateWorkOrderRequest struct {
	PropertyName      *string `json:"property_name"`
	PropertyAddress   *string `json:"property_address"`
	PropertyPhone     *string `json:"property_phone"`
	Description       *string `json:"description"`
	PONumber          *string `json:"po_number"`
	ScheduleDate      *string `json:"schedule_date"`
	IsUrgent          *bool   `json:"is_urgent"`
	AuthorizedBy      *string `json:"authorized_by"`
	AuthorizedContact *string `json:"authorized_contact"`
	AuthorizedEmail   *string `json:"authorized_email"`
	Version           *int    `json:"version"`
}

func (h *Handler) updateWorkOrder(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req updateWorkOrderRequest
	if !bind(c, &req) {
		return
	}
	schedule, err := parseOptionalDate(req.ScheduleDate)
	if err != nil {
		badRequest(c, "invalid schedule_date")
		return
	}
	order, err := h.workOrders.Update(c.Request.Context(), principal, id, service.UpdateWorkOrderInput{
		PropertyName:      req.PropertyName,
		PropertyAddress:   req.PropertyAddress,
		PropertyPhone:     req.PropertyPhone,
		Description:       req.Description,
		PONumber:          req.PONumber,
		ScheduleDate:      schedule,
		IsUrgent:          req.IsUrgent,
		AuthorizedBy:      req.AuthorizedBy,
		AuthorizedContact: req.AuthorizedContact,
		AuthorizedEmail:   req.AuthorizedEmail,
		Version:           req.Version,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, order)
}

type statusRequest struct {
	Status  model.WorkOrderStatus `json:"status" binding:"required"`
	Note    string                `json:"note"`
	Version *int                  `json:"version"`
}

func (h *Handler) changeWorkOrderStatus(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req statusRequest
	if !bind(c, &req) {
		return
	}
	order, err := h.workOrders.ChangeStatus(c.Request.Context(), principal, id, service.ChangeStatusInput{
		Status:  req.Status,
		Note:    req.Note,
		Version: req.Version,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, order)
}

type noteRequest struct {
	Note string `json:"note"`
}

func (h *Handler) addWorkOrderNote(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req noteRequest
	if !bind(c, &req) {
		return
	}
	note, err := h.workOrders.AddNote(c.Request.Context(), principal, id, req.Note)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondCreated(c, note)
}

func (h *Handler) addPhoto(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req service.PhotoInput
	if !bind(c, &req) {
		return
	}
	photo, err := h.workOrders.AddPhoto(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondCreated(c, photo)
}

func (h *Handler) deletePhoto(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	if err := h.workOrders.DeletePhoto(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	respondMessage(c, "photo deleted", nil)
}
