package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/service"
)

type quoteFieldsRequest struct {
	Title               *string `json:"title"`
	PropertyName        *string `json:"property_name"`
	PropertyAddress     *string `json:"property_address"`
	WorkType            *string `json:"work_type"`
	Description         *string `json:"description"`
	ScopeOfWork         *string `json:"scope_of_work"`
	ContactPerson       *string `json:"contact_person"`
	ContactEmail        *string `json:"contact_email"`
	ContactPhone        *string `json:"contact_phone"`
	IsUrgent            *bool   `json:"is_urgent"`
	RequiredByDate      *string `json:"required_by_date"`
	SpecialInstructions *string `json:"special_instructions"`
}

func (r quoteFieldsRequest) fields() (service.QuoteFields, error) {
	requiredBy, err := parseOptionalDate(r.RequiredByDate)
	if err != nil {
		return service.QuoteFields{}, err
	}
	return service.QuoteFields{
		Title:               r.Title,
		PropertyName:        r.PropertyName,
		PropertyAddress:     r.PropertyAddress,
		WorkType:            r.WorkType,
		Description:         r.Description,
		ScopeOfWork:         r.ScopeOfWork,
		ContactPerson:       r.ContactPerson,
		ContactEmail:        r.ContactEmail,
		ContactPhone:        r.ContactPhone,
		IsUrgent:            r.IsUrgent,
		RequiredByDate:      requiredBy,
		SpecialInstructions: r.SpecialInstructions,
	}, nil
}

type createQuoteRequest struct {
	quoteFieldsRequest
	ClientID string `json:"client_id"`
}

type updateQuoteRequest struct {
	quoteFieldsRequest
	Version *int `json:"version"`
}

type versionRequest struct {
	Version *int `json:"version"`
}

func quoteListInput(c *gin.Context) service.QuoteListInput {
	return service.QuoteListInput{
		Status: model.QuoteStatus(c.Query("status")),
		Search: c.Query("search"),
		Urgent: boolQuery(c, "urgent"),
		Page:   pageFrom(c),
	}
}

func (h *Handler) listQuotes(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	quotes, pagination, err := h.quotes.List(c.Request.Context(), principal, quoteListInput(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondPage(c, quotes, pagination)
}

func (h *Handler) quoteSummary(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	summary, err := h.quotes.Summary(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, summary)
}

func (h *Handler) getQuote(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	quote, err := h.quotes.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, quote)
}

func (h *Handler) createQuote(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	var req createQuoteRequest
	if !bind(c, &req) {
		return
	}
	fields, err := req.fields()
	if err != nil {
		badRequest(c, "invalid required_by_date")
		return
	}
	clientID, err := parseOptionalID(req.ClientID)
	if err != nil {
		badRequest(c, "invalid client_id")
		return
	}
	quote, err := h.quotes.Create(c.Request.Context(), principal, service.CreateQuoteInput{Fields: fields, ClientID: clientID})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondCreated(c, quote)
}

func (h *Handler) updateQuote(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req updateQuoteRequest
	if !bind(c, &req) {
		return
	}
	fields, err := req.fields()
	if err != nil {
		badRequest(c, "invalid required_by_date")
		return
	}
	quote, err := h.quotes.Update(c.Request.Context(), principal, id, service.UpdateQuoteInput{Fields: fields, Version: req.Version})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, quote)
}

func (h *Handler) submitQuote(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req versionRequest
	if !bindOptional(c, &req) {
		return
	}
	quote, err := h.quotes.Submit(c.Request.Context(), principal, id, req.Version)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondMessage(c, "quote request submitted", quote)
}

type requestInfoRequest struct {
	Message string `json:"message"`
	Version *int   `json:"version"`
}

func (h *Handler) requestInfo(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req requestInfoRequest
	if !bind(c, &req) {
		return
	}
	quote, err := h.quotes.RequestInfo(c.Request.Context(), principal, id, service.RequestInfoInput{Message: req.Message, Version: req.Version})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondMessage(c, "information requested", quote)
}

type provideQuoteRequest struct {
	EstimatedCost     *float64                     `json:"estimated_cost"`
	EstimatedHours    *float64                     `json:"estimated_hours"`
	QuoteNotes        string                       `json:"quote_notes"`
	QuoteValidUntil   *string                      `json:"quote_valid_until"`
	ItemizedBreakdown []service.BreakdownLineInput `json:"itemized_breakdown"`
	Version           *int                         `json:"version"`
}

func (h *Handler) provideQuote(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req provideQuoteRequest
	if !bind(c, &req) {
		return
	}
	validUntil, err := parseOptionalDate(req.QuoteValidUntil)
	if err != nil {
		badRequest(c, "invalid quote_valid_until")
		return
	}
	quote, err := h.quotes.ProvideQuote(c.Request.Context(), principal, id, service.ProvideQuoteInput{
		EstimatedCost:     req.EstimatedCost,
		EstimatedHours:    req.EstimatedHours,
		QuoteNotes:        req.QuoteNotes,
		QuoteValidUntil:   validUntil,
		ItemizedBreakdown: req.ItemizedBreakdown,
		Version:           req.Version,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondMessage(c, "quote provided", quote)
}

func (h *Handler) approveQuote(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req versionRequest
	if !bindOptional(c, &req) {
		return
	}
	quote, err := h.quotes.Approve(c.Request.Context(), principal, id, req.Version)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondMessage(c, "quote approved", quote)
}

type declineRequest struct {
	Reason  string `json:"reason"`
	Version *int   `json:"version"`
}

func (h *Handler) declineQuote(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req declineRequest
	if !bindOptional(c, &req) {
		return
	}
	quote, err := h.quotes.Decline(c.Request.Context(), principal, id, service.DeclineInput{Reason: req.Reason, Version: req.Version})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondMessage(c, "quote declined", quote)
}

type convertRequest struct {
	ScheduleDate *string `json:"schedule_date"`
	PONumber     string  `json:"po_number"`
	Version      *int    `json:"version"`
}

// convertQuote answers with the new work order; callers navigate by its id.
func (h *Handler) convertQuote(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req convertRequest
	if !bindOptional(c, &req) {
		return
	}
	schedule, err := parseOptionalDate(req.ScheduleDate)
	if err != nil {
		badRequest(c, "invalid schedule_date")
		return
	}
	order, err := h.quotes.Convert(c.Request.Context(), principal, id, service.ConvertInput{
		ScheduleDate: schedule,
		PONumber:     req.PONumber,
		Version:      req.Version,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, envelope{Success: true, Data: order, Message: "quote converted to work order " + order.JobNo})
}

func (h *Handler) listMessages(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	messages, err := h.quotes.Messages(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, messages)
}

type messageRequest struct {
	MessageType model.MessageType `json:"message_type"`
	Message     string            `json:"message"`
}

func (h *Handler) postMessage(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req messageRequest
	if !bind(c, &req) {
		return
	}
	message, err := h.quotes.PostMessage(c.Request.Context(), principal, id, service.PostMessageInput{Type: req.MessageType, Message: req.Message})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondCreated(c, message)
}

func (h *Handler) listAttachments(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	attachments, err := h.quotes.Attachments(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondOK(c, attachments)
}

func (h *Handler) addAttachment(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	var req service.AttachmentInput
	if !bind(c, &req) {
		return
	}
	attachment, err := h.quotes.AddAttachment(c.Request.Context(), principal, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondCreated(c, attachment)
}

func (h *Handler) deleteAttachment(c *gin.Context) {
	principal, found := currentPrincipal(c)
	if !found {
		return
	}
	id, valid := parseID(c)
	if !valid {
		return
	}
	if err := h.quotes.DeleteAttachment(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	respondMessage(c, "attachment deleted", nil)
}
