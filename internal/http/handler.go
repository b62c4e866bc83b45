package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/service"
)

type Services struct {
	Auth       *service.AuthService
	Clients    *service.ClientService
	Users      *service.UserService
	Quotes     *service.QuoteService
	WorkOrders *service.WorkOrderService
	Alerts     *service.AlertService
	Exports    *service.ExportService
}

type Handler struct {
	auth       *service.AuthService
	clients    *service.ClientService
	users      *service.UserService
	quotes     *service.QuoteService
	workOrders *service.WorkOrderService
	alerts     *service.AlertService
	exports    *service.ExportService
	log        zerolog.Logger
}

func NewHandler(services Services, log zerolog.Logger) *Handler {
	return &Handler{
		auth:       services.Auth,
		clients:    services.Clients,
		users:      services.Users,
		quotes:     services.Quotes,
		workOrders: services.WorkOrders,
		alerts:     services.Alerts,
		exports:    services.Exports,
		log:        log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.POST("/auth/login", h.login)

	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/auth/me", h.me)
	protected.POST("/auth/logout", h.logout)

	protected.GET("/clients", h.listClients)
	protected.POST("/clients", h.createClient)
	protected.GET("/clients/:id", h.getClient)
	protected.PUT("/clients/:id", h.updateClient)
	protected.DELETE("/clients/:id", h.deleteClient)
	protected.GET("/clients/:id/stats", h.clientStats)

	protected.GET("/users", h.listUsers)
	protected.POST("/users", h.createUser)
	protected.GET("/users/:id", h.getUser)
	protected.PATCH("/users/:id", h.updateUser)
	protected.DELETE("/users/:id", h.deleteUser)

	protected.GET("/quotes", h.listQuotes)
	protected.POST("/quotes", h.createQuote)
	protected.GET("/quotes/summary", h.quoteSummary)
	protected.GET("/quotes/export", h.exportQuotes)
	protected.DELETE("/quotes/attachments/:id", h.deleteAttachment)
	protected.GET("/quotes/:id", h.getQuote)
	protected.PATCH("/quotes/:id", h.updateQuote)
	protected.POST("/quotes/:id/submit", h.submitQuote)
	protected.PATCH("/quotes/:id/request-info", h.requestInfo)
	protected.PATCH("/quotes/:id/provide-quote", h.provideQuote)
	protected.PATCH("/quotes/:id/approve", h.approveQuote)
	protected.PATCH("/quotes/:id/decline", h.declineQuote)
	protected.PATCH("/quotes/:id/decline-quote", h.declineQuote)
	protected.POST("/quotes/:id/convert", h.convertQuote)
	protected.GET("/quotes/:id/messages", h.listMessages)
	protected.POST("/quotes/:id/messages", h.postMessage)
	protected.GET("/quotes/:id/attachments", h.listAttachments)
	protected.POST("/quotes/:id/attachments", h.addAttachment)

	protected.GET("/work-orders", h.listWorkOrders)
	protected.POST("/work-orders", h.createWorkOrder)
	protected.GET("/work-orders/summary", h.workOrderSummary)
	protected.GET("/work-orders/:id", h.getWorkOrder)
	protected.PATCH("/work-orders/:id", h.updateWorkOrder)
	protected.PATCH("/work-orders/:id/status", h.changeWorkOrderStatus)
	protected.POST("/work-orders/:id/notes", h.addWorkOrderNote)

	protected.POST("/photos/work-order/:id", h.addPhoto)
	protected.DELETE("/photos/:id", h.deletePhoto)

	protected.GET("/export/workorder/:id/pdf", h.exportWorkOrderPDF)

	protected.GET("/alerts", h.listAlerts)
	protected.GET("/alerts/unread-count", h.unreadAlerts)
	protected.PATCH("/alerts/mark-all-read", h.markAllAlertsRead)
	protected.PATCH("/alerts/:id", h.markAlertRead)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// parseOptionalID treats an empty string as absent.
func parseOptionalID(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, service.ErrInvalidInput
	}
	return &id, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

// parseOptionalDate parses a nullable date field; nil and "" mean no date.
func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := parseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func pageFrom(c *gin.Context) model.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return model.NewPage(page, limit)
}

// boolQuery returns nil when the parameter is absent or not a boolean.
func boolQuery(c *gin.Context, name string) *bool {
	raw, ok := c.GetQuery(name)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}
