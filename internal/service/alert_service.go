package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/repository"
)

const (
	AlertQuoteSubmitted     = "quote_submitted"
	AlertQuoteInfoRequested = "quote_info_requested"
	AlertQuoteProvided      = "quote_provided"
	AlertQuoteApproved      = "quote_approved"
	AlertQuoteDeclined      = "quote_declined"
	AlertQuoteExpired       = "quote_expired"
	AlertQuoteConverted     = "quote_converted"
	AlertQuoteMessage       = "quote_message"
	AlertWorkOrderCreated   = "work_order_created"
	AlertWorkOrderStatus    = "work_order_status"
)

// Notifier receives domain events that should reach people as alerts.
type Notifier interface {
	QuoteChanged(ctx context.Context, quote *model.Quote, kind string, actor model.Principal)
	WorkOrderChanged(ctx context.Context, order *model.WorkOrder, kind string, actor model.Principal)
}

type AlertService struct {
	repos *repository.Repositories
	log   zerolog.Logger
	now   func() time.Time
}

func NewAlertService(repos *repository.Repositories, log zerolog.Logger) *AlertService {
	return &AlertService{repos: repos, log: log, now: time.Now}
}

func (s *AlertService) List(ctx context.Context, principal model.Principal, unreadOnly bool, page model.Page) ([]model.Alert, model.Pagination, error) {
	alerts, total, err := s.repos.Alerts.List(ctx, principal.UserID, unreadOnly, page)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	return alerts, page.Result(total), nil
}

func (s *AlertService) MarkRead(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Alert, error) {
	alert, err := s.repos.Alerts.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "alert")
	}
	if alert.UserID != principal.UserID {
		return nil, fmt.Errorf("%w: alert", ErrNotFound)
	}
	if err := s.repos.Alerts.MarkRead(ctx, id, s.now()); err != nil {
		return nil, err
	}
	return s.repos.Alerts.Get(ctx, id)
}

func (s *AlertService) MarkAllRead(ctx context.Context, principal model.Principal) (int64, error) {
	return s.repos.Alerts.MarkAllRead(ctx, principal.UserID, s.now())
}

func (s *AlertService) UnreadCount(ctx context.Context, principal model.Principal) (int64, error) {
	return s.repos.Alerts.UnreadCount(ctx, principal.UserID)
}

// QuoteChanged fans a quote event out to the side that has to act next.
// Delivery failures are logged and never fail the originating request.
func (s *AlertService) QuoteChanged(ctx context.Context, quote *model.Quote, kind string, actor model.Principal) {
	var (
		roles    []model.Role
		clientID *uuid.UUID
		title    string
	)
	label := quoteLabel(quote)

	switch kind {
	case AlertQuoteSubmitted:
		roles = []model.Role{model.RoleStaff, model.RoleAdmin}
		title = "New quote request " + label
	case AlertQuoteApproved:
		roles = []model.Role{model.RoleStaff, model.RoleAdmin}
		title = "Quote " + label + " approved"
	case AlertQuoteDeclined:
		roles = []model.Role{model.RoleStaff, model.RoleAdmin}
		title = "Quote " + label + " declined"
	case AlertQuoteInfoRequested:
		roles, clientID = []model.Role{model.RoleClientAdmin}, &quote.ClientID
		title = "More information needed for " + label
	case AlertQuoteProvided:
		roles, clientID = []model.Role{model.RoleClientAdmin}, &quote.ClientID
		title = "Quote " + label + " is ready for review"
	case AlertQuoteConverted:
		roles, clientID = []model.Role{model.RoleClientAdmin}, &quote.ClientID
		title = "Quote " + label + " converted to a work order"
	case AlertQuoteExpired:
		roles, clientID = []model.Role{model.RoleClientAdmin}, &quote.ClientID
		title = "Quote " + label + " expired"
	case AlertQuoteMessage:
		if actor.Role.ProviderSide() {
			roles, clientID = []model.Role{model.RoleClientAdmin}, &quote.ClientID
		} else {
			roles = []model.Role{model.RoleStaff, model.RoleAdmin}
		}
		title = "New message on " + label
	default:
		return
	}

	s.deliver(ctx, roles, clientID, actor, model.Alert{
		Type:       kind,
		Title:      title,
		Message:    quote.Title,
		EntityType: "quote",
		EntityID:   &quote.ID,
	})
}

func (s *AlertService) WorkOrderChanged(ctx context.Context, order *model.WorkOrder, kind string, actor model.Principal) {
	var title string
	switch kind {
	case AlertWorkOrderCreated:
		title = "New work order " + order.JobNo
	case AlertWorkOrderStatus:
		title = fmt.Sprintf("Work order %s is now %s", order.JobNo, order.Status)
	default:
		return
	}

	roles := []model.Role{model.RoleStaff, model.RoleAdmin}
	var clientID *uuid.UUID
	if actor.Role.ProviderSide() {
		roles, clientID = []model.Role{model.RoleClientAdmin}, &order.ClientID
	}
	s.deliver(ctx, roles, clientID, actor, model.Alert{
		Type:       kind,
		Title:      title,
		Message:    order.PropertyName,
		EntityType: "work_order",
		EntityID:   &order.ID,
	})
}

func (s *AlertService) deliver(ctx context.Context, roles []model.Role, clientID *uuid.UUID, actor model.Principal, template model.Alert) {
	recipients, err := s.repos.Users.Recipients(ctx, roles, clientID)
	if err != nil {
		s.log.Warn().Err(err).Str("type", template.Type).Msg("resolve alert recipients failed")
		return
	}

	alerts := make([]model.Alert, 0, len(recipients))
	for _, user := range recipients {
		if user.ID == actor.UserID {
			continue
		}
		alert := template
		alert.UserID = user.ID
		alerts = append(alerts, alert)
	}
	if err := s.repos.Alerts.CreateBatch(ctx, alerts); err != nil {
		s.log.Warn().Err(err).Str("type", template.Type).Msg("store alerts failed")
	}
}

func quoteLabel(q *model.Quote) string {
	if q.QuoteNumber != nil && *q.QuoteNumber != "" {
		return *q.QuoteNumber
	}
	return q.Title
}
