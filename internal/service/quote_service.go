package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/repository"
	"github.com/williamsps/maintenance-portal/internal/validation"
	"github.com/williamsps/maintenance-portal/internal/workflow"
)

type QuoteService struct {
	repos    *repository.Repositories
	validate *validation.Validator
	notifier Notifier
	supplier model.Supplier
	log      zerolog.Logger
	now      func() time.Time
}

func NewQuoteService(repos *repository.Repositories, validate *validation.Validator, notifier Notifier, supplier model.Supplier, log zerolog.Logger) *QuoteService {
	return &QuoteService{
		repos:    repos,
		validate: validate,
		notifier: notifier,
		supplier: supplier,
		log:      log,
		now:      time.Now,
	}
}

func (s *QuoteService) SetClock(now func() time.Time) {
	s.now = now
}

// QuoteView is a quote as returned to callers: the stored record plus values
// derived on every read.
type QuoteView struct {
	model.Quote
	BreakdownTotal   float64           `json:"breakdown_total"`
	AvailableActions []workflow.Action `json:"available_actions"`
}

func newQuoteView(q *model.Quote, role model.Role) QuoteView {
	return QuoteView{
		Quote:            *q,
		BreakdownTotal:   q.BreakdownTotal(),
		AvailableActions: workflow.AvailableActions(q.Status, role),
	}
}

// QuoteFields holds the client-editable request fields. Nil means unchanged.
type QuoteFields struct {
	Title               *string
	PropertyName        *string
	PropertyAddress     *string
	WorkType            *string
	Description         *string
	ScopeOfWork         *string
	ContactPerson       *string
	ContactEmail        *string
	ContactPhone        *string
	IsUrgent            *bool
	RequiredByDate      *time.Time
	SpecialInstructions *string
}

func (f QuoteFields) apply(q *model.Quote) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&q.Title, f.Title)
	set(&q.PropertyName, f.PropertyName)
	set(&q.PropertyAddress, f.PropertyAddress)
	set(&q.WorkType, f.WorkType)
	set(&q.Description, f.Description)
	set(&q.ScopeOfWork, f.ScopeOfWork)
	set(&q.ContactPerson, f.ContactPerson)
	set(&q.ContactEmail, f.ContactEmail)
	set(&q.ContactPhone, f.ContactPhone)
	set(&q.SpecialInstructions, f.SpecialInstructions)
	if f.IsUrgent != nil {
		q.IsUrgent = *f.IsUrgent
	}
	if f.RequiredByDate != nil {
		d := dateOnly(*f.RequiredByDate)
		q.RequiredByDate = &d
	}
}

type draftForm struct {
	Title           string `json:"title" validate:"max=200"`
	PropertyName    string `json:"property_name" validate:"max=200"`
	PropertyAddress string `json:"property_address" validate:"max=500"`
	WorkType        string `json:"work_type" validate:"max=100"`
	ContactPerson   string `json:"contact_person" validate:"max=200"`
	ContactEmail    string `json:"contact_email" validate:"omitempty,email,max=200"`
	ContactPhone    string `json:"contact_phone" validate:"max=50"`
}

type submissionForm struct {
	Title         string `json:"title" validate:"required"`
	PropertyName  string `json:"property_name" validate:"required"`
	Description   string `json:"description" validate:"required,min=20"`
	ContactPerson string `json:"contact_person" validate:"required"`
	ContactEmail  string `json:"contact_email" validate:"required,email"`
}

func (s *QuoteService) validateDraft(q *model.Quote) error {
	return s.validate.Struct(draftForm{
		Title:           q.Title,
		PropertyName:    q.PropertyName,
		PropertyAddress: q.PropertyAddress,
		WorkType:        q.WorkType,
		ContactPerson:   q.ContactPerson,
		ContactEmail:    q.ContactEmail,
		ContactPhone:    q.ContactPhone,
	})
}

type CreateQuoteInput struct {
	Fields QuoteFields
	// ClientID picks the tenant when the caller is not bound to one.
	ClientID *uuid.UUID
}

func (s *QuoteService) Create(ctx context.Context, principal model.Principal, input CreateQuoteInput) (*QuoteView, error) {
	if principal.Role != model.RoleClientAdmin && principal.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: only client admins and admins create quote requests", ErrPermissionDenied)
	}

	clientID, err := resolveClient(ctx, s.repos, principal, input.ClientID)
	if err != nil {
		return nil, err
	}

	quote := &model.Quote{
		ClientID:  clientID,
		CreatedBy: principal.UserID,
		Status:    model.QuoteStatusDraft,
		Version:   1,
	}
	input.Fields.apply(quote)
	if err := s.validateDraft(quote); err != nil {
		return nil, err
	}
	if err := s.repos.Quotes.Create(ctx, quote); err != nil {
		return nil, err
	}
	view := newQuoteView(quote, principal.Role)
	return &view, nil
}

type QuoteListInput struct {
	Status model.QuoteStatus
	Search string
	Urgent *bool
	Page   model.Page
}

func (s *QuoteService) List(ctx context.Context, principal model.Principal, input QuoteListInput) ([]QuoteView, model.Pagination, error) {
	if input.Status != "" && !input.Status.Valid() {
		return nil, model.Pagination{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, input.Status)
	}
	if _, err := s.ExpireDue(ctx); err != nil {
		s.log.Warn().Err(err).Msg("expire quotes before listing failed")
	}

	filter := repository.QuoteFilter{
		ClientID: principal.ScopeClientID(),
		Search:   input.Search,
		Urgent:   input.Urgent,
		Page:     input.Page,
	}
	if input.Status != "" {
		filter.Statuses = []model.QuoteStatus{input.Status}
	}

	quotes, total, err := s.repos.Quotes.List(ctx, filter)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	views := make([]QuoteView, len(quotes))
	for i := range quotes {
		views[i] = newQuoteView(&quotes[i], principal.Role)
	}
	return views, input.Page.Result(total), nil
}

// Register returns every visible quote matching the filter, for exports.
func (s *QuoteService) Register(ctx context.Context, principal model.Principal, input QuoteListInput) ([]model.Quote, error) {
	if input.Status != "" && !input.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, input.Status)
	}
	filter := repository.QuoteFilter{ClientID: principal.ScopeClientID(), Search: input.Search, Urgent: input.Urgent}
	if input.Status != "" {
		filter.Statuses = []model.QuoteStatus{input.Status}
	}
	return s.repos.Quotes.ListAll(ctx, filter)
}

func (s *QuoteService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*QuoteView, error) {
	quote, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	view := newQuoteView(quote, principal.Role)
	return &view, nil
}

func (s *QuoteService) Summary(ctx context.Context, principal model.Principal) (*model.QuoteSummary, error) {
	scope := principal.ScopeClientID()
	counts, err := s.repos.Quotes.CountByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}

	summary := &model.QuoteSummary{ByStatus: make(map[model.QuoteStatus]int64, len(model.QuoteStatuses))}
	for _, status := range model.QuoteStatuses {
		summary.ByStatus[status] = counts[status]
		summary.Total += counts[status]
	}
	summary.Urgent, err = s.repos.Quotes.CountUrgent(ctx, scope, openStatuses())
	if err != nil {
		return nil, err
	}

	waiting := []model.QuoteStatus{model.QuoteStatusInformationRequested, model.QuoteStatusQuoted}
	if principal.Role.ProviderSide() {
		waiting = []model.QuoteStatus{model.QuoteStatusSubmitted, model.QuoteStatusApproved}
	}
	for _, status := range waiting {
		summary.AwaitingAction += counts[status]
	}
	return summary, nil
}

type UpdateQuoteInput struct {
	Fields  QuoteFields
	Version *int
}

// Update saves changes to a draft. It leaves no audit message.
func (s *QuoteService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input UpdateQuoteInput) (*QuoteView, error) {
	return s.act(ctx, principal, id, step{
		action:  workflow.ActionSaveDraft,
		version: input.Version,
		mutate: func(_ *repository.Repositories, q *model.Quote) error {
			input.Fields.apply(q)
			return s.validateDraft(q)
		},
	})
}

func (s *QuoteService) Submit(ctx context.Context, principal model.Principal, id uuid.UUID, version *int) (*QuoteView, error) {
	return s.act(ctx, principal, id, step{
		action:  workflow.ActionSubmit,
		version: version,
		alert:   AlertQuoteSubmitted,
		mutate: func(tx *repository.Repositories, q *model.Quote) error {
			err := s.validate.Struct(submissionForm{
				Title:         q.Title,
				PropertyName:  q.PropertyName,
				Description:   q.Description,
				ContactPerson: q.ContactPerson,
				ContactEmail:  q.ContactEmail,
			})
			if err != nil {
				return err
			}
			now := s.now()
			if q.QuoteNumber == nil {
				number, err := tx.Quotes.NextQuoteNumber(ctx, now.Year())
				if err != nil {
					return err
				}
				q.QuoteNumber = &number
			}
			q.SubmittedAt = &now
			return nil
		},
		text: func(q *model.Quote) string {
			return fmt.Sprintf("Quote request %s submitted", *q.QuoteNumber)
		},
	})
}

type RequestInfoInput struct {
	Message string
	Version *int
}

func (s *QuoteService) RequestInfo(ctx context.Context, principal model.Principal, id uuid.UUID, input RequestInfoInput) (*QuoteView, error) {
	message := strings.TrimSpace(input.Message)
	return s.act(ctx, principal, id, step{
		action:  workflow.ActionRequestInfo,
		version: input.Version,
		alert:   AlertQuoteInfoRequested,
		mutate: func(_ *repository.Repositories, q *model.Quote) error {
			var fields validation.Fields
			if message == "" {
				fields.Add("message", "message is required")
			}
			if err := fields.Err(); err != nil {
				return err
			}
			q.InfoRequest = message
			return nil
		},
		text: func(*model.Quote) string { return message },
	})
}

type BreakdownLineInput struct {
	Category    string   `json:"category" validate:"omitempty,oneof=materials labor subcontractor permits equipment other"`
	Description string   `json:"description" validate:"required"`
	Cost        *float64 `json:"cost" validate:"required,gte=0"`
}

type ProvideQuoteInput struct {
	EstimatedCost     *float64             `json:"estimated_cost" validate:"required,gt=0"`
	EstimatedHours    *float64             `json:"estimated_hours" validate:"required,gt=0"`
	QuoteNotes        string               `json:"quote_notes" validate:"max=5000"`
	QuoteValidUntil   *time.Time           `json:"-"`
	ItemizedBreakdown []BreakdownLineInput `json:"itemized_breakdown" validate:"dive"`
	Version           *int                 `json:"-"`
}

func (s *QuoteService) ProvideQuote(ctx context.Context, principal model.Principal, id uuid.UUID, input ProvideQuoteInput) (*QuoteView, error) {
	var previousCost, previousHours *float64
	return s.act(ctx, principal, id, step{
		action:  workflow.ActionProvideQuote,
		version: input.Version,
		alert:   AlertQuoteProvided,
		mutate: func(_ *repository.Repositories, q *model.Quote) error {
			for i := range input.ItemizedBreakdown {
				input.ItemizedBreakdown[i].Description = strings.TrimSpace(input.ItemizedBreakdown[i].Description)
			}
			input.QuoteNotes = strings.TrimSpace(input.QuoteNotes)

			var extra validation.Fields
			var validUntil *time.Time
			if input.QuoteValidUntil != nil {
				if !dateOnly(*input.QuoteValidUntil).After(dateOnly(s.now())) {
					extra.Add("quote_valid_until", "quote valid until must be a future date")
				} else {
					end := dateOnly(*input.QuoteValidUntil).Add(24*time.Hour - time.Second)
					validUntil = &end
				}
			}
			if err := s.validate.Struct(input, extra...); err != nil {
				return err
			}

			var breakdown model.Breakdown
			for _, line := range input.ItemizedBreakdown {
				category := model.BreakdownCategory(line.Category)
				if category == "" {
					category = model.CategoryOther
				}
				breakdown = breakdown.Add(model.BreakdownLine{
					Category:    category,
					Description: line.Description,
					Cost:        *line.Cost,
				})
			}

			previousCost, previousHours = q.EstimatedCost, q.EstimatedHours
			q.EstimatedCost = input.EstimatedCost
			q.EstimatedHours = input.EstimatedHours
			q.QuoteNotes = input.QuoteNotes
			q.QuoteValidUntil = validUntil
			q.ItemizedBreakdown = datatypes.JSONSlice[model.BreakdownLine](breakdown)
			now := s.now()
			q.QuotedAt = &now
			return nil
		},
		text: func(q *model.Quote) string {
			return fmt.Sprintf("Quote provided: $%.2f for %.2f hours", *q.EstimatedCost, *q.EstimatedHours)
		},
		audit: func(m *model.QuoteMessage) {
			m.PreviousCost, m.NewCost = previousCost, input.EstimatedCost
			m.PreviousHours, m.NewHours = previousHours, input.EstimatedHours
		},
	})
}

func (s *QuoteService) Approve(ctx context.Context, principal model.Principal, id uuid.UUID, version *int) (*QuoteView, error) {
	return s.act(ctx, principal, id, step{
		action:  workflow.ActionApprove,
		version: version,
		alert:   AlertQuoteApproved,
		mutate: func(_ *repository.Repositories, q *model.Quote) error {
			now := s.now()
			if workflow.ExpiryDue(q.Status, q.QuoteValidUntil, now) {
				return fmt.Errorf("%w: quote expired on %s", ErrInvalidTransition, q.QuoteValidUntil.Format("2006-01-02"))
			}
			q.ApprovedAt = &now
			return nil
		},
		text: func(*model.Quote) string { return "Quote approved" },
	})
}

type DeclineInput struct {
	Reason  string
	Version *int
}

func (s *QuoteService) Decline(ctx context.Context, principal model.Principal, id uuid.UUID, input DeclineInput) (*QuoteView, error) {
	reason := strings.TrimSpace(input.Reason)
	return s.act(ctx, principal, id, step{
		action:  workflow.ActionDecline,
		version: input.Version,
		alert:   AlertQuoteDeclined,
		mutate: func(_ *repository.Repositories, q *model.Quote) error {
			now := s.now()
			q.DeclineReason = reason
			q.DeclinedAt = &now
			return nil
		},
		text: func(*model.Quote) string {
			if reason == "" {
				return "Quote declined"
			}
			return "Quote declined: " + reason
		},
	})
}

// ConvertInput carries the operator's conversion choices. The supplier is not
// one of them: converted work orders always carry the configured supplier.
type ConvertInput struct {
	ScheduleDate *time.Time
	PONumber     string
	Version      *int
}

// Convert turns an approved quote into a work order in one transaction and
// returns the new work order.
func (s *QuoteService) Convert(ctx context.Context, principal model.Principal, id uuid.UUID, input ConvertInput) (*model.WorkOrder, error) {
	var order *model.WorkOrder
	_, err := s.act(ctx, principal, id, step{
		action:  workflow.ActionConvert,
		version: input.Version,
		alert:   AlertQuoteConverted,
		mutate: func(tx *repository.Repositories, q *model.Quote) error {
			jobNo := jobNoFor(q)
			exists, err := tx.WorkOrders.JobNoExists(ctx, jobNo)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: work order %s already exists", ErrConflict, jobNo)
			}

			schedule := dateOnly(s.now())
			if input.ScheduleDate != nil {
				schedule = dateOnly(*input.ScheduleDate)
			}
			description := q.Description
			if q.ScopeOfWork != "" {
				description += "\n\nScope of work:\n" + q.ScopeOfWork
			}

			order = &model.WorkOrder{
				JobNo:             jobNo,
				ClientID:          q.ClientID,
				QuoteID:           &q.ID,
				Status:            model.WorkOrderPending,
				PropertyName:      q.PropertyName,
				PropertyAddress:   q.PropertyAddress,
				PropertyPhone:     q.ContactPhone,
				Description:       description,
				PONumber:          strings.TrimSpace(input.PONumber),
				ScheduleDate:      &schedule,
				IsUrgent:          q.IsUrgent,
				AuthorizedBy:      q.ContactPerson,
				AuthorizedContact: q.ContactPhone,
				AuthorizedEmail:   q.ContactEmail,
				CreatedBy:         principal.UserID,
				Version:           1,
			}
			order.SetSupplier(s.supplier)
			if err := tx.WorkOrders.Create(ctx, order); err != nil {
				return err
			}
			q.ConvertedWorkOrderID = &order.ID
			return nil
		},
		text: func(*model.Quote) string { return "Converted to work order " + order.JobNo },
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func jobNoFor(q *model.Quote) string {
	if q.QuoteNumber != nil && strings.HasPrefix(*q.QuoteNumber, "QTE-") {
		return strings.Replace(*q.QuoteNumber, "QTE-", "WO-", 1)
	}
	return "WO-" + strings.ToUpper(q.ID.String()[:8])
}

func (s *QuoteService) Messages(ctx context.Context, principal model.Principal, id uuid.UUID) ([]model.QuoteMessage, error) {
	if _, err := s.load(ctx, principal, id); err != nil {
		return nil, err
	}
	return s.repos.Quotes.Messages(ctx, id)
}

type PostMessageInput struct {
	Type    model.MessageType
	Message string
}

func (s *QuoteService) PostMessage(ctx context.Context, principal model.Principal, id uuid.UUID, input PostMessageInput) (*model.QuoteMessage, error) {
	quote, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := lockedErr(quote); err != nil {
		return nil, err
	}

	msgType := input.Type
	if msgType == "" {
		msgType = model.MessageComment
	}
	var fields validation.Fields
	if !msgType.UserPostable() {
		fields.Add("message_type", "message type must be one of comment, question, response")
	}
	body := strings.TrimSpace(input.Message)
	if body == "" {
		fields.Add("message", "message is required")
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	msg := s.newMessage(quote.ID, principal, msgType, body)
	if err := s.repos.Quotes.AddMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.notifier.QuoteChanged(ctx, quote, AlertQuoteMessage, principal)
	return msg, nil
}

func (s *QuoteService) Attachments(ctx context.Context, principal model.Principal, id uuid.UUID) ([]model.QuoteAttachment, error) {
	if _, err := s.load(ctx, principal, id); err != nil {
		return nil, err
	}
	return s.repos.Quotes.Attachments(ctx, id)
}

type AttachmentInput struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	Size        int64  `json:"size" validate:"gte=0"`
	URL         string `json:"url" validate:"required,url"`
	ContentType string `json:"content_type" validate:"max=100"`
}

func (s *QuoteService) AddAttachment(ctx context.Context, principal model.Principal, id uuid.UUID, input AttachmentInput) (*model.QuoteAttachment, error) {
	quote, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := lockedErr(quote); err != nil {
		return nil, err
	}
	input.Filename = strings.TrimSpace(input.Filename)
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	attachment := &model.QuoteAttachment{
		QuoteID:        quote.ID,
		Filename:       input.Filename,
		Size:           input.Size,
		URL:            input.URL,
		ContentType:    input.ContentType,
		UploadedBy:     principal.UserID,
		UploadedBySide: model.SideOf(principal.Role),
		UploadedAt:     s.now(),
	}
	if err := s.repos.Quotes.AddAttachment(ctx, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

// DeleteAttachment lets the side that uploaded a file remove it while the quote is open.
func (s *QuoteService) DeleteAttachment(ctx context.Context, principal model.Principal, attachmentID uuid.UUID) error {
	attachment, err := s.repos.Quotes.GetAttachment(ctx, attachmentID)
	if err != nil {
		return translate(err, "attachment")
	}
	quote, err := s.load(ctx, principal, attachment.QuoteID)
	if err != nil {
		return err
	}
	if err := lockedErr(quote); err != nil {
		return err
	}
	if !principal.IsAdmin() && model.SideOf(principal.Role) != attachment.UploadedBySide {
		return fmt.Errorf("%w: attachment was uploaded by the %s side", ErrPermissionDenied, attachment.UploadedBySide)
	}
	return s.repos.Quotes.DeleteAttachment(ctx, attachmentID)
}

// ExpireDue moves every open quote past its validity date to Expired.
func (s *QuoteService) ExpireDue(ctx context.Context) (int, error) {
	candidates, err := s.repos.Quotes.ExpiryCandidates(ctx, s.now(), openStatuses())
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range candidates {
		ok, err := s.expire(ctx, &candidates[i])
		if err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return expired, err
		}
		if ok {
			expired++
		}
	}
	return expired, nil
}

// RunExpirySweeper expires quotes every interval until ctx is cancelled.
func (s *QuoteService) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := s.ExpireDue(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("quote expiry sweep failed")
				continue
			}
			if count > 0 {
				s.log.Info().Int("expired", count).Msg("quotes expired")
			}
		}
	}
}

type step struct {
	action  workflow.Action
	version *int
	alert   string
	mutate  func(tx *repository.Repositories, q *model.Quote) error
	text    func(q *model.Quote) string
	audit   func(m *model.QuoteMessage)
}

func (s *QuoteService) act(ctx context.Context, principal model.Principal, id uuid.UUID, st step) (*QuoteView, error) {
	quote, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, quote, principal, st); err != nil {
		return nil, err
	}
	if st.alert != "" {
		s.notifier.QuoteChanged(ctx, quote, st.alert, principal)
	}
	view := newQuoteView(quote, principal.Role)
	return &view, nil
}

// apply runs one lifecycle step in a transaction. On failure quote is left as it was.
func (s *QuoteService) apply(ctx context.Context, quote *model.Quote, actor model.Principal, st step) error {
	rule, err := workflow.Authorize(quote.Status, st.action, actor.Role)
	if err != nil {
		return transitionErr(err)
	}
	if err := checkVersion("quote", st.version, quote.Version); err != nil {
		return err
	}

	next := *quote
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if st.mutate != nil {
			if err := st.mutate(tx, &next); err != nil {
				return err
			}
		}
		next.Status = rule.To
		if err := tx.Quotes.Update(ctx, &next); err != nil {
			return translate(err, "quote")
		}

		msgType, ok := workflow.MessageType(st.action, actor.Role)
		if !ok {
			return nil
		}
		text := ""
		if st.text != nil {
			text = st.text(&next)
		}
		msg := s.newMessage(next.ID, actor, msgType, text)
		if st.audit != nil {
			st.audit(msg)
		}
		return tx.Quotes.AddMessage(ctx, msg)
	})
	if err != nil {
		return err
	}
	*quote = next
	return nil
}

// load fetches a quote visible to principal and applies any expiry that fell due.
func (s *QuoteService) load(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Quote, error) {
	quote, err := s.repos.Quotes.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "quote")
	}
	if !principal.CanAccessClient(quote.ClientID) {
		return nil, fmt.Errorf("%w: quote", ErrNotFound)
	}
	if _, err := s.expire(ctx, quote); err != nil && !errors.Is(err, ErrConflict) {
		return nil, err
	}
	return quote, nil
}

func (s *QuoteService) expire(ctx context.Context, quote *model.Quote) (bool, error) {
	if !workflow.ExpiryDue(quote.Status, quote.QuoteValidUntil, s.now()) {
		return false, nil
	}
	validUntil := quote.QuoteValidUntil.Format("2006-01-02")
	err := s.apply(ctx, quote, model.SystemPrincipal(), step{
		action: workflow.ActionExpire,
		text:   func(*model.Quote) string { return "Quote expired; it was valid until " + validUntil },
	})
	if err != nil {
		return false, err
	}
	s.notifier.QuoteChanged(ctx, quote, AlertQuoteExpired, model.SystemPrincipal())
	return true, nil
}

func (s *QuoteService) newMessage(quoteID uuid.UUID, actor model.Principal, msgType model.MessageType, text string) *model.QuoteMessage {
	msg := &model.QuoteMessage{
		QuoteID:    quoteID,
		AuthorName: actor.Name,
		AuthorRole: actor.Role,
		Type:       msgType,
		Message:    text,
		CreatedAt:  s.now(),
	}
	if actor.UserID != uuid.Nil {
		author := actor.UserID
		msg.AuthorID = &author
	}
	return msg
}

func lockedErr(q *model.Quote) error {
	if workflow.IsTerminal(q.Status) {
		return fmt.Errorf("%w: quote is %s and no longer accepts changes", ErrInvalidTransition, q.Status)
	}
	return nil
}

func transitionErr(err error) error {
	if errors.Is(err, workflow.ErrRoleNotAllowed) {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
}

func openStatuses() []model.QuoteStatus {
	open := make([]model.QuoteStatus, 0, len(model.QuoteStatuses))
	for _, status := range model.QuoteStatuses {
		if !workflow.IsTerminal(status) {
			open = append(open, status)
		}
	}
	return open
}
