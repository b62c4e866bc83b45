package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/repository"
	"github.com/williamsps/maintenance-portal/internal/validation"
)

type WorkOrderService struct {
	repos    *repository.Repositories
	validate *validation.Validator
	notifier Notifier
	supplier model.Supplier
	now      func() time.Time
}

func NewWorkOrderService(repos *repository.Repositories, validate *validation.Validator, notifier Notifier, supplier model.Supplier) *WorkOrderService {
	return &WorkOrderService{
		repos:    repos,
		validate: validate,
		notifier: notifier,
		supplier: supplier,
		now:      time.Now,
	}
}

type CreateWorkOrderInput struct {
	JobNo             string     `json:"job_no" validate:"required,max=64"`
	PropertyName      string     `json:"property_name" validate:"required,max=200"`
	PropertyAddress   string     `json:"property_address" validate:"required,max=500"`
	PropertyPhone     string     `json:"property_phone" validate:"required,max=50"`
	Description       string     `json:"description" validate:"required"`
	PONumber          string     `json:"po_number" validate:"max=64"`
	ScheduleDate      *time.Time `json:"-"`
	IsUrgent          bool       `json:"is_urgent"`
	AuthorizedBy      string     `json:"authorized_by" validate:"max=200"`
	AuthorizedContact string     `json:"authorized_contact" validate:"max=50"`
	AuthorizedEmail   string     `json:"authorized_email" validate:"omitempty,email,max=200"`
	ClientID          *uuid.UUID `json:"-"`
	// Supplier values sent by callers are ignored.
	Supplier model.Supplier `json:"-"`
}

func (in *CreateWorkOrderInput) normalize() {
	for _, field := range []*string{
		&in.JobNo, &in.PropertyName, &in.PropertyAddress, &in.PropertyPhone, &in.Description,
		&in.PONumber, &in.AuthorizedBy, &in.AuthorizedContact, &in.AuthorizedEmail,
	} {
		*field = strings.TrimSpace(*field)
	}
}

// Create records a manually entered work order. The supplier is always the
// configured default regardless of what the caller sent.
func (s *WorkOrderService) Create(ctx context.Context, principal model.Principal, input CreateWorkOrderInput) (*model.WorkOrder, error) {
	input.normalize()
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	clientID, err := resolveClient(ctx, s.repos, principal, input.ClientID)
	if err != nil {
		return nil, err
	}

	exists, err := s.repos.WorkOrders.JobNoExists(ctx, input.JobNo)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: job number %s already exists", ErrConflict, input.JobNo)
	}

	order := &model.WorkOrder{
		JobNo:             input.JobNo,
		ClientID:          clientID,
		Status:            model.WorkOrderPending,
		PropertyName:      input.PropertyName,
		PropertyAddress:   input.PropertyAddress,
		PropertyPhone:     input.PropertyPhone,
		Description:       input.Description,
		PONumber:          input.PONumber,
		IsUrgent:          input.IsUrgent,
		AuthorizedBy:      input.AuthorizedBy,
		AuthorizedContact: input.AuthorizedContact,
		AuthorizedEmail:   input.AuthorizedEmail,
		CreatedBy:         principal.UserID,
		Version:           1,
	}
	if input.ScheduleDate != nil {
		d := dateOnly(*input.ScheduleDate)
		order.ScheduleDate = &d
	}
	order.SetSupplier(s.supplier)

	if order.AuthorizedBy == "" || order.AuthorizedContact == "" || order.AuthorizedEmail == "" {
		creator, err := s.repos.Users.Get(ctx, principal.UserID)
		if err == nil {
			if order.AuthorizedBy == "" {
				order.AuthorizedBy = creator.Name
			}
			if order.AuthorizedContact == "" {
				order.AuthorizedContact = creator.Phone
			}
			if order.AuthorizedEmail == "" {
				order.AuthorizedEmail = creator.Email
			}
		}
	}

	if err := s.repos.WorkOrders.Create(ctx, order); err != nil {
		return nil, err
	}
	s.notifier.WorkOrderChanged(ctx, order, AlertWorkOrderCreated, principal)
	return order, nil
}

type WorkOrderListInput struct {
	Status model.WorkOrderStatus
	Search string
	Urgent *bool
	Page   model.Page
}

func (s *WorkOrderService) List(ctx context.Context, principal model.Principal, input WorkOrderListInput) ([]model.WorkOrder, model.Pagination, error) {
	if input.Status != "" && !input.Status.Valid() {
		return nil, model.Pagination{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, input.Status)
	}
	orders, total, err := s.repos.WorkOrders.List(ctx, repository.WorkOrderFilter{
		ClientID: principal.ScopeClientID(),
		Status:   input.Status,
		Search:   input.Search,
		Urgent:   input.Urgent,
		Page:     input.Page,
	})
	if err != nil {
		return nil, model.Pagination{}, err
	}
	return orders, input.Page.Result(total), nil
}

func (s *WorkOrderService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.WorkOrder, error) {
	order, err := s.repos.WorkOrders.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "work order")
	}
	if !principal.CanAccessClient(order.ClientID) {
		return nil, fmt.Errorf("%w: work order", ErrNotFound)
	}
	return order, nil
}

func (s *WorkOrderService) Summary(ctx context.Context, principal model.Principal) (*model.WorkOrderSummary, error) {
	return s.repos.WorkOrders.Summary(ctx, principal.ScopeClientID())
}

type UpdateWorkOrderInput struct {
	PropertyName      *string
	PropertyAddress   *string
	PropertyPhone     *string
	Description       *string
	PONumber          *string
	ScheduleDate      *time.Time
	IsUrgent          *bool
	AuthorizedBy      *string
	AuthorizedContact *string
	AuthorizedEmail   *string
	Version           *int
}

type workOrderForm struct {
	PropertyName    string `json:"property_name" validate:"required,max=200"`
	PropertyAddress string `json:"property_address" validate:"required,max=500"`
	PropertyPhone   string `json:"property_phone" validate:"required,max=50"`
	Description     string `json:"description" validate:"required"`
	AuthorizedEmail string `json:"authorized_email" validate:"omitempty,email,max=200"`
}

// Update edits an open work order. Completed and cancelled orders are read-only.
func (s *WorkOrderService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input UpdateWorkOrderInput) (*model.WorkOrder, error) {
	order, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("%w: work order is %s", ErrInvalidTransition, order.Status)
	}
	if err := checkVersion("work order", input.Version, order.Version); err != nil {
		return nil, err
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&order.PropertyName, input.PropertyName)
	set(&order.PropertyAddress, input.PropertyAddress)
	set(&order.PropertyPhone, input.PropertyPhone)
	set(&order.Description, input.Description)
	set(&order.PONumber, input.PONumber)
	set(&order.AuthorizedBy, input.AuthorizedBy)
	set(&order.AuthorizedContact, input.AuthorizedContact)
	set(&order.AuthorizedEmail, input.AuthorizedEmail)
	if input.IsUrgent != nil {
		order.IsUrgent = *input.IsUrgent
	}
	if input.ScheduleDate != nil {
		d := dateOnly(*input.ScheduleDate)
		order.ScheduleDate = &d
	}
	order.SetSupplier(s.supplier)

	err = s.validate.Struct(workOrderForm{
		PropertyName:    order.PropertyName,
		PropertyAddress: order.PropertyAddress,
		PropertyPhone:   order.PropertyPhone,
		Description:     order.Description,
		AuthorizedEmail: order.AuthorizedEmail,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repos.WorkOrders.Update(ctx, order); err != nil {
		return nil, translate(err, "work order")
	}
	return order, nil
}

var workOrderMoves = map[model.WorkOrderStatus][]model.WorkOrderStatus{
	model.WorkOrderPending:    {model.WorkOrderInProgress, model.WorkOrderCancelled},
	model.WorkOrderInProgress: {model.WorkOrderCompleted, model.WorkOrderCancelled},
}

type ChangeStatusInput struct {
	Status  model.WorkOrderStatus
	Note    string
	Version *int
}

// ChangeStatus moves a work order along pending -> in-progress -> completed.
// Cancelling needs a reason and is not open to staff.
func (s *WorkOrderService) ChangeStatus(ctx context.Context, principal model.Principal, id uuid.UUID, input ChangeStatusInput) (*model.WorkOrder, error) {
	if !input.Status.Valid() {
		return nil, validation.FieldErr("status", "status must be one of pending, in-progress, completed, cancelled")
	}
	note := strings.TrimSpace(input.Note)

	order, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := checkVersion("work order", input.Version, order.Version); err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range workOrderMoves[order.Status] {
		if next == input.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot move work order from %s to %s", ErrInvalidTransition, order.Status, input.Status)
	}

	if input.Status == model.WorkOrderCancelled {
		if principal.Role == model.RoleStaff {
			return nil, fmt.Errorf("%w: staff cannot cancel work orders", ErrPermissionDenied)
		}
		if note == "" {
			return nil, validation.FieldErr("note", "a cancellation reason is required")
		}
		order.CancellationReason = note
	} else if !principal.Role.ProviderSide() {
		return nil, fmt.Errorf("%w: only staff can progress work orders", ErrPermissionDenied)
	}

	previous := order.Status
	order.Status = input.Status
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.WorkOrders.Update(ctx, order); err != nil {
			return translate(err, "work order")
		}
		text := fmt.Sprintf("Status changed from %s to %s", previous, input.Status)
		if note != "" {
			text += ": " + note
		}
		return tx.WorkOrders.AddNote(ctx, s.newNote(order.ID, principal, text))
	})
	if err != nil {
		return nil, err
	}

	s.notifier.WorkOrderChanged(ctx, order, AlertWorkOrderStatus, principal)
	return s.Get(ctx, principal, id)
}

func (s *WorkOrderService) AddNote(ctx context.Context, principal model.Principal, id uuid.UUID, text string) (*model.WorkOrderNote, error) {
	order, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validation.FieldErr("note", "note is required")
	}
	note := s.newNote(order.ID, principal, text)
	if err := s.repos.WorkOrders.AddNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

type PhotoInput struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	Size        int64  `json:"size" validate:"gte=0"`
	URL         string `json:"url" validate:"required,url"`
	Description string `json:"description" validate:"max=500"`
}

func (s *WorkOrderService) AddPhoto(ctx context.Context, principal model.Principal, id uuid.UUID, input PhotoInput) (*model.WorkOrderPhoto, error) {
	order, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	input.Filename = strings.TrimSpace(input.Filename)
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}
	photo := &model.WorkOrderPhoto{
		WorkOrderID: order.ID,
		Filename:    input.Filename,
		Size:        input.Size,
		URL:         input.URL,
		Description: strings.TrimSpace(input.Description),
		UploadedBy:  principal.UserID,
		UploadedAt:  s.now(),
	}
	if err := s.repos.WorkOrders.AddPhoto(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

func (s *WorkOrderService) DeletePhoto(ctx context.Context, principal model.Principal, photoID uuid.UUID) error {
	photo, err := s.repos.WorkOrders.GetPhoto(ctx, photoID)
	if err != nil {
		return translate(err, "photo")
	}
	if _, err := s.Get(ctx, principal, photo.WorkOrderID); err != nil {
		return err
	}
	if photo.UploadedBy != principal.UserID && !principal.Role.ProviderSide() {
		return fmt.Errorf("%w: only the uploader or staff can delete a photo", ErrPermissionDenied)
	}
	return s.repos.WorkOrders.DeletePhoto(ctx, photoID)
}

func (s *WorkOrderService) newNote(orderID uuid.UUID, actor model.Principal, text string) *model.WorkOrderNote {
	return &model.WorkOrderNote{
		WorkOrderID: orderID,
		AuthorID:    actor.UserID,
		AuthorName:  actor.Name,
		AuthorRole:  actor.Role,
		Note:        text,
		CreatedAt:   s.now(),
	}
}
