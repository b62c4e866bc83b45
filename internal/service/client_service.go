package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/repository"
	"github.com/williamsps/maintenance-portal/internal/validation"
)

type ClientService struct {
	repos     *repository.Repositories
	validate  *validation.Validator
	protected map[string]bool
}

func NewClientService(repos *repository.Repositories, validate *validation.Validator, protectedCodes []string) *ClientService {
	protected := make(map[string]bool, len(protectedCodes))
	for _, code := range protectedCodes {
		protected[strings.ToUpper(strings.TrimSpace(code))] = true
	}
	return &ClientService{repos: repos, validate: validate, protected: protected}
}

type ClientListInput struct {
	Search string
	Status model.ClientStatus
	Page   model.Page
}

func (s *ClientService) List(ctx context.Context, principal model.Principal, input ClientListInput) ([]model.Client, model.Pagination, error) {
	if !principal.Role.ProviderSide() {
		return nil, model.Pagination{}, fmt.Errorf("%w: only staff and admins list clients", ErrPermissionDenied)
	}
	if input.Status != "" && !input.Status.Valid() {
		return nil, model.Pagination{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, input.Status)
	}
	clients, total, err := s.repos.Clients.List(ctx, repository.ClientFilter{
		Search: input.Search,
		Status: input.Status,
		Page:   input.Page,
	})
	if err != nil {
		return nil, model.Pagination{}, err
	}
	return clients, input.Page.Result(total), nil
}

func (s *ClientService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Client, error) {
	if !principal.Role.ProviderSide() && principal.ClientID != id {
		return nil, fmt.Errorf("%w: client", ErrNotFound)
	}
	client, err := s.repos.Clients.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "client")
	}
	return client, nil
}

type CreateClientInput struct {
	Name         string             `json:"name" validate:"required,max=200"`
	Code         string             `json:"code" validate:"required,max=50,client_code"`
	Status       model.ClientStatus `json:"status" validate:"omitempty,oneof=active inactive archived"`
	ContactName  string             `json:"contact_name" validate:"max=200"`
	ContactEmail string             `json:"contact_email" validate:"omitempty,email,max=200"`
	ContactPhone string             `json:"contact_phone" validate:"max=50"`
}

func (s *ClientService) Create(ctx context.Context, principal model.Principal, input CreateClientInput) (*model.Client, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins manage clients", ErrPermissionDenied)
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Code = strings.TrimSpace(input.Code)
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	exists, err := s.repos.Clients.CodeExists(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: client code %s is already in use", ErrConflict, input.Code)
	}

	status := input.Status
	if status == "" {
		status = model.ClientStatusActive
	}
	client := &model.Client{
		Name:         input.Name,
		Code:         input.Code,
		Status:       status,
		ContactName:  strings.TrimSpace(input.ContactName),
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		ContactPhone: strings.TrimSpace(input.ContactPhone),
		Protected:    s.protected[input.Code],
		Version:      1,
	}
	if err := s.repos.Clients.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

type UpdateClientInput struct {
	Name         *string
	Code         *string
	Status       *model.ClientStatus
	ContactName  *string
	ContactEmail *string
	ContactPhone *string
	Version      *int
}

type clientForm struct {
	Name         string             `json:"name" validate:"required,max=200"`
	Status       model.ClientStatus `json:"status" validate:"required,oneof=active inactive archived"`
	ContactEmail string             `json:"contact_email" validate:"omitempty,email,max=200"`
}

// Update edits a client. The code is fixed at creation; sending the current
// code back is accepted, any other value is rejected.
func (s *ClientService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input UpdateClientInput) (*model.Client, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins manage clients", ErrPermissionDenied)
	}
	client, err := s.repos.Clients.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "client")
	}
	if err := checkVersion("client", input.Version, client.Version); err != nil {
		return nil, err
	}

	var extra validation.Fields
	if input.Code != nil && strings.TrimSpace(*input.Code) != client.Code {
		extra.Add("code", "code cannot be changed after creation")
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&client.Name, input.Name)
	set(&client.ContactName, input.ContactName)
	set(&client.ContactEmail, input.ContactEmail)
	set(&client.ContactPhone, input.ContactPhone)
	if input.Status != nil {
		client.Status = *input.Status
	}

	err = s.validate.Struct(clientForm{
		Name:         client.Name,
		Status:       client.Status,
		ContactEmail: client.ContactEmail,
	}, extra...)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Clients.Update(ctx, client); err != nil {
		return nil, translate(err, "client")
	}
	return client, nil
}

// Delete soft-deletes a client that has no users or work orders left.
func (s *ClientService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return fmt.Errorf("%w: only admins manage clients", ErrPermissionDenied)
	}
	client, err := s.repos.Clients.Get(ctx, id)
	if err != nil {
		return translate(err, "client")
	}
	if client.Protected || s.protected[client.Code] {
		return fmt.Errorf("%w: client %s is protected and cannot be deleted", ErrConflict, client.Code)
	}

	users, workOrders, err := s.repos.Clients.Dependents(ctx, id)
	if err != nil {
		return err
	}
	if users > 0 || workOrders > 0 {
		return newDeleteBlocked(users, workOrders)
	}
	return translate(s.repos.Clients.Delete(ctx, id), "client")
}

func (s *ClientService) Stats(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.ClientStats, error) {
	if !principal.Role.ProviderSide() && !(principal.IsClientAdmin() && principal.ClientID == id) {
		return nil, fmt.Errorf("%w: client stats", ErrPermissionDenied)
	}
	if _, err := s.repos.Clients.Get(ctx, id); err != nil {
		return nil, translate(err, "client")
	}
	return s.repos.Clients.Stats(ctx, id)
}
