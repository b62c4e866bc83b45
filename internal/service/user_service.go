package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/repository"
	"github.com/williamsps/maintenance-portal/internal/validation"
)

type UserService struct {
	repos    *repository.Repositories
	validate *validation.Validator
}

func NewUserService(repos *repository.Repositories, validate *validation.Validator) *UserService {
	return &UserService{repos: repos, validate: validate}
}

// manageScope returns the client whose users principal may manage; nil means all.
func manageScope(principal model.Principal) (*uuid.UUID, error) {
	switch principal.Role {
	case model.RoleAdmin:
		return principal.ContextClientID, nil
	case model.RoleClientAdmin:
		id := principal.ClientID
		return &id, nil
	default:
		return nil, fmt.Errorf("%w: only admins and client admins manage users", ErrPermissionDenied)
	}
}

func assignableRole(principal model.Principal, role model.Role) error {
	if !role.Valid() {
		return validation.FieldErr("role", "role must be one of admin, staff, client_admin, client")
	}
	if principal.IsClientAdmin() && role != model.RoleClient && role != model.RoleClientAdmin {
		return fmt.Errorf("%w: client admins may only assign client roles", ErrPermissionDenied)
	}
	return nil
}

type UserListInput struct {
	Search string
	Role   model.Role
	Page   model.Page
}

func (s *UserService) List(ctx context.Context, principal model.Principal, input UserListInput) ([]model.User, model.Pagination, error) {
	scope, err := manageScope(principal)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	users, total, err := s.repos.Users.List(ctx, repository.UserFilter{
		ClientID: scope,
		Role:     input.Role,
		Search:   input.Search,
		Page:     input.Page,
	})
	if err != nil {
		return nil, model.Pagination{}, err
	}
	return users, input.Page.Result(total), nil
}

func (s *UserService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.User, error) {
	if id == principal.UserID {
		return s.load(ctx, id)
	}
	scope, err := manageScope(principal)
	if err != nil {
		return nil, err
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if scope != nil && user.ClientID != *scope {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	return user, nil
}

func (s *UserService) load(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repos.Users.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}

type CreateUserInput struct {
	Email    string     `json:"email" validate:"required,email,max=200"`
	Name     string     `json:"name" validate:"required,max=200"`
	Phone    string     `json:"phone" validate:"max=50"`
	Role     model.Role `json:"role" validate:"required"`
	Password string     `json:"password" validate:"required,min=8,max=72"`
	ClientID *uuid.UUID `json:"-"`
}

func (s *UserService) Create(ctx context.Context, principal model.Principal, input CreateUserInput) (*model.User, error) {
	scope, err := manageScope(principal)
	if err != nil {
		return nil, err
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}
	if err := assignableRole(principal, input.Role); err != nil {
		return nil, err
	}

	clientID := input.ClientID
	if scope != nil {
		if clientID != nil && *clientID != *scope {
			return nil, fmt.Errorf("%w: cannot create users for another client", ErrPermissionDenied)
		}
		clientID = scope
	}
	if clientID == nil {
		return nil, validation.FieldErr("client_id", "client id is required")
	}
	if _, err := s.repos.Clients.Get(ctx, *clientID); err != nil {
		return nil, translate(err, "client")
	}

	exists, err := s.repos.Users.EmailExists(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email %s is already registered", ErrConflict, input.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		ClientID:     *clientID,
		Email:        input.Email,
		Name:         input.Name,
		Phone:        strings.TrimSpace(input.Phone),
		Role:         input.Role,
		PasswordHash: string(hash),
		Active:       true,
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type UpdateUserInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Role     *model.Role
	Active   *bool
	Password *string
}

type userForm struct {
	Email    string `json:"email" validate:"required,email,max=200"`
	Name     string `json:"name" validate:"required,max=200"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
}

func (s *UserService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input UpdateUserInput) (*model.User, error) {
	self := id == principal.UserID
	user, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if self && (input.Role != nil || input.Active != nil) {
		return nil, fmt.Errorf("%w: cannot change your own role or status", ErrPermissionDenied)
	}
	if !self {
		if _, err := manageScope(principal); err != nil {
			return nil, err
		}
		if principal.IsClientAdmin() && user.Role != model.RoleClient && user.Role != model.RoleClientAdmin {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != user.Email {
			exists, err := s.repos.Users.EmailExists(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, fmt.Errorf("%w: email %s is already registered", ErrConflict, email)
			}
			user.Email = email
		}
	}
	if input.Role != nil {
		if err := assignableRole(principal, *input.Role); err != nil {
			return nil, err
		}
		user.Role = *input.Role
	}
	if input.Active != nil {
		user.Active = *input.Active
	}

	password := ""
	if input.Password != nil {
		password = *input.Password
	}
	if err := s.validate.Struct(userForm{Email: user.Email, Name: user.Name, Password: password}); err != nil {
		return nil, err
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete deactivates the account; its history stays attributed.
func (s *UserService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if id == principal.UserID {
		return fmt.Errorf("%w: cannot delete your own account", ErrPermissionDenied)
	}
	user, err := s.Get(ctx, principal, id)
	if err != nil {
		return err
	}
	if principal.IsClientAdmin() && user.Role != model.RoleClient && user.Role != model.RoleClientAdmin {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return translate(s.repos.Users.Deactivate(ctx, id), "user")
}
