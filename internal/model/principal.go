package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleStaff       Role = "staff"
	RoleClientAdmin Role = "client_admin"
	RoleClient      Role = "client"
	// RoleSystem is never assigned to a user; it drives expiry.
	RoleSystem Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleClientAdmin, RoleClient:
		return true
	}
	return false
}

// ProviderSide reports whether the role belongs to the maintenance provider
// rather than to a client organization.
func (r Role) ProviderSide() bool {
	return r == RoleAdmin || r == RoleStaff || r == RoleSystem
}

type Principal struct {
	UserID   uuid.UUID
	ClientID uuid.UUID
	Role     Role
	Name     string
	Email    string
	TokenID  string
	// ContextClientID is set from X-Client-Context for admins only.
	ContextClientID *uuid.UUID
}

func (p Principal) IsAdmin() bool       { return p.Role == RoleAdmin }
func (p Principal) IsStaff() bool       { return p.Role == RoleStaff }
func (p Principal) IsClientAdmin() bool { return p.Role == RoleClientAdmin }
func (p Principal) IsClient() bool      { return p.Role == RoleClient }

// ScopeClientID returns the tenant the principal is restricted to, or nil when
// the principal may see every tenant.
func (p Principal) ScopeClientID() *uuid.UUID {
	switch p.Role {
	case RoleAdmin:
		return p.ContextClientID
	case RoleStaff, RoleSystem:
		return nil
	default:
		id := p.ClientID
		return &id
	}
}

// CanAccessClient reports whether records of the given tenant are visible.
func (p Principal) CanAccessClient(clientID uuid.UUID) bool {
	scope := p.ScopeClientID()
	return scope == nil || *scope == clientID
}

func SystemPrincipal() Principal {
	return Principal{Role: RoleSystem, Name: "system"}
}
