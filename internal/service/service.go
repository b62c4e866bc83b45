package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/repository"
	"github.com/williamsps/maintenance-portal/internal/validation"
)

// translate maps repository failures onto the service sentinels.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, repository.ErrVersionConflict):
		return fmt.Errorf("%w: %s was modified by someone else, reload and try again", ErrConflict, what)
	default:
		return err
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// checkVersion rejects a write made against a stale copy.
func checkVersion(what string, expected *int, current int) error {
	if expected != nil && *expected != current {
		return fmt.Errorf("%w: %s was modified by someone else, reload and try again", ErrConflict, what)
	}
	return nil
}

// resolveClient picks the tenant a new record belongs to: the caller's own
// scope, or the requested client for callers that span tenants.
func resolveClient(ctx context.Context, repos *repository.Repositories, principal model.Principal, requested *uuid.UUID) (uuid.UUID, error) {
	if scope := principal.ScopeClientID(); scope != nil {
		if requested != nil && *requested != *scope {
			return uuid.Nil, fmt.Errorf("%w: cannot create records for another client", ErrPermissionDenied)
		}
		return *scope, nil
	}
	if requested == nil {
		return uuid.Nil, validation.FieldErr("client_id", "client id is required")
	}
	if _, err := repos.Clients.Get(ctx, *requested); err != nil {
		return uuid.Nil, translate(err, "client")
	}
	return *requested, nil
}
