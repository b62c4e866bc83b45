package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnauthorized      = errors.New("unauthorized")
)

type DeleteBlockedDetails struct {
	UserCount      int64 `json:"user_count"`
	WorkOrderCount int64 `json:"work_order_count"`
}

// DeleteBlockedError reports the records that keep a client from being deleted.
type DeleteBlockedError struct {
	Message string
	Details DeleteBlockedDetails
}

func (e *DeleteBlockedError) Error() string {
	return e.Message
}

func newDeleteBlocked(users, workOrders int64) *DeleteBlockedError {
	return &DeleteBlockedError{
		Message: fmt.Sprintf("client has %d user(s) and %d work order(s); remove them before deleting", users, workOrders),
		Details: DeleteBlockedDetails{UserCount: users, WorkOrderCount: workOrders},
	}
}
