package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrVersionConflict is returned when a row changed since it was read.
var ErrVersionConflict = errors.New("version conflict")

type Repositories struct {
	db         *gorm.DB
	Clients    *ClientRepository
	Users      *UserRepository
	Quotes     *QuoteRepository
	WorkOrders *WorkOrderRepository
	Alerts     *AlertRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:         db,
		Clients:    NewClientRepository(db),
		Users:      NewUserRepository(db),
		Quotes:     NewQuoteRepository(db),
		WorkOrders: NewWorkOrderRepository(db),
		Alerts:     NewAlertRepository(db),
	}
}

// Transaction runs fn with repositories bound to a single database transaction.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func (r *Repositories) DB() *gorm.DB {
	return r.db
}

func likePattern(search string) string {
	search = strings.ToLower(strings.TrimSpace(search))
	search = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(search)
	return "%" + search + "%"
}

func scopeClient(q *gorm.DB, column string, clientID *uuid.UUID) *gorm.DB {
	if clientID == nil {
		return q
	}
	return q.Where(column+" = ?", *clientID)
}

const likeEscape = `ESCAPE '\'`
