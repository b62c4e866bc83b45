package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
	ClientStatusArchived ClientStatus = "archived"
)

func (s ClientStatus) Valid() bool {
	switch s {
	case ClientStatusActive, ClientStatusInactive, ClientStatusArchived:
		return true
	}
	return false
}

type Client struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string         `gorm:"size:200;not null" json:"name"`
	Code           string         `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Status         ClientStatus   `gorm:"size:20;not null;default:active;index" json:"status"`
	ContactName    string         `gorm:"size:200" json:"contact_name"`
	ContactEmail   string         `gorm:"size:200" json:"contact_email"`
	ContactPhone   string         `gorm:"size:50" json:"contact_phone"`
	Protected      bool           `gorm:"not null;default:false" json:"protected"`
	Version        int            `gorm:"not null;default:1" json:"version"`
	UserCount      int64          `gorm:"-" json:"user_count"`
	WorkOrderCount int64          `gorm:"-" json:"work_order_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type ClientStats struct {
	ClientID       uuid.UUID             `json:"client_id"`
	UserCount      int64                 `json:"user_count"`
	WorkOrderCount int64                 `json:"work_order_count"`
	QuoteCount     int64                 `json:"quote_count"`
	QuotesByStatus map[QuoteStatus]int64 `json:"quotes_by_status"`
	OpenWorkOrders int64                 `json:"open_work_orders"`
}
