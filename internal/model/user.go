package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"client_id"`
	Email        string         `gorm:"size:200;not null;uniqueIndex" json:"email"`
	Name         string         `gorm:"size:200;not null" json:"name"`
	Phone        string         `gorm:"size:50" json:"phone"`
	Role         Role           `gorm:"size:20;not null;index" json:"role"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	Active       bool           `gorm:"not null;default:true" json:"active"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u User) Principal() Principal {
	return Principal{
		UserID:   u.ID,
		ClientID: u.ClientID,
		Role:     u.Role,
		Name:     u.Name,
		Email:    u.Email,
	}
}
