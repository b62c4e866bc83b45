package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkOrderStatus string

const (
	WorkOrderPending    WorkOrderStatus = "pending"
	WorkOrderInProgress WorkOrderStatus = "in-progress"
	WorkOrderCompleted  WorkOrderStatus = "completed"
	WorkOrderCancelled  WorkOrderStatus = "cancelled"
)

var WorkOrderStatuses = []WorkOrderStatus{
	WorkOrderPending,
	WorkOrderInProgress,
	WorkOrderCompleted,
	WorkOrderCancelled,
}

func (s WorkOrderStatus) Valid() bool {
	for _, status := range WorkOrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s WorkOrderStatus) Terminal() bool {
	return s == WorkOrderCompleted || s == WorkOrderCancelled
}

type Supplier struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type WorkOrder struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	JobNo              string           `gorm:"size:64;not null;uniqueIndex" json:"job_no"`
	ClientID           uuid.UUID        `gorm:"type:uuid;not null;index" json:"client_id"`
	QuoteID            *uuid.UUID       `gorm:"type:uuid;index" json:"quote_id,omitempty"`
	Status             WorkOrderStatus  `gorm:"size:20;not null;default:pending;index" json:"status"`
	PropertyName       string           `gorm:"size:200;not null" json:"property_name"`
	PropertyAddress    string           `gorm:"size:500;not null" json:"property_address"`
	PropertyPhone      string           `gorm:"size:50;not null" json:"property_phone"`
	Description        string           `gorm:"type:text;not null" json:"description"`
	PONumber           string           `gorm:"size:64" json:"po_number"`
	ScheduleDate       *time.Time       `json:"schedule_date"`
	IsUrgent           bool             `gorm:"not null;default:false" json:"is_urgent"`
	SupplierName       string           `gorm:"size:200;not null" json:"supplier_name"`
	SupplierPhone      string           `gorm:"size:50" json:"supplier_phone"`
	SupplierEmail      string           `gorm:"size:200" json:"supplier_email"`
	AuthorizedBy       string           `gorm:"size:200" json:"authorized_by"`
	AuthorizedContact  string           `gorm:"size:50" json:"authorized_contact"`
	AuthorizedEmail    string           `gorm:"size:200" json:"authorized_email"`
	CancellationReason string           `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CreatedBy          uuid.UUID        `gorm:"type:uuid;not null" json:"created_by"`
	Version            int              `gorm:"not null;default:1" json:"version"`
	Notes              []WorkOrderNote  `gorm:"foreignKey:WorkOrderID" json:"notes,omitempty"`
	Photos             []WorkOrderPhoto `gorm:"foreignKey:WorkOrderID" json:"photos,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func (w *WorkOrder) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

func (w WorkOrder) Supplier() Supplier {
	return Supplier{Name: w.SupplierName, Phone: w.SupplierPhone, Email: w.SupplierEmail}
}

func (w *WorkOrder) SetSupplier(s Supplier) {
	w.SupplierName = s.Name
	w.SupplierPhone = s.Phone
	w.SupplierEmail = s.Email
}

type WorkOrderNote struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkOrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"work_order_id"`
	AuthorID    uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	AuthorName  string    `gorm:"size:200" json:"author_name"`
	AuthorRole  Role      `gorm:"size:20" json:"author_role"`
	Note        string    `gorm:"type:text;not null" json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

func (n *WorkOrderNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

type WorkOrderPhoto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkOrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"work_order_id"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	Size        int64     `gorm:"not null" json:"size"`
	URL         string    `gorm:"size:1000;not null" json:"url"`
	Description string    `gorm:"size:500" json:"description"`
	UploadedBy  uuid.UUID `gorm:"type:uuid;not null" json:"uploaded_by"`
	UploadedAt  time.Time `gorm:"not null" json:"uploaded_at"`
}

func (p *WorkOrderPhoto) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type WorkOrderSummary struct {
	Total    int64                     `json:"total"`
	ByStatus map[WorkOrderStatus]int64 `json:"by_status"`
	Urgent   int64                     `json:"urgent"`
}
