package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuoteStatus string

const (
	QuoteStatusDraft                QuoteStatus = "Draft"
	QuoteStatusSubmitted            QuoteStatus = "Submitted"
	QuoteStatusInformationRequested QuoteStatus = "Information Requested"
	QuoteStatusQuoted               QuoteStatus = "Quoted"
	QuoteStatusUnderDiscussion      QuoteStatus = "Under Discussion"
	QuoteStatusApproved             QuoteStatus = "Approved"
	QuoteStatusDeclined             QuoteStatus = "Declined"
	QuoteStatusExpired              QuoteStatus = "Expired"
	QuoteStatusConverted            QuoteStatus = "Converted"
)

var QuoteStatuses = []QuoteStatus{
	QuoteStatusDraft,
	QuoteStatusSubmitted,
	QuoteStatusInformationRequested,
	QuoteStatusQuoted,
	QuoteStatusUnderDiscussion,
	QuoteStatusApproved,
	QuoteStatusDeclined,
	QuoteStatusExpired,
	QuoteStatusConverted,
}

func (s QuoteStatus) Valid() bool {
	for _, status := range QuoteStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type BreakdownCategory string

const (
	CategoryMaterials     BreakdownCategory = "materials"
	CategoryLabor         BreakdownCategory = "labor"
	CategorySubcontractor BreakdownCategory = "subcontractor"
	CategoryPermits       BreakdownCategory = "permits"
	CategoryEquipment     BreakdownCategory = "equipment"
	CategoryOther         BreakdownCategory = "other"
)

func (c BreakdownCategory) Valid() bool {
	switch c {
	case CategoryMaterials, CategoryLabor, CategorySubcontractor, CategoryPermits, CategoryEquipment, CategoryOther:
		return true
	}
	return false
}

type BreakdownLine struct {
	Category    BreakdownCategory `json:"category"`
	Description string            `json:"description"`
	Cost        float64           `json:"cost"`
}

// Breakdown is an ordered list of cost lines. Lines have no identity of their
// own; removing one shifts every later line down by one position.
type Breakdown []BreakdownLine

// Total is derived from the lines on every call and rounded to cents.
func (b Breakdown) Total() float64 {
	var sum float64
	for _, line := range b {
		sum += line.Cost
	}
	return math.Round(sum*100) / 100
}

func (b Breakdown) Add(line BreakdownLine) Breakdown {
	out := make(Breakdown, 0, len(b)+1)
	out = append(out, b...)
	return append(out, line)
}

func (b Breakdown) Remove(index int) Breakdown {
	if index < 0 || index >= len(b) {
		return b
	}
	out := make(Breakdown, 0, len(b)-1)
	out = append(out, b[:index]...)
	return append(out, b[index+1:]...)
}

type Quote struct {
	ID                   uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	QuoteNumber          *string                            `gorm:"size:32;uniqueIndex" json:"quote_number"`
	ClientID             uuid.UUID                          `gorm:"type:uuid;not null;index" json:"client_id"`
	CreatedBy            uuid.UUID                          `gorm:"type:uuid;not null" json:"created_by"`
	Status               QuoteStatus                        `gorm:"size:32;not null;index" json:"status"`
	Title                string                             `gorm:"size:200" json:"title"`
	PropertyName         string                             `gorm:"size:200" json:"property_name"`
	PropertyAddress      string                             `gorm:"size:500" json:"property_address"`
	WorkType             string                             `gorm:"size:100" json:"work_type"`
	Description          string                             `gorm:"type:text" json:"description"`
	ScopeOfWork          string                             `gorm:"type:text" json:"scope_of_work"`
	ContactPerson        string                             `gorm:"size:200" json:"contact_person"`
	ContactEmail         string                             `gorm:"size:200" json:"contact_email"`
	ContactPhone         string                             `gorm:"size:50" json:"contact_phone"`
	IsUrgent             bool                               `gorm:"not null;default:false" json:"is_urgent"`
	RequiredByDate       *time.Time                         `json:"required_by_date"`
	SpecialInstructions  string                             `gorm:"type:text" json:"special_instructions"`
	EstimatedCost        *float64                           `gorm:"type:decimal(12,2)" json:"estimated_cost"`
	EstimatedHours       *float64                           `gorm:"type:decimal(10,2)" json:"estimated_hours"`
	QuoteNotes           string                             `gorm:"type:text" json:"quote_notes"`
	QuoteValidUntil      *time.Time                         `json:"quote_valid_until"`
	ItemizedBreakdown    datatypes.JSONSlice[BreakdownLine] `json:"itemized_breakdown"`
	InfoRequest          string                             `gorm:"type:text" json:"info_request,omitempty"`
	DeclineReason        string                             `gorm:"type:text" json:"decline_reason,omitempty"`
	ConvertedWorkOrderID *uuid.UUID                         `gorm:"type:uuid" json:"converted_work_order_id,omitempty"`
	SubmittedAt          *time.Time                         `json:"submitted_at,omitempty"`
	QuotedAt             *time.Time                         `json:"quoted_at,omitempty"`
	ApprovedAt           *time.Time                         `json:"approved_at,omitempty"`
	DeclinedAt           *time.Time                         `json:"declined_at,omitempty"`
	Version              int                                `gorm:"not null;default:1" json:"version"`
	CreatedAt            time.Time                          `json:"created_at"`
	UpdatedAt            time.Time                          `json:"updated_at"`
}

func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (q Quote) Breakdown() Breakdown {
	return Breakdown(q.ItemizedBreakdown)
}

// BreakdownTotal is exposed on responses only; it is never persisted.
func (q Quote) BreakdownTotal() float64 {
	return q.Breakdown().Total()
}

// QuoteNumberSequence hands out quote numbers per calendar year.
type QuoteNumberSequence struct {
	Year      int `gorm:"primaryKey;autoIncrement:false"`
	LastValue int `gorm:"not null;default:0"`
}

type MessageType string

const (
	MessageComment          MessageType = "comment"
	MessageQuestion         MessageType = "question"
	MessageResponse         MessageType = "response"
	MessageQuoteProvided    MessageType = "quote_provided"
	MessageQuoteUpdated     MessageType = "quote_updated"
	MessageApproved         MessageType = "approved"
	MessageDeclinedByStaff  MessageType = "declined_by_staff"
	MessageDeclinedByClient MessageType = "declined_by_client"
	MessageInfoRequested    MessageType = "info_requested"
	MessageExpired          MessageType = "expired"
	MessageRenewed          MessageType = "renewed"
	MessageStatusChange     MessageType = "status_change"
	MessageConverted        MessageType = "converted"
)

// UserPostable reports whether users may post the type directly; the rest are
// written by lifecycle transitions.
func (t MessageType) UserPostable() bool {
	switch t {
	case MessageComment, MessageQuestion, MessageResponse:
		return true
	}
	return false
}

type QuoteMessage struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	QuoteID       uuid.UUID   `gorm:"type:uuid;not null;index" json:"quote_id"`
	AuthorID      *uuid.UUID  `gorm:"type:uuid" json:"author_id"`
	AuthorName    string      `gorm:"size:200" json:"author_name"`
	AuthorRole    Role        `gorm:"size:20" json:"author_role"`
	Type          MessageType `gorm:"size:32;not null" json:"message_type"`
	Message       string      `gorm:"type:text" json:"message"`
	PreviousCost  *float64    `gorm:"type:decimal(12,2)" json:"previous_cost,omitempty"`
	NewCost       *float64    `gorm:"type:decimal(12,2)" json:"new_cost,omitempty"`
	PreviousHours *float64    `gorm:"type:decimal(10,2)" json:"previous_hours,omitempty"`
	NewHours      *float64    `gorm:"type:decimal(10,2)" json:"new_hours,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

func (m *QuoteMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type AttachmentSide string

const (
	SideProvider AttachmentSide = "provider"
	SideClient   AttachmentSide = "client"
)

func SideOf(role Role) AttachmentSide {
	if role.ProviderSide() {
		return SideProvider
	}
	return SideClient
}

type QuoteAttachment struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	QuoteID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"quote_id"`
	Filename       string         `gorm:"size:255;not null" json:"filename"`
	Size           int64          `gorm:"not null" json:"size"`
	URL            string         `gorm:"size:1000;not null" json:"url"`
	ContentType    string         `gorm:"size:100" json:"content_type,omitempty"`
	UploadedBy     uuid.UUID      `gorm:"type:uuid;not null" json:"uploaded_by"`
	UploadedBySide AttachmentSide `gorm:"size:20;not null" json:"uploaded_by_side"`
	UploadedAt     time.Time      `gorm:"not null" json:"uploaded_at"`
}

func (a *QuoteAttachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type QuoteSummary struct {
	Total    int64                 `json:"total"`
	ByStatus map[QuoteStatus]int64 `json:"by_status"`
	Urgent   int64                 `json:"urgent"`
	// AwaitingAction counts quotes waiting on the caller's side.
	AwaitingAction int64 `json:"awaiting_action"`
}
