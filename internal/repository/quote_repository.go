package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/williamsps/maintenance-portal/internal/model"
)

type QuoteFilter struct {
	ClientID *uuid.UUID
	Statuses []model.QuoteStatus
	Search   string
	Urgent   *bool
	Page     model.Page
}

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) Get(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var quote model.Quote
	if err := r.db.WithContext(ctx).First(&quote, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) filtered(ctx context.Context, filter QuoteFilter) *gorm.DB {
	query := scopeClient(r.db.WithContext(ctx).Model(&model.Quote{}), "client_id", filter.ClientID)
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Urgent != nil {
		query = query.Where("is_urgent = ?", *filter.Urgent)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			"(LOWER(title) LIKE ? "+likeEscape+" OR LOWER(property_name) LIKE ? "+likeEscape+" OR LOWER(COALESCE(quote_number, '')) LIKE ? "+likeEscape+")",
			pattern, pattern, pattern,
		)
	}
	return query
}

func (r *QuoteRepository) List(ctx context.Context, filter QuoteFilter) ([]model.Quote, int64, error) {
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quotes []model.Quote
	err := query.Order("created_at DESC").Offset(filter.Page.Offset()).Limit(filter.Page.Limit).Find(&quotes).Error
	if err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

// ListAll returns every matching quote without paging, newest first.
func (r *QuoteRepository) ListAll(ctx context.Context, filter QuoteFilter) ([]model.Quote, error) {
	var quotes []model.Quote
	err := r.filtered(ctx, filter).Order("created_at DESC").Find(&quotes).Error
	return quotes, err
}

// Update writes every column of quote when the stored version still matches,
// then bumps the version.
func (r *QuoteRepository) Update(ctx context.Context, quote *model.Quote) error {
	expected := quote.Version
	quote.Version = expected + 1
	res := r.db.WithContext(ctx).Model(quote).
		Where("version = ?", expected).
		Select("*").
		Omit("id", "created_at", "client_id", "created_by").
		Updates(quote)
	if res.Error != nil {
		quote.Version = expected
		return res.Error
	}
	if res.RowsAffected == 0 {
		quote.Version = expected
		return ErrVersionConflict
	}
	return nil
}

// NextQuoteNumber reserves the next QTE-YYYY-### number for year. It must run
// inside the transaction that stores the number on the quote.
func (r *QuoteRepository) NextQuoteNumber(ctx context.Context, year int) (string, error) {
	db := r.db.WithContext(ctx)
	for attempt := 0; attempt < 2; attempt++ {
		res := db.Model(&model.QuoteNumberSequence{}).
			Where("year = ?", year).
			UpdateColumn("last_value", gorm.Expr("last_value + 1"))
		if res.Error != nil {
			return "", res.Error
		}
		if res.RowsAffected == 0 {
			created := db.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&model.QuoteNumberSequence{Year: year, LastValue: 1})
			if created.Error != nil {
				return "", created.Error
			}
			if created.RowsAffected == 0 {
				continue
			}
			return formatQuoteNumber(year, 1), nil
		}

		var seq model.QuoteNumberSequence
		if err := db.First(&seq, "year = ?", year).Error; err != nil {
			return "", err
		}
		return formatQuoteNumber(year, seq.LastValue), nil
	}
	return "", fmt.Errorf("allocate quote number for %d: %w", year, ErrVersionConflict)
}

func formatQuoteNumber(year, value int) string {
	return fmt.Sprintf("QTE-%d-%03d", year, value)
}

// ExpiryCandidates lists open quotes whose validity date is before now.
func (r *QuoteRepository) ExpiryCandidates(ctx context.Context, now time.Time, open []model.QuoteStatus) ([]model.Quote, error) {
	var quotes []model.Quote
	err := r.db.WithContext(ctx).
		Where("status IN ? AND quote_valid_until IS NOT NULL AND quote_valid_until < ?", open, now.UTC()).
		Order("quote_valid_until ASC").
		Find(&quotes).Error
	return quotes, err
}

func (r *QuoteRepository) CountByStatus(ctx context.Context, clientID *uuid.UUID) (map[model.QuoteStatus]int64, error) {
	var rows []struct {
		Status model.QuoteStatus
		Count  int64
	}
	err := scopeClient(r.db.WithContext(ctx).Model(&model.Quote{}), "client_id", clientID).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.QuoteStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *QuoteRepository) CountUrgent(ctx context.Context, clientID *uuid.UUID, open []model.QuoteStatus) (int64, error) {
	var count int64
	err := scopeClient(r.db.WithContext(ctx).Model(&model.Quote{}), "client_id", clientID).
		Where("is_urgent = ? AND status IN ?", true, open).
		Count(&count).Error
	return count, err
}

func (r *QuoteRepository) AddMessage(ctx context.Context, msg *model.QuoteMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *QuoteRepository) Messages(ctx context.Context, quoteID uuid.UUID) ([]model.QuoteMessage, error) {
	var messages []model.QuoteMessage
	err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *QuoteRepository) AddAttachment(ctx context.Context, attachment *model.QuoteAttachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *QuoteRepository) Attachments(ctx context.Context, quoteID uuid.UUID) ([]model.QuoteAttachment, error) {
	var attachments []model.QuoteAttachment
	err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("uploaded_at ASC").
		Find(&attachments).Error
	return attachments, err
}

func (r *QuoteRepository) GetAttachment(ctx context.Context, id uuid.UUID) (*model.QuoteAttachment, error) {
	var attachment model.QuoteAttachment
	if err := r.db.WithContext(ctx).First(&attachment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *QuoteRepository) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.QuoteAttachment{}, "id = ?", id).Error
}
