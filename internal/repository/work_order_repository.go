package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/williamsps/maintenance-portal/internal/model"
)

type WorkOrderFilter struct {
	ClientID *uuid.UUID
	Status   model.WorkOrderStatus
	Search   string
	Urgent   *bool
	Page     model.Page
}

type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

func (r *WorkOrderRepository) Create(ctx context.Context, order *model.WorkOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

// Get loads the work order together with its notes and photos.
func (r *WorkOrderRepository) Get(ctx context.Context, id uuid.UUID) (*model.WorkOrder, error) {
	var order model.WorkOrder
	err := r.db.WithContext(ctx).
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("uploaded_at ASC") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *WorkOrderRepository) JobNoExists(ctx context.Context, jobNo string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WorkOrder{}).Where("job_no = ?", jobNo).Count(&count).Error
	return count > 0, err
}

func (r *WorkOrderRepository) filtered(ctx context.Context, filter WorkOrderFilter) *gorm.DB {
	query := scopeClient(r.db.WithContext(ctx).Model(&model.WorkOrder{}), "client_id", filter.ClientID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Urgent != nil {
		query = query.Where("is_urgent = ?", *filter.Urgent)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			"(LOWER(job_no) LIKE ? "+likeEscape+" OR LOWER(property_name) LIKE ? "+likeEscape+" OR LOWER(property_address) LIKE ? "+likeEscape+")",
			pattern, pattern, pattern,
		)
	}
	return query
}

func (r *WorkOrderRepository) List(ctx context.Context, filter WorkOrderFilter) ([]model.WorkOrder, int64, error) {
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.WorkOrder
	err := query.Order("created_at DESC").Offset(filter.Page.Offset()).Limit(filter.Page.Limit).Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Update writes the work order's own columns when the stored version still
// matches. Notes and photos are written through their own methods.
func (r *WorkOrderRepository) Update(ctx context.Context, order *model.WorkOrder) error {
	expected := order.Version
	order.Version = expected + 1
	res := r.db.WithContext(ctx).Model(order).
		Where("version = ?", expected).
		Select("*").
		Omit("id", "created_at", "client_id", "created_by", "job_no", clause.Associations).
		Updates(order)
	if res.Error != nil {
		order.Version = expected
		return res.Error
	}
	if res.RowsAffected == 0 {
		order.Version = expected
		return ErrVersionConflict
	}
	return nil
}

func (r *WorkOrderRepository) AddNote(ctx context.Context, note *model.WorkOrderNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *WorkOrderRepository) AddPhoto(ctx context.Context, photo *model.WorkOrderPhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *WorkOrderRepository) GetPhoto(ctx context.Context, id uuid.UUID) (*model.WorkOrderPhoto, error) {
	var photo model.WorkOrderPhoto
	if err := r.db.WithContext(ctx).First(&photo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *WorkOrderRepository) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.WorkOrderPhoto{}, "id = ?", id).Error
}

func (r *WorkOrderRepository) Summary(ctx context.Context, clientID *uuid.UUID) (*model.WorkOrderSummary, error) {
	var rows []struct {
		Status model.WorkOrderStatus
		Count  int64
	}
	err := scopeClient(r.db.WithContext(ctx).Model(&model.WorkOrder{}), "client_id", clientID).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &model.WorkOrderSummary{ByStatus: map[model.WorkOrderStatus]int64{}}
	for _, status := range model.WorkOrderStatuses {
		summary.ByStatus[status] = 0
	}
	for _, row := range rows {
		summary.ByStatus[row.Status] = row.Count
		summary.Total += row.Count
	}

	err = scopeClient(r.db.WithContext(ctx).Model(&model.WorkOrder{}), "client_id", clientID).
		Where("is_urgent = ? AND status IN ?", true, []model.WorkOrderStatus{model.WorkOrderPending, model.WorkOrderInProgress}).
		Count(&summary.Urgent).Error
	if err != nil {
		return nil, err
	}
	return summary, nil
}
