package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/williamsps/maintenance-portal/internal/model"
)

type ClientFilter struct {
	Search string
	Status model.ClientStatus
	Page   model.Page
}

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *model.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *ClientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := r.fillCounts(ctx, []*model.Client{&client}); err != nil {
		return nil, err
	}
	return &client, nil
}

// CodeExists includes soft-deleted clients; codes are never reused.
func (r *ClientRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&model.Client{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *ClientRepository) List(ctx context.Context, filter ClientFilter) ([]model.Client, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Client{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(name) LIKE ? "+likeEscape+" OR LOWER(code) LIKE ? "+likeEscape+")", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []model.Client
	err := query.Order("name ASC").Offset(filter.Page.Offset()).Limit(filter.Page.Limit).Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}

	ptrs := make([]*model.Client, len(clients))
	for i := range clients {
		ptrs[i] = &clients[i]
	}
	if err := r.fillCounts(ctx, ptrs); err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

// Update writes every mutable column when the stored version still matches.
func (r *ClientRepository) Update(ctx context.Context, client *model.Client) error {
	expected := client.Version
	res := r.db.WithContext(ctx).Model(&model.Client{}).
		Where("id = ? AND version = ?", client.ID, expected).
		Updates(map[string]interface{}{
			"name":          client.Name,
			"status":        client.Status,
			"contact_name":  client.ContactName,
			"contact_email": client.ContactEmail,
			"contact_phone": client.ContactPhone,
			"protected":     client.Protected,
			"version":       expected + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	client.Version = expected + 1
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Client{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Dependents counts active users and work orders that belong to the client.
func (r *ClientRepository) Dependents(ctx context.Context, id uuid.UUID) (users int64, workOrders int64, err error) {
	if err = r.db.WithContext(ctx).Model(&model.User{}).Where("client_id = ?", id).Count(&users).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).Model(&model.WorkOrder{}).Where("client_id = ?", id).Count(&workOrders).Error; err != nil {
		return 0, 0, err
	}
	return users, workOrders, nil
}

func (r *ClientRepository) Stats(ctx context.Context, id uuid.UUID) (*model.ClientStats, error) {
	stats := &model.ClientStats{ClientID: id, QuotesByStatus: map[model.QuoteStatus]int64{}}

	users, workOrders, err := r.Dependents(ctx, id)
	if err != nil {
		return nil, err
	}
	stats.UserCount = users
	stats.WorkOrderCount = workOrders

	err = r.db.WithContext(ctx).Model(&model.WorkOrder{}).
		Where("client_id = ? AND status IN ?", id, []model.WorkOrderStatus{model.WorkOrderPending, model.WorkOrderInProgress}).
		Count(&stats.OpenWorkOrders).Error
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Status model.QuoteStatus
		Count  int64
	}
	err = r.db.WithContext(ctx).Model(&model.Quote{}).
		Select("status, COUNT(*) AS count").
		Where("client_id = ?", id).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.QuotesByStatus[row.Status] = row.Count
		stats.QuoteCount += row.Count
	}
	return stats, nil
}

type clientCount struct {
	ClientID uuid.UUID
	Count    int64
}

func (r *ClientRepository) fillCounts(ctx context.Context, clients []*model.Client) error {
	if len(clients) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}

	var users []clientCount
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Select("client_id, COUNT(*) AS count").
		Where("client_id IN ?", ids).
		Group("client_id").
		Scan(&users).Error
	if err != nil {
		return err
	}

	var workOrders []clientCount
	err = r.db.WithContext(ctx).Model(&model.WorkOrder{}).
		Select("client_id, COUNT(*) AS count").
		Where("client_id IN ?", ids).
		Group("client_id").
		Scan(&workOrders).Error
	if err != nil {
		return err
	}

	userCounts := make(map[uuid.UUID]int64, len(users))
	for _, row := range users {
		userCounts[row.ClientID] = row.Count
	}
	workOrderCounts := make(map[uuid.UUID]int64, len(workOrders))
	for _, row := range workOrders {
		workOrderCounts[row.ClientID] = row.Count
	}
	for _, c := range clients {
		c.UserCount = userCounts[c.ID]
		c.WorkOrderCount = workOrderCounts[c.ID]
	}
	return nil
}
