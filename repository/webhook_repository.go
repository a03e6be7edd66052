package repository

import (
	"context"
	"errors"

	"github.com/sellyourtackle/tackle-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WebhookRepository interface {
	CreateLog(ctx context.Context, log *models.WebhookLog) error
	// InsertEvent records a gateway event id. It returns false when the id was
	// already present, which callers treat as "already processed".
	InsertEvent(ctx context.Context, eventID, eventType string) (bool, error)
	// DeleteEvent drops a recorded event id so a redelivery of the same event
	// is processed again.
	DeleteEvent(ctx context.Context, eventID string) error
	ListLogs(ctx context.Context, page, limit int) ([]models.WebhookLog, int64, error)
}

type gormWebhookRepo struct {
	db *gorm.DB
}

func NewGormWebhookRepo(db *gorm.DB) WebhookRepository {
	return &gormWebhookRepo{db: db}
}

func (r *gormWebhookRepo) CreateLog(ctx context.Context, log *models.WebhookLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *gormWebhookRepo) InsertEvent(ctx context.Context, eventID, eventType string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.WebhookEvent{EventID: eventID, EventType: eventType})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormWebhookRepo) DeleteEvent(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&models.WebhookEvent{}).Error
}

func (r *gormWebhookRepo) ListLogs(ctx context.Context, page, limit int) ([]models.WebhookLog, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.WebhookLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.WebhookLog
	if err := r.db.WithContext(ctx).Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
