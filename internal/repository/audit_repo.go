package repository

import (
	"context"

	"invoicer/internal/model"

	"gorm.io/gorm"
)

// AuditListFilter narrows an owner's audit trail. Empty fields match everything.
type AuditListFilter struct {
	EntityID string
	Action   string
	Page     int
	Limit    int
}

type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	ListByUser(ctx context.Context, userID string, filter AuditListFilter) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Create joins the caller's transaction when one is in ctx.
func (r *auditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	return translateError(GetDB(ctx, r.db).Create(entry).Error)
}

func (r *auditRepository) ListByUser(ctx context.Context, userID string, filter AuditListFilter) ([]model.AuditLog, int64, error) {
	var entries []model.AuditLog
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", userID)
		if filter.EntityID != "" {
			db = db.Where("entity_id = ?", filter.EntityID)
		}
		if filter.Action != "" {
			db = db.Where("action = ?", filter.Action)
		}
		return db
	}

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.AuditLog{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.Scopes(scope).Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&entries).Error; err != nil {
		return nil, 0, translateError(err)
	}

	return entries, total, nil
}
