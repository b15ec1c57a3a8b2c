package repository

import (
	"context"

	"invoicer/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceListFilter narrows an owner's invoice listing.
type InvoiceListFilter struct {
	Status string // draft, sent, paid or empty for all
	Page   int
	Limit  int
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByIDForUser(ctx context.Context, userID string, id uuid.UUID) (*model.Invoice, error)
	ListByUser(ctx context.Context, userID string, filter InvoiceListFilter) ([]model.Invoice, int64, error)
	// ListForAnalytics loads every invoice of the owner with only the columns
	// needed to derive totals and classify by date.
	ListForAnalytics(ctx context.Context, userID string) ([]model.Invoice, error)
	Update(ctx context.Context, invoice *model.Invoice) error
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return translateError(GetDB(ctx, r.db).Create(invoice).Error)
}

func (r *invoiceRepository) FindByIDForUser(ctx context.Context, userID string, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) ListByUser(ctx context.Context, userID string, filter InvoiceListFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Invoice{}).Where("user_id = ?", userID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	offset := (filter.Page - 1) * filter.Limit
	fetchQuery := db.Where("user_id = ?", userID)
	if filter.Status != "" {
		fetchQuery = fetchQuery.Where("status = ?", filter.Status)
	}
	if err := fetchQuery.Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&invoices).Error; err != nil {
		return nil, 0, translateError(err)
	}

	return invoices, total, nil
}

func (r *invoiceRepository) ListForAnalytics(ctx context.Context, userID string) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := GetDB(ctx, r.db).
		Select("id", "issue_date", "due_date", "items", "tax_type", "tax", "discount", "shipping", "paid_amount").
		Where("user_id = ?", userID).
		Find(&invoices).Error
	if err != nil {
		return nil, translateError(err)
	}
	return invoices, nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	return translateError(GetDB(ctx, r.db).Save(invoice).Error)
}
