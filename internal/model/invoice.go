package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaxType enum constants
const (
	TaxTypePercentage = "percentage"
	TaxTypeFixed      = "fixed"
)

// InvoiceStatus enum constants. Independent of the computed payment bucket.
const (
	InvoiceStatusDraft = "draft"
	InvoiceStatusSent  = "sent"
	InvoiceStatusPaid  = "paid"
)

// Theme enum constants
const (
	ThemeClassic   = "classic"
	ThemeModern    = "modern"
	ThemeCompact   = "compact"
	ThemeStripe    = "stripe"
	ThemeZoho      = "zoho"
	ThemeFreshbook = "freshbook"
)

const (
	DefaultCurrency = "USD"
	DefaultColor    = "#000000"
)

// LineItem is one billed row of an invoice.
type LineItem struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Qty  decimal.Decimal `json:"qty"`
	Rate decimal.Decimal `json:"rate"`
}

// Party is the issuing or receiving side of an invoice.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
	Logo    string `json:"logo,omitempty"` // base64 or URL
}

// Invoice is owned by a single user and unique per (user_id, invoice_no).
// IssueDate and DueDate are kept as the strings the client sent; analytics parse them.
type Invoice struct {
	ID         uuid.UUID                     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string                        `gorm:"type:varchar(128);not null;index;uniqueIndex:idx_invoices_user_invoice_no,priority:1" json:"user_id"`
	UserName   string                        `gorm:"type:varchar(255);not null;default:''" json:"user_name"`
	UserEmail  string                        `gorm:"type:varchar(255);not null;default:''" json:"user_email"`
	InvoiceNo  string                        `gorm:"type:varchar(30);not null;uniqueIndex:idx_invoices_user_invoice_no,priority:2" json:"invoice_no"`
	IssueDate  string                        `gorm:"type:varchar(40);not null" json:"issue_date"`
	DueDate    string                        `gorm:"type:varchar(40)" json:"due_date"`
	From       datatypes.JSONType[Party]     `gorm:"not null" json:"from"`
	To         datatypes.JSONType[Party]     `gorm:"not null" json:"to"`
	Items      datatypes.JSONSlice[LineItem] `gorm:"not null" json:"items"`
	TaxType    string                        `gorm:"type:varchar(20);not null;default:'percentage'" json:"tax_type"`
	Tax        decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0" json:"tax"`
	Discount   decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0" json:"discount"`
	Shipping   decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0" json:"shipping"`
	PaidAmount decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0" json:"paid_amount"`
	Notes      string                        `gorm:"type:text;not null;default:''" json:"notes"`
	Terms      string                        `gorm:"type:text;not null;default:''" json:"terms"`
	Currency   string                        `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`
	Theme      string                        `gorm:"type:varchar(20);not null;default:'classic'" json:"theme"`
	Color      string                        `gorm:"type:varchar(20);not null;default:'#000000'" json:"color"`
	Status     string                        `gorm:"type:varchar(10);not null;default:'draft';index" json:"status"`
	CreatedAt  time.Time                     `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time                     `json:"updated_at"`
}

// BeforeCreate assigns the primary key client-side so every dialect behaves the same.
func (i *Invoice) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ValidTaxType reports whether t is a known tax type.
func ValidTaxType(t string) bool {
	return t == TaxTypePercentage || t == TaxTypeFixed
}

// ValidInvoiceStatus reports whether s is a known invoice status.
func ValidInvoiceStatus(s string) bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusSent || s == InvoiceStatusPaid
}

// ValidTheme reports whether t is a known rendering theme.
func ValidTheme(t string) bool {
	switch t {
	case ThemeClassic, ThemeModern, ThemeCompact, ThemeStripe, ThemeZoho, ThemeFreshbook:
		return true
	}
	return false
}
