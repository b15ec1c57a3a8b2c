package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionCreateInvoice = "CREATE_INVOICE"
	ActionUpdateInvoice = "UPDATE_INVOICE"
	ActionUpdateStatus  = "UPDATE_INVOICE_STATUS"
	ActionRecordPayment = "RECORD_PAYMENT"
	ActionGoogleSignIn  = "GOOGLE_SIGN_IN"
)

// AuditLog tracks Who, What, and When for invoice changes
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string         `gorm:"type:varchar(128);not null;index" json:"user_id"`
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string         `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string         `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name, e.g. the invoice number
	Details    datatypes.JSON `json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
