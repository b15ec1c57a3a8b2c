package model

import "time"

// CounterKeyInvoice is the counter key used to mint invoice numbers.
const CounterKeyInvoice = "invoice"

// Counter holds a per-owner monotonic sequence. Seq only grows, by one per allocation.
type Counter struct {
	UserID    string    `gorm:"type:varchar(128);primaryKey" json:"user_id"`
	Key       string    `gorm:"column:key;type:varchar(50);primaryKey" json:"key"`
	Seq       int64     `gorm:"not null;default:0" json:"seq"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
