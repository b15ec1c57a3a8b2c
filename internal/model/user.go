package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is created on first Google sign-in. GoogleID is the owner identifier
// stamped on every invoice and counter the user owns.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GoogleID  string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"google_id"`
	Email     string    `gorm:"type:varchar(255);index;not null;default:''" json:"email"`
	Name      string    `gorm:"type:varchar(255);not null;default:''" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
