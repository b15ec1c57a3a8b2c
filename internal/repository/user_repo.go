package repository

import (
	"context"

	"invoicer/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for data access of User entities
type UserRepository interface {
	// UpsertByGoogleID creates the user or refreshes its email and name.
	UpsertByGoogleID(ctx context.Context, user *model.User) error
	GetByGoogleID(ctx context.Context, googleID string) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) UpsertByGoogleID(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "google_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return translateError(err)
	}
	// On conflict the generated ID was not stored; reload the persisted row.
	stored, err := r.GetByGoogleID(ctx, user.GoogleID)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

func (r *userRepository) GetByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "google_id = ?", googleID).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}
