package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spec-kit/chirpy/internal/domain"
)

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	DeleteAll(ctx context.Context) error
}

type userRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email          string    `gorm:"not null;uniqueIndex"`
	HashedPassword string    `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (userRecord) TableName() string { return "users" }

func (r *userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:             r.ID,
		Email:          r.Email,
		HashedPassword: r.HashedPassword,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a gorm-backed implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	rec := userRecord{
		ID:             user.ID,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return translate(err)
	}
	user.CreatedAt = rec.CreatedAt
	user.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&userRecord{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"email":           user.Email,
			"hashed_password": user.HashedPassword,
			"updated_at":      now,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	user.UpdatedAt = now
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return rec.toDomain(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return rec.toDomain(), nil
}

// DeleteAll removes every user; chirps go with them through ON DELETE CASCADE.
func (r *userRepository) DeleteAll(ctx context.Context) error {
	return translate(r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&userRecord{}).Error)
}
