package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spec-kit/chirpy/internal/domain"
)

// ChirpFilter narrows chirp listings.
type ChirpFilter struct {
	AuthorID *uuid.UUID
	Sort     domain.ChirpSort
}

// ChirpRepository encapsulates chirp persistence.
type ChirpRepository interface {
	Create(ctx context.Context, chirp *domain.Chirp) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Chirp, error)
	List(ctx context.Context, filter ChirpFilter) ([]domain.Chirp, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type chirpRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Body      string    `gorm:"not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (chirpRecord) TableName() string { return "chirps" }

func (r *chirpRecord) toDomain() domain.Chirp {
	return domain.Chirp{
		ID:        r.ID,
		Body:      r.Body,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type chirpRepository struct {
	db *gorm.DB
}

// NewChirpRepository instantiates repository.
func NewChirpRepository(db *gorm.DB) ChirpRepository {
	return &chirpRepository{db: db}
}

func (r *chirpRepository) Create(ctx context.Context, chirp *domain.Chirp) error {
	if chirp.ID == uuid.Nil {
		chirp.ID = uuid.New()
	}
	rec := chirpRecord{ID: chirp.ID, Body: chirp.Body, UserID: chirp.UserID}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return translate(err)
	}
	chirp.CreatedAt = rec.CreatedAt
	chirp.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *chirpRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chirp, error) {
	var rec chirpRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	chirp := rec.toDomain()
	return &chirp, nil
}

func (r *chirpRepository) List(ctx context.Context, filter ChirpFilter) ([]domain.Chirp, error) {
	query := r.db.WithContext(ctx).Model(&chirpRecord{})
	if filter.AuthorID != nil {
		query = query.Where("user_id = ?", *filter.AuthorID)
	}
	if filter.Sort == domain.ChirpSortDesc {
		query = query.Order("created_at DESC")
	} else {
		query = query.Order("created_at ASC")
	}

	var records []chirpRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, translate(err)
	}

	chirps := make([]domain.Chirp, 0, len(records))
	for i := range records {
		chirps = append(chirps, records[i].toDomain())
	}
	return chirps, nil
}

func (r *chirpRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&chirpRecord{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
