package repository

import (
	"context"

	"github.com/civictrack/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WardRepository interface {
	Create(ctx context.Context, ward *models.Ward) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Ward, error)
	List(ctx context.Context) ([]models.Ward, error)
}

type wardRepository struct {
	db *gorm.DB
}

func NewWardRepository(db *gorm.DB) WardRepository {
	return &wardRepository{db: db}
}

func (r *wardRepository) Create(ctx context.Context, ward *models.Ward) error {
	return r.db.WithContext(ctx).Create(ward).Error
}

func (r *wardRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Ward, error) {
	var ward models.Ward
	err := r.db.WithContext(ctx).Preload("Officer").First(&ward, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ward, nil
}

func (r *wardRepository) List(ctx context.Context) ([]models.Ward, error) {
	var wards []models.Ward
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("number ASC").
		Find(&wards).Error
	return wards, err
}
