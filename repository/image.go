package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"webapp/models"
)

type ImageRepo struct {
	db *gorm.DB
}

func NewImageRepo(db *gorm.DB) *ImageRepo {
	return &ImageRepo{db: db}
}

// FindLatestByUser returns the newest image row for the user. Uploads are not
// schema-limited to one per user, so reads always resolve to the most recent.
func (r *ImageRepo) FindLatestByUser(ctx context.Context, userID string) (*models.Image, error) {
	var image models.Image
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find image by user: %w", err)
	}
	return &image, nil
}

func (r *ImageRepo) Create(ctx context.Context, image *models.Image) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	return nil
}

func (r *ImageRepo) Delete(ctx context.Context, image *models.Image) error {
	if err := r.db.WithContext(ctx).Delete(image).Error; err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
