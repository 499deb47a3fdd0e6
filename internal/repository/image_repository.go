package repository

import (
	"context"

	"github.com/listing-studio/engine/internal/models"
	appErr "github.com/listing-studio/engine/pkg/errors"
	"gorm.io/gorm"
)

type ImageRepository interface {
	BaseRepository[models.GeneratedImage]
	ListByProject(ctx context.Context, projectID string) ([]models.GeneratedImage, error)
	// CountByProject is the resumption signal for image generation: failed attempts leave no row.
	CountByProject(ctx context.Context, projectID string) (int64, error)
}

type imageRepository struct {
	BaseRepository[models.GeneratedImage]
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{BaseRepository: NewBaseRepository[models.GeneratedImage](db, "image"), db: db}
}

func (r *imageRepository) ListByProject(ctx context.Context, projectID string) ([]models.GeneratedImage, error) {
	var out []models.GeneratedImage
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list images failed")
	}
	return out, nil
}

func (r *imageRepository) CountByProject(ctx context.Context, projectID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.GeneratedImage{}).Where("project_id = ?", projectID).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count images failed")
	}
	return n, nil
}
