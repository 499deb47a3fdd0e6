package repository

import (
	"context"
	"errors"

	"github.com/listing-studio/engine/internal/models"
	appErr "github.com/listing-studio/engine/pkg/errors"
	"gorm.io/gorm"
)

type LandingRepository interface {
	BaseRepository[models.Landing]
	// GetStatus returns LandingNotFound without error when the row is missing.
	GetStatus(ctx context.Context, landingID string) (models.LandingStatus, string, error)
	// SetStatus overwrites the status regardless of the current one.
	SetStatus(ctx context.Context, landingID string, status models.LandingStatus) error
	// MarkCompleted and MarkFailed only move a landing out of generating.
	// A landing already terminal yields CodeConflict.
	MarkCompleted(ctx context.Context, landingID, url, key string) error
	MarkFailed(ctx context.Context, landingID string) error
	ListByProject(ctx context.Context, projectID string) ([]models.Landing, error)
}

type landingRepository struct {
	BaseRepository[models.Landing]
	db *gorm.DB
}

func NewLandingRepository(db *gorm.DB) LandingRepository {
	return &landingRepository{BaseRepository: NewBaseRepository[models.Landing](db, "landing"), db: db}
}

func (r *landingRepository) GetStatus(ctx context.Context, landingID string) (models.LandingStatus, string, error) {
	var l models.Landing
	err := r.db.WithContext(ctx).Select("status", "url").First(&l, "id = ?", landingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.LandingNotFound, "", nil
	}
	if err != nil {
		return "", "", appErr.Wrap(err, appErr.CodeInternal, "get landing status failed")
	}
	return l.Status, l.URL, nil
}

func (r *landingRepository) SetStatus(ctx context.Context, landingID string, status models.LandingStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Landing{}).Where("id = ?", landingID).Update("status", status)
	return affectedOrNotFound(res, "landing", "update landing status failed")
}

func (r *landingRepository) MarkCompleted(ctx context.Context, landingID, url, key string) error {
	return r.finish(ctx, landingID, map[string]any{
		"status": models.LandingCompleted,
		"url":    url,
		"s3_key": key,
	})
}

func (r *landingRepository) MarkFailed(ctx context.Context, landingID string) error {
	return r.finish(ctx, landingID, map[string]any{"status": models.LandingFailed})
}

func (r *landingRepository) finish(ctx context.Context, landingID string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Landing{}).
		Where("id = ? AND status = ?", landingID, models.LandingGenerating).
		Updates(fields)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "finish landing failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeConflict, "landing is not generating")
	}
	return nil
}

func (r *landingRepository) ListByProject(ctx context.Context, projectID string) ([]models.Landing, error) {
	var out []models.Landing
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list landings failed")
	}
	return out, nil
}
