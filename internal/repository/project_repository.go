package repository

import (
	"context"
	"encoding/json"

	"github.com/listing-studio/engine/internal/models"
	appErr "github.com/listing-studio/engine/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	BaseRepository[models.Project]
	ListByUser(ctx context.Context, userID string) ([]models.Project, error)
	GetWithChildren(ctx context.Context, projectID string, dest *models.Project) error
	SaveImageState(ctx context.Context, projectID string, prompts []string, sourceImageURL, analysisData string) error
	SaveLandingPrompt(ctx context.Context, projectID, prompt string) error
	Rename(ctx context.Context, projectID, name string) error
}

type projectRepository struct {
	BaseRepository[models.Project]
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{BaseRepository: NewBaseRepository[models.Project](db, "project"), db: db}
}

const projectCountsSelect = `projects.*,
	(SELECT count(*) FROM generated_images gi WHERE gi.project_id = projects.id) AS image_count,
	(SELECT count(*) FROM landings l WHERE l.project_id = projects.id) AS landing_count`

func (r *projectRepository) ListByUser(ctx context.Context, userID string) ([]models.Project, error) {
	var out []models.Project
	if err := r.db.WithContext(ctx).Select(projectCountsSelect).
		Where("projects.user_id = ?", userID).
		Order("projects.created_at DESC").
		Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects by user failed")
	}
	return out, nil
}

func (r *projectRepository) GetWithChildren(ctx context.Context, projectID string, dest *models.Project) error {
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Landings", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(dest, "id = ?", projectID).Error
	if err != nil {
		return notFoundOr(err, "project", "get project failed")
	}
	dest.ImageCount = int64(len(dest.Images))
	dest.LandingCount = int64(len(dest.Landings))
	return nil
}

func (r *projectRepository) SaveImageState(ctx context.Context, projectID string, prompts []string, sourceImageURL, analysisData string) error {
	raw, err := json.Marshal(prompts)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "encode image prompts failed")
	}
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", projectID).Updates(map[string]any{
		"image_prompts":    datatypes.JSON(raw),
		"source_image_url": sourceImageURL,
		"analysis_data":    analysisData,
	})
	return affectedOrNotFound(res, "project", "save image state failed")
}

func (r *projectRepository) SaveLandingPrompt(ctx context.Context, projectID, prompt string) error {
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", projectID).Update("landing_prompt", prompt)
	return affectedOrNotFound(res, "project", "save landing prompt failed")
}

func (r *projectRepository) Rename(ctx context.Context, projectID, name string) error {
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", projectID).Update("name", name)
	return affectedOrNotFound(res, "project", "rename project failed")
}
