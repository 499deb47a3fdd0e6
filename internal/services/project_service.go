package services

import (
	"context"
	"strings"

	"github.com/listing-studio/engine/internal/models"
	"github.com/listing-studio/engine/internal/repository"
	appErr "github.com/listing-studio/engine/pkg/errors"
	"github.com/listing-studio/engine/pkg/logger"
	"go.uber.org/zap"
)

// ProjectService manages the containers that hold a listing's pipeline state.
type ProjectService interface {
	CreateProject(ctx context.Context, userID, name string) (*models.Project, error)
	ListProjects(ctx context.Context, userID string) ([]models.Project, error)
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
	RenameProject(ctx context.Context, projectID, name string) (*models.Project, error)
	DeleteProject(ctx context.Context, projectID string) error
}

type projectService struct {
	users    repository.UserRepository
	projects repository.ProjectRepository
}

func NewProjectService(users repository.UserRepository, projects repository.ProjectRepository) ProjectService {
	return &projectService{users: users, projects: projects}
}

var _ ProjectService = (*projectService)(nil)

func (s *projectService) CreateProject(ctx context.Context, userID, name string) (*models.Project, error) {
	logger.L().Info("create project", zap.String("user_id", userID))
	if strings.TrimSpace(userID) == "" {
		return nil, appErr.New(appErr.CodeInvalid, "userId is required")
	}
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErr.New(appErr.CodeNotFound, "user "+userID+" not found")
	}
	p := &models.Project{UserID: userID, Name: strings.TrimSpace(name)}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	logger.L().Info("list projects", zap.String("user_id", userID))
	if strings.TrimSpace(userID) == "" {
		return nil, appErr.New(appErr.CodeInvalid, "userId is required")
	}
	return s.projects.ListByUser(ctx, userID)
}

func (s *projectService) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	logger.L().Info("get project", zap.String("project_id", projectID))
	var p models.Project
	if err := s.projects.GetWithChildren(ctx, projectID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *projectService) RenameProject(ctx context.Context, projectID, name string) (*models.Project, error) {
	logger.L().Info("rename project", zap.String("project_id", projectID))
	if err := s.projects.Rename(ctx, projectID, strings.TrimSpace(name)); err != nil {
		return nil, err
	}
	var p models.Project
	if err := s.projects.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *projectService) DeleteProject(ctx context.Context, projectID string) error {
	logger.L().Info("delete project", zap.String("project_id", projectID))
	return s.projects.Delete(ctx, projectID)
}
