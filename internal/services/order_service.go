package services

import (
	"context"

	"github.com/listing-studio/engine/internal/models"
	"github.com/listing-studio/engine/internal/repository"
	"github.com/listing-studio/engine/pkg/logger"
	"go.uber.org/zap"
)

// OrderInput is a lead as posted by a published landing. Fields are stored as given.
type OrderInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OrderService records leads captured by published landings.
type OrderService interface {
	SubmitOrder(ctx context.Context, landingID string, in OrderInput) (*models.Order, error)
	// ListOrders returns the leads of a landing owned by userID inside projectID.
	ListOrders(ctx context.Context, userID, projectID, landingID string) ([]models.Order, error)
}

type orderService struct {
	landings repository.LandingRepository
	orders   repository.OrderRepository
}

func NewOrderService(landings repository.LandingRepository, orders repository.OrderRepository) OrderService {
	return &orderService{landings: landings, orders: orders}
}

var _ OrderService = (*orderService)(nil)

func (s *orderService) SubmitOrder(ctx context.Context, landingID string, in OrderInput) (*models.Order, error) {
	logger.L().Info("submit order", zap.String("landing_id", landingID))
	var l models.Landing
	if err := s.landings.GetByID(ctx, landingID, &l); err != nil {
		return nil, err
	}
	o := &models.Order{LandingID: l.ID, UserID: l.UserID, Name: in.Name, Email: in.Email, Phone: in.Phone}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID, projectID, landingID string) ([]models.Order, error) {
	logger.L().Info("list orders", zap.String("landing_id", landingID), zap.String("user_id", userID), zap.String("project_id", projectID))
	var l models.Landing
	if err := s.landings.GetByID(ctx, landingID, &l); err != nil {
		return nil, err
	}
	// someone else's landing looks the same as a missing one
	if l.UserID != userID || l.ProjectID != projectID {
		return nil, notFound("landing")
	}
	return s.orders.ListByLanding(ctx, landingID)
}
