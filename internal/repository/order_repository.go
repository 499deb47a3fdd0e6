package repository

import (
	"context"

	"github.com/listing-studio/engine/internal/models"
	appErr "github.com/listing-studio/engine/pkg/errors"
	"gorm.io/gorm"
)

type OrderRepository interface {
	BaseRepository[models.Order]
	ListByLanding(ctx context.Context, landingID string) ([]models.Order, error)
}

type orderRepository struct {
	BaseRepository[models.Order]
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{BaseRepository: NewBaseRepository[models.Order](db, "order"), db: db}
}

func (r *orderRepository) ListByLanding(ctx context.Context, landingID string) ([]models.Order, error) {
	var out []models.Order
	if err := r.db.WithContext(ctx).Where("landing_id = ?", landingID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list orders failed")
	}
	return out, nil
}
