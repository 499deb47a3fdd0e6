package repository

import (
	"context"

	"github.com/listing-studio/engine/internal/models"
	"gorm.io/gorm"
)

type UserRepository interface {
	BaseRepository[models.User]
	GetBalance(ctx context.Context, userID string) (int64, error)
	// DeductTokens decrements the balance in a single statement. The balance
	// may go below zero; callers gate on it before billed work starts.
	DeductTokens(ctx context.Context, userID string, units int64) error
}

type userRepository struct {
	BaseRepository[models.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository[models.User](db, "user"), db: db}
}

func (r *userRepository) GetBalance(ctx context.Context, userID string) (int64, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Select("token_balance").First(&u, "id = ?", userID).Error; err != nil {
		return 0, notFoundOr(err, "user", "get token balance failed")
	}
	return u.TokenBalance, nil
}

func (r *userRepository) DeductTokens(ctx context.Context, userID string, units int64) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Update("token_balance", gorm.Expr("token_balance - ?", units))
	return affectedOrNotFound(res, "user", "deduct tokens failed")
}
