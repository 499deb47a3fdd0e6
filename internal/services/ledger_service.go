package services

import (
	"context"

	"github.com/listing-studio/engine/internal/metrics"
	"github.com/listing-studio/engine/internal/repository"
	appErr "github.com/listing-studio/engine/pkg/errors"
	"github.com/listing-studio/engine/pkg/logger"
	"go.uber.org/zap"
)

// LedgerService gates billed operations on the user's token balance.
type LedgerService interface {
	// Ensure fails with CodePaymentRequired when the user is unknown or has no balance left.
	Ensure(ctx context.Context, userID string) error
	// Deduct subtracts usage reported by a model call and returns the amount applied.
	// Non-positive usage is ignored. There is no hold: concurrent callers that all
	// passed Ensure may drive the balance below zero.
	Deduct(ctx context.Context, userID string, units int) (int64, error)
}

type ledgerService struct {
	users repository.UserRepository
}

func NewLedgerService(users repository.UserRepository) LedgerService {
	return &ledgerService{users: users}
}

var _ LedgerService = (*ledgerService)(nil)

func (s *ledgerService) Ensure(ctx context.Context, userID string) error {
	balance, err := s.users.GetBalance(ctx, userID)
	if appErr.IsCode(err, appErr.CodeNotFound) {
		return appErr.New(appErr.CodePaymentRequired, "insufficient tokens").WithMeta("user_id", userID)
	}
	if err != nil {
		return err
	}
	if balance <= 0 {
		logger.L().Info("billed call rejected", zap.String("user_id", userID), zap.Int64("balance", balance))
		return appErr.New(appErr.CodePaymentRequired, "insufficient tokens").WithMeta("user_id", userID)
	}
	return nil
}

func (s *ledgerService) Deduct(ctx context.Context, userID string, units int) (int64, error) {
	if units <= 0 {
		return 0, nil
	}
	if err := s.users.DeductTokens(ctx, userID, int64(units)); err != nil {
		logger.L().Error("deduct tokens failed", zap.String("user_id", userID), zap.Int("units", units), zap.Error(err))
		return 0, err
	}
	metrics.TokensDeducted.Add(float64(units))
	return int64(units), nil
}
