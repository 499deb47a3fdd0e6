package services

import (
	"context"

	"github.com/listing-studio/engine/internal/repository"
	appErr "github.com/listing-studio/engine/pkg/errors"
)

type UserService interface {
	// Balance returns the user's token balance, zero for unknown users.
	Balance(ctx context.Context, userID string) (int64, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

var _ UserService = (*userService)(nil)

func (s *userService) Balance(ctx context.Context, userID string) (int64, error) {
	b, err := s.users.GetBalance(ctx, userID)
	if appErr.IsCode(err, appErr.CodeNotFound) {
		return 0, nil
	}
	return b, err
}
