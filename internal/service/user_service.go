package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"users-auth/internal/domain"
	"users-auth/internal/repository"
)

// UserService expone consultas de usuarios ya sanitizadas.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

func NewUserService(logger *zap.Logger, users repository.UserRepository) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{logger: logger, users: users}
}

func (s *UserService) List(ctx context.Context) ([]domain.SanitizedUser, error) {
	if s.users == nil {
		return nil, errors.New("user service not configured")
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SanitizedUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitize())
	}
	return out, nil
}
