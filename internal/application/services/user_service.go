package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"userlist/internal/application/common"
	"userlist/internal/application/interfaces"
	"userlist/internal/application/mapper"
	"userlist/internal/application/query"
	"userlist/internal/domain/entities"
	"userlist/internal/domain/repositories"
)

// UsersCache is implemented by infrastructure.RedisService.
type UsersCache interface {
	GetUsers(ctx context.Context) ([]*common.UserResult, bool, error)
	SetUsers(ctx context.Context, users []*common.UserResult) error
	InvalidateUsers(ctx context.Context) error
}

type UserService struct {
	userRepo repositories.UserRepository
	cache    UsersCache
	logger   *zap.Logger
}

func NewUserService(userRepo repositories.UserRepository, cache UsersCache, logger *zap.Logger) interfaces.UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo: userRepo,
		cache:    cache,
		logger:   logger,
	}
}

func (s *UserService) ListUsers(ctx context.Context) (*query.UserQueryListResult, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetUsers(ctx)
		if err != nil {
			s.logger.Warn("users cache read failed", zap.Error(err))
		} else if ok {
			return &query.UserQueryListResult{Result: cached}, nil
		}
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	result := &query.UserQueryListResult{Result: mapper.NewUserResultsFromEntities(users)}

	if s.cache != nil {
		if err := s.cache.SetUsers(ctx, result.Result); err != nil {
			s.logger.Warn("users cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

// Seed inserts users only when the directory is empty and returns how many
// records were written.
func (s *UserService) Seed(ctx context.Context, users []*entities.User) (int, error) {
	n, err := s.userRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	for i, u := range users {
		if _, err := s.userRepo.Create(ctx, u); err != nil {
			return i, fmt.Errorf("seed user %q: %w", u.ID, err)
		}
	}

	if s.cache != nil {
		if err := s.cache.InvalidateUsers(ctx); err != nil {
			s.logger.Warn("users cache invalidation failed", zap.Error(err))
		}
	}
	s.logger.Info("seeded user directory", zap.Int("count", len(users)))
	return len(users), nil
}

// DefaultDirectory is the directory a fresh database is seeded with.
func DefaultDirectory() []*entities.User {
	return []*entities.User{
		{ID: uuid.NewString(), Name: "Alice"},
		{ID: uuid.NewString(), Name: "Bob"},
	}
}
