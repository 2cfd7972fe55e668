package repositories

import (
	"context"

	"userlist/internal/domain/entities"
)

type UserRepository interface {
	List(ctx context.Context) ([]*entities.User, error)
	Create(ctx context.Context, user *entities.User) (*entities.User, error)
	Count(ctx context.Context) (int64, error)
}
