package interfaces

import (
	"context"

	"userlist/internal/application/query"
	"userlist/internal/domain/entities"
)

type UserService interface {
	ListUsers(ctx context.Context) (*query.UserQueryListResult, error)
	Seed(ctx context.Context, users []*entities.User) (int, error)
}
