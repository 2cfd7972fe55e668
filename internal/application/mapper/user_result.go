package mapper

import (
	"userlist/internal/application/common"
	"userlist/internal/domain/entities"
)

func NewUserResultFromEntity(user *entities.User) *common.UserResult {
	return &common.UserResult{
		ID:   user.ID,
		Name: user.Name,
	}
}

func NewUserResultsFromEntities(users []*entities.User) []*common.UserResult {
	results := make([]*common.UserResult, 0, len(users))
	for _, u := range users {
		results = append(results, NewUserResultFromEntity(u))
	}
	return results
}
