package query

import "userlist/internal/application/common"

type UserQueryListResult struct {
	Result []*common.UserResult `json:"result"`
}
