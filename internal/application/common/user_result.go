package common

type UserResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
