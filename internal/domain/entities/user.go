package entities

import "errors"

var (
	ErrEmptyID   = errors.New("user id must not be empty")
	ErrEmptyName = errors.New("user name must not be empty")

	ErrUserNotFound = errors.New("user not found")
)

// User is the identifier/label pair shown by the user list. Values are
// never mutated after they are received.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewUser(id, name string) (*User, error) {
	u := &User{ID: id, Name: name}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u User) Validate() error {
	if u.ID == "" {
		return ErrEmptyID
	}
	if u.Name == "" {
		return ErrEmptyName
	}
	return nil
}
