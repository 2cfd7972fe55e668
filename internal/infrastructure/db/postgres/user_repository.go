package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"userlist/internal/domain/entities"
	"userlist/internal/domain/repositories"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repositories.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	userModel := UserModel{
		Id:   user.ID,
		Name: user.Name,
	}
	if err := r.db.WithContext(ctx).Create(&userModel).Error; err != nil {
		return nil, err
	}

	// Read back the created user to ensure data integrity
	return r.findById(ctx, user.ID)
}

func (r *UserRepository) List(ctx context.Context) ([]*entities.User, error) {
	var userModels []UserModel
	if err := r.db.WithContext(ctx).Order("created_at asc, id asc").Find(&userModels).Error; err != nil {
		return nil, err
	}

	users := make([]*entities.User, 0, len(userModels))
	for i := range userModels {
		users = append(users, r.mapToEntity(&userModels[i]))
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&UserModel{}).Count(&n).Error
	return n, err
}

func (r *UserRepository) findById(ctx context.Context, id string) (*entities.User, error) {
	var userModel UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", entities.ErrUserNotFound, id)
		}
		return nil, err
	}

	return r.mapToEntity(&userModel), nil
}

func (r *UserRepository) mapToEntity(userModel *UserModel) *entities.User {
	return &entities.User{
		ID:   userModel.Id,
		Name: userModel.Name,
	}
}
