package postgres

import (
	"time"

	"gorm.io/gorm"
)

type UserModel struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	Name      string         `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}
