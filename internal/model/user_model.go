package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash *string   `gorm:"type:text"`
	FirstName    string    `gorm:"type:text;not null"`
	LastName     string    `gorm:"type:text"`
	Role         string    `gorm:"type:user_role;not null;default:'student'"`
	Status       string    `gorm:"type:user_status;not null;default:'active'"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
