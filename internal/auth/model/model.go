package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username         string    `gorm:"size:50;uniqueIndex;not null"`
	Email            string    `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash     string    `gorm:"size:255"`
	FirstName        string    `gorm:"size:50"`
	LastName         string    `gorm:"size:50"`
	Phone            string    `gorm:"size:30"`
	RegistrationDate time.Time
	IsActive         bool
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
