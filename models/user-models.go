package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account record. The password column holds a bcrypt hash and is
// never serialized in responses.
type User struct {
	ID             string    `json:"id" gorm:"type:uuid;primaryKey"`
	FirstName      string    `json:"first_name" gorm:"not null"`
	LastName       string    `json:"last_name" gorm:"not null"`
	Email          string    `json:"email" gorm:"not null;uniqueIndex"`
	Password       string    `json:"-" gorm:"not null"`
	AccountCreated time.Time `json:"account_created" gorm:"autoCreateTime"`
	AccountUpdated time.Time `json:"account_updated" gorm:"autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
