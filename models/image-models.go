package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Image is the metadata row for a user's profile picture. URL is the object
// store locator (bucket/key); UploadDate is date-only, set server side.
type Image struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey"`
	FileName   string    `json:"file_name" gorm:"not null"`
	URL        string    `json:"url" gorm:"not null"`
	UploadDate string    `json:"upload_date" gorm:"not null"`
	UserID     string    `json:"user_id" gorm:"type:uuid;not null;index"`
	CreatedAt  time.Time `json:"-"`
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
