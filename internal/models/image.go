package models

import (
	"time"

	"gorm.io/gorm"
)

// GeneratedImage is written only after a marketing image was produced and stored.
type GeneratedImage struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);index;not null" json:"userId"`
	ProjectID string    `gorm:"type:varchar(64);index;not null" json:"projectId"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	S3Key     string    `gorm:"column:s3_key;type:text;not null" json:"s3Key"`
	Prompt    string    `gorm:"type:text" json:"prompt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (g *GeneratedImage) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = NewID()
	}
	return nil
}
