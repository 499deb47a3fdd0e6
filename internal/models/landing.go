package models

import (
	"time"

	"gorm.io/gorm"
)

// LandingStatus is the state of a landing generation job.
type LandingStatus string

const (
	LandingGenerating LandingStatus = "generating"
	LandingCompleted  LandingStatus = "completed"
	LandingFailed     LandingStatus = "failed"
	LandingCancelled  LandingStatus = "cancelled"

	// LandingNotFound is reported by status lookups and never stored.
	LandingNotFound LandingStatus = "not_found"
)

// Terminal reports whether no further transition may leave s.
func (s LandingStatus) Terminal() bool {
	switch s {
	case LandingCompleted, LandingFailed, LandingCancelled:
		return true
	}
	return false
}

// Landing is a generated HTML page together with the state of the job producing it.
type Landing struct {
	ID        string        `gorm:"type:varchar(64);primaryKey" json:"id"`
	UserID    string        `gorm:"type:varchar(64);index;not null" json:"userId"`
	ProjectID string        `gorm:"type:varchar(64);index;not null" json:"projectId"`
	Prompt    string        `gorm:"type:text" json:"prompt"`
	Status    LandingStatus `gorm:"type:varchar(16);index;not null;default:generating" json:"status"`
	URL       string        `gorm:"type:text" json:"url,omitempty"`
	S3Key     string        `gorm:"column:s3_key;type:text" json:"s3Key,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`

	Orders []Order `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (l *Landing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	if l.Status == "" {
		l.Status = LandingGenerating
	}
	return nil
}
