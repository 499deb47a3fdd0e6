package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project groups the pipeline artifacts of one product listing. The cached
// fields let a client resume the flow without re-running finished stages.
type Project struct {
	ID             string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	UserID         string         `gorm:"type:varchar(64);index;not null" json:"userId" validate:"required"`
	Name           string         `gorm:"not null;default:''" json:"name"`
	ImagePrompts   datatypes.JSON `gorm:"type:jsonb" json:"imagePrompts,omitempty"`
	SourceImageURL string         `gorm:"type:text" json:"sourceImageUrl,omitempty"`
	AnalysisData   string         `gorm:"type:text" json:"analysisData,omitempty"`
	LandingPrompt  string         `gorm:"type:text" json:"landingPrompt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`

	User     *User            `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Images   []GeneratedImage `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Landings []Landing        `gorm:"constraint:OnDelete:CASCADE" json:"landings,omitempty"`

	// Populated by list queries only.
	ImageCount   int64 `gorm:"->;-:migration" json:"imageCount"`
	LandingCount int64 `gorm:"->;-:migration" json:"landingCount"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}
