package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is a lead captured by the form of a published landing. Orders are never updated.
type Order struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	LandingID string    `gorm:"type:varchar(64);index;not null" json:"landingId"`
	UserID    string    `gorm:"type:varchar(64);index;not null" json:"userId"`
	Name      string    `gorm:"type:text" json:"name"`
	Email     string    `gorm:"type:text" json:"email"`
	Phone     string    `gorm:"type:text" json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = NewID()
	}
	return nil
}
