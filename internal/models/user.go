package models

import (
	"time"
)

// User owns projects and carries the token balance consumed by billed model calls.
type User struct {
	ID           string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name         string    `gorm:"not null;default:''" json:"name"`
	TokenBalance int64     `gorm:"not null;default:100000" json:"tokenBalance"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
