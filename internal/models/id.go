package models

import "github.com/google/uuid"

// NewID returns a fresh primary key. Seeded rows use readable ids instead.
func NewID() string {
	return uuid.NewString()
}
