package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLandingStatusTerminal(t *testing.T) {
	assert.False(t, LandingGenerating.Terminal())
	assert.False(t, LandingNotFound.Terminal())
	assert.True(t, LandingCompleted.Terminal())
	assert.True(t, LandingFailed.Terminal())
	assert.True(t, LandingCancelled.Terminal())
}

func TestBeforeCreateAssignsDefaults(t *testing.T) {
	l := &Landing{}
	assert.NoError(t, l.BeforeCreate(nil))
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, LandingGenerating, l.Status)

	p := &Project{ID: "default-project-001"}
	assert.NoError(t, p.BeforeCreate(nil))
	assert.Equal(t, "default-project-001", p.ID)
}
