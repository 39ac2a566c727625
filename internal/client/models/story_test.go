package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewOfflineID(t *testing.T) {
	now := time.UnixMilli(1712345678901)
	id := NewOfflineID(now)
	assert.Equal(t, "offline-1712345678901", id)
	assert.True(t, IsOfflineID(id))
	assert.False(t, IsOfflineID("story-abcdef"))
}

func TestHasLocation(t *testing.T) {
	lat, lon := -6.2, 106.8
	assert.True(t, (&StoryRecord{Lat: &lat, Lon: &lon}).HasLocation())
	assert.False(t, (&StoryRecord{Lat: &lat}).HasLocation())
	assert.False(t, (&StoryRecord{}).HasLocation())
}
