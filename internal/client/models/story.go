// Package models defines the entities persisted by the StoryShare client.
package models

import (
	"fmt"
	"strings"
	"time"
)

// OfflineIDPrefix marks identifiers minted locally for stories created while
// the server was unreachable. A server-issued id never carries this prefix.
const OfflineIDPrefix = "offline-"

// StoryRecord is the single persisted entity: a story saved locally, either
// as an offline submission waiting to be replayed (Synced=false) or as a
// favorite confirmed by or fetched from the server (Synced=true).
//
// Lat and Lon are both set or both nil, never one without the other.
type StoryRecord struct {
	ID          string
	Name        string
	Description string
	PhotoURL    string
	CreatedAt   time.Time
	Lat         *float64
	Lon         *float64
	Synced      bool
}

// NewOfflineID mints an identifier for a story created without connectivity,
// derived from the submission timestamp.
func NewOfflineID(now time.Time) string {
	return fmt.Sprintf("%s%d", OfflineIDPrefix, now.UnixMilli())
}

// IsOfflineID reports whether id was minted locally.
func IsOfflineID(id string) bool {
	return strings.HasPrefix(id, OfflineIDPrefix)
}

// HasLocation reports whether the record carries coordinates.
func (r *StoryRecord) HasLocation() bool {
	return r.Lat != nil && r.Lon != nil
}
