package models

import "strings"

// Importance rates how much weight a concept carried in the lecture.
type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

// ParseImportance maps collaborator output onto the enum; anything
// unrecognised becomes medium.
func ParseImportance(raw string) Importance {
	switch Importance(strings.ToLower(strings.TrimSpace(raw))) {
	case ImportanceHigh:
		return ImportanceHigh
	case ImportanceLow:
		return ImportanceLow
	default:
		return ImportanceMedium
	}
}

// TimelineEvent is one concept on the study timeline. Timestamp is a
// display label ("00:05:30", "Beginning"), not a duration.
type TimelineEvent struct {
	ID            string     `json:"id"`
	Timestamp     string     `json:"timestamp"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	LinkedImageID string     `json:"linked_image_id,omitempty"`
	Importance    Importance `json:"importance"`
}
