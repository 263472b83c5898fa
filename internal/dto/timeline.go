package dto

import "time"

// Timeline event types in display order semantics.
const (
	TimelineEventCreated  = "CREATED"
	TimelineEventAssigned = "ASSIGNED"
	TimelineEventSigned   = "SIGNED"
)

// TimelineEvent is one entry in a file's chronological history.
type TimelineEvent struct {
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Timestamp time.Time         `json:"timestamp"`
	Meta      map[string]string `json:"meta,omitempty"`
}
