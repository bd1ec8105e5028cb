package model

import (
	"math/rand"
	"time"
)

// Status represents a lead's position in the qualification funnel.
type Status string

const (
	StatusNew       Status = "New"
	StatusContacted Status = "Contacted"
	StatusQualified Status = "Qualified"
	StatusConverted Status = "Converted"
)

// AllStatuses lists every valid lead status.
var AllStatuses = []Status{StatusNew, StatusContacted, StatusQualified, StatusConverted}

// ImportableStatuses lists the statuses accepted on bulk import. Converted
// leads only exist transiently; they are never imported.
var ImportableStatuses = []Status{StatusNew, StatusContacted, StatusQualified}

// ParseStatus returns the Status for s, or false if s is not a known status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusNew, StatusContacted, StatusQualified, StatusConverted:
		return Status(s), true
	}
	return "", false
}

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

// Importable reports whether the status is accepted by the bulk importer.
func (s Status) Importable() bool {
	for _, is := range ImportableStatuses {
		if s == is {
			return true
		}
	}
	return false
}

// Lead is a prospective customer record with a qualification score.
// Score is clamped to [0,100] by producers; consumers that derive display
// values re-clamp defensively rather than trusting it.
type Lead struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Company           string    `json:"company"`
	Email             string    `json:"email"`
	Source            string    `json:"source"`
	Score             float64   `json:"score"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"createdAt,omitzero"`
	PredictiveQuality int       `json:"predictiveQuality,omitempty"`
}

// NewID generates a collection-unique id: current unix milliseconds plus a
// random jitter so that ids minted within the same millisecond still differ.
func NewID() int64 {
	return time.Now().UnixMilli() + rand.Int63n(1000)
}

// ClampScore bounds a raw score to the valid [0,100] range.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
