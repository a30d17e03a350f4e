package models

import "time"

type DisasterStatus string

const (
	DisasterStatusActive    DisasterStatus = "active"
	DisasterStatusContained DisasterStatus = "contained"
	DisasterStatusResolved  DisasterStatus = "resolved"
)

type DisasterSeverity string

const (
	DisasterSeverityLow      DisasterSeverity = "low"
	DisasterSeverityMedium   DisasterSeverity = "medium"
	DisasterSeverityHigh     DisasterSeverity = "high"
	DisasterSeverityCritical DisasterSeverity = "critical"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// AuditEntry records one mutation of a disaster row.
type AuditEntry struct {
	Action    string    `json:"action"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

type Disaster struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	LocationName string           `json:"location_name"`
	Latitude     float64          `json:"lat"`
	Longitude    float64          `json:"lng"`
	Description  string           `json:"description"`
	Tags         []string         `json:"tags"`
	Severity     DisasterSeverity `json:"severity"`
	Status       DisasterStatus   `json:"status"`
	OwnerID      string           `json:"owner_id"`
	AuditTrail   []AuditEntry     `json:"audit_trail"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (d *Disaster) Coordinates() Coordinates {
	return Coordinates{
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
	}
}

type Resource struct {
	ID           string    `json:"id"`
	DisasterID   string    `json:"disaster_id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"` // shelter, hospital, food, water
	LocationName string    `json:"location_name"`
	Latitude     float64   `json:"lat"`
	Longitude    float64   `json:"lng"`
	Quantity     int       `json:"quantity"`
	CreatedAt    time.Time `json:"created_at"`
}

type Report struct {
	ID                 string             `json:"id"`
	DisasterID         string             `json:"disaster_id"`
	UserID             string             `json:"user_id"`
	Content            string             `json:"content"`
	ImageURL           string             `json:"image_url,omitempty"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	CreatedAt          time.Time          `json:"created_at"`
}
