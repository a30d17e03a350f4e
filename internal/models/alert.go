package models

import "time"

type WeatherSeverity string

const (
	WeatherSeverityMinor    WeatherSeverity = "minor"
	WeatherSeverityModerate WeatherSeverity = "moderate"
	WeatherSeveritySevere   WeatherSeverity = "severe"
	WeatherSeverityExtreme  WeatherSeverity = "extreme"
)

type NewsSeverity string

const (
	NewsSeverityLow    NewsSeverity = "low"
	NewsSeverityMedium NewsSeverity = "medium"
	NewsSeverityHigh   NewsSeverity = "high"
)

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// WeatherAlert is one active warning from the weather feed. IDs are unique
// within a single snapshot's weather collection only.
type WeatherAlert struct {
	ID          string          `json:"id"`
	Event       string          `json:"event"`
	Headline    string          `json:"headline"`
	Description string          `json:"description"`
	Severity    WeatherSeverity `json:"severity"`
	Area        string          `json:"area"`
	Coordinates *Coordinates    `json:"coordinates,omitempty"`
	Effective   time.Time       `json:"effective"`
}

func (a WeatherAlert) HighPriority() bool {
	return a.Severity == WeatherSeveritySevere || a.Severity == WeatherSeverityExtreme
}

type SeismicEvent struct {
	ID          string      `json:"id"`
	Place       string      `json:"place"`
	Magnitude   float64     `json:"magnitude"`
	DepthKM     float64     `json:"depth_km"`
	Tsunami     bool        `json:"tsunami"`
	Coordinates Coordinates `json:"coordinates"`
	Time        time.Time   `json:"time"`
}

func (e SeismicEvent) HighPriority() bool {
	return e.Magnitude >= 5.0
}

// SocialAlert is a social-media post flagged by the keyword heuristics.
// UrgencyScore ranges 0..5.
type SocialAlert struct {
	ID           string       `json:"id"`
	User         string       `json:"user"`
	Text         string       `json:"text"`
	Keywords     []string     `json:"keywords,omitempty"`
	UrgencyScore int          `json:"urgency_score"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	PostedAt     time.Time    `json:"posted_at"`
}

func (a SocialAlert) HighPriority() bool {
	return a.UrgencyScore >= 4
}

type NewsAlert struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Summary     string       `json:"summary"`
	Source      string       `json:"source"`
	URL         string       `json:"url,omitempty"`
	Severity    NewsSeverity `json:"severity"`
	PublishedAt time.Time    `json:"published_at"`
}

func (a NewsAlert) HighPriority() bool {
	return a.Severity == NewsSeverityHigh
}

// Snapshot is the merged result of one aggregation cycle. It is built once
// by NewSnapshot and never mutated afterwards; consumers may hold a
// reference across cycles safely.
type Snapshot struct {
	Weather           []WeatherAlert `json:"weather"`
	Seismic           []SeismicEvent `json:"seismic"`
	Social            []SocialAlert  `json:"social"`
	News              []NewsAlert    `json:"news"`
	LastUpdated       time.Time      `json:"last_updated"`
	TotalAlerts       int            `json:"total_alerts"`
	HighPriorityCount int            `json:"high_priority_count"`
}

func NewSnapshot(weather []WeatherAlert, seismic []SeismicEvent, social []SocialAlert, news []NewsAlert, now time.Time) *Snapshot {
	s := &Snapshot{
		Weather:     weather,
		Seismic:     seismic,
		Social:      social,
		News:        news,
		LastUpdated: now,
		TotalAlerts: len(weather) + len(seismic) + len(social) + len(news),
	}
	for _, a := range weather {
		if a.HighPriority() {
			s.HighPriorityCount++
		}
	}
	for _, e := range seismic {
		if e.HighPriority() {
			s.HighPriorityCount++
		}
	}
	for _, a := range social {
		if a.HighPriority() {
			s.HighPriorityCount++
		}
	}
	for _, a := range news {
		if a.HighPriority() {
			s.HighPriorityCount++
		}
	}
	return s
}

// Age reports how stale the snapshot is. This is the primary health signal
// for the aggregation pipeline.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.LastUpdated)
}
