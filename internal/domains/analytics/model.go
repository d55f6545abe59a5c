package analytics

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type EventType string

const (
	EventPageView    EventType = "page_view"
	EventClick       EventType = "click"
	EventScrollDepth EventType = "scroll_depth"
)

// Event is one appended analytics record. Records are never updated.
type Event struct {
	PortfolioID uuid.UUID
	Type        EventType
	Target      string
	Depth       *int
	IPAddress   string
	UserAgent   string
	Referrer    string
	DeviceClass string
	OccurredAt  time.Time
}

type TrackRequest struct {
	Type   EventType `json:"type"`
	Target string    `json:"target"`
	Depth  *int      `json:"depth"`
}

func (r TrackRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(EventPageView, EventClick, EventScrollDepth)),
		validation.Field(&r.Target, validation.Length(0, 512)),
		validation.Field(&r.Depth,
			validation.When(r.Type == EventScrollDepth, validation.NotNil, validation.Min(0), validation.Max(100)),
			validation.When(r.Type != EventScrollDepth, validation.Nil),
		),
	)
}

// Visitor is the request metadata captured with every event.
type Visitor struct {
	IP        string
	UserAgent string
	Referrer  string
}

// =====================================================
// SUMMARY
// =====================================================

type Count struct {
	EventType   EventType
	DeviceClass string
	Total       int64
}

type DailyCount struct {
	Day   time.Time `json:"day"`
	Views int64     `json:"views"`
}

type Summary struct {
	PortfolioID uuid.UUID           `json:"portfolioId"`
	Since       time.Time           `json:"since"`
	Days        int                 `json:"days"`
	Totals      map[EventType]int64 `json:"totals"`
	Devices     map[string]int64    `json:"devices"`
	Daily       []DailyCount        `json:"daily"`
}

const (
	DefaultSummaryDays = 30
	MaxSummaryDays     = 365
)
