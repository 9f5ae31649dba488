package models

import (
	"time"

	"github.com/uptrace/bun"
)

type EventType string

const (
	EventTechnical EventType = "technical"
	EventCultural  EventType = "cultural"
	EventPlacement EventType = "placement"
	EventWorkshop  EventType = "workshop"
	EventSports    EventType = "sports"
	EventOther     EventType = "other"
)

func ValidEventType(t EventType) bool {
	switch t {
	case EventTechnical, EventCultural, EventPlacement, EventWorkshop, EventSports, EventOther:
		return true
	}
	return false
}

// Event's ConfirmedVenue is owned by the booking engine: it is set only when
// a booking for this event is approved.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID             string    `bun:"id,pk" json:"id"`
	Title          string    `bun:"title,notnull" json:"title"`
	Description    string    `bun:"description,nullzero" json:"description,omitempty"`
	Type           EventType `bun:"type,notnull" json:"type"`
	StartTime      time.Time `bun:"start_time,notnull" json:"startTime"`
	EndTime        time.Time `bun:"end_time,notnull" json:"endTime"`
	CreatedBy      string    `bun:"created_by,notnull" json:"createdBy"`
	ClubOrDept     string    `bun:"club_or_dept,nullzero" json:"clubOrDept,omitempty"`
	ConfirmedVenue string    `bun:"confirmed_venue,nullzero" json:"confirmedVenue,omitempty"`
	IsPublic       bool      `bun:"is_public,notnull" json:"isPublic"`
	CreatedAt      time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt      time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

type EventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        EventType `json:"type"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	ClubOrDept  string    `json:"clubOrDept"`
}

// EventPatch carries partial updates; nil fields are left untouched.
type EventPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Type        *EventType `json:"type"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
}

func (p EventPatch) TouchesTime() bool {
	return p.StartTime != nil || p.EndTime != nil
}

type CreatorRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	ClubOrDept string `json:"clubOrDept,omitempty"`
}

// EventWithDetails is the list/detail response shape: the event plus the
// resolved confirmed venue and creator, mirroring what clients render.
type EventWithDetails struct {
	Event
	ConfirmedVenueRef *VenueRef   `json:"confirmedVenueRef,omitempty"`
	Creator           *CreatorRef `json:"creator,omitempty"`
}
