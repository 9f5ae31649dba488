package models

import (
	"time"

	"github.com/uptrace/bun"
)

type VenueType string

const (
	VenueClassroom   VenueType = "classroom"
	VenueLab         VenueType = "lab"
	VenueHall        VenueType = "hall"
	VenueAuditorium  VenueType = "auditorium"
	VenueMeetingRoom VenueType = "meeting_room"
)

func ValidVenueType(t VenueType) bool {
	switch t {
	case VenueClassroom, VenueLab, VenueHall, VenueAuditorium, VenueMeetingRoom:
		return true
	}
	return false
}

// Venue is never deleted, only deactivated. Inactive venues are excluded from
// new bookings but historical bookings keep their reference.
type Venue struct {
	bun.BaseModel `bun:"table:venues"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,unique,notnull" json:"name"`
	Type      VenueType `bun:"type,notnull" json:"type"`
	Capacity  int       `bun:"capacity,notnull" json:"capacity"`
	Location  string    `bun:"location,notnull" json:"location"`
	Equipment []string  `bun:"equipment,array" json:"equipment"`
	IsActive  bool      `bun:"is_active,notnull" json:"isActive"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

type VenueRequest struct {
	Name      string    `json:"name"`
	Type      VenueType `json:"type"`
	Capacity  int       `json:"capacity"`
	Location  string    `json:"location"`
	Equipment []string  `json:"equipment"`
}

// VenueRef is the embedded shape other resources expose for a venue reference.
type VenueRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}
