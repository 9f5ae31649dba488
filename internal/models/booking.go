package models

import (
	"time"

	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	StatusPending  BookingStatus = "Pending"
	StatusApproved BookingStatus = "Approved"
	StatusRejected BookingStatus = "Rejected"
)

// Booking lifecycle: Pending -> Approved or Pending -> Rejected, both
// terminal. AllocatedVenue stays empty until approval.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID             string        `bun:"id,pk" json:"id"`
	EventID        string        `bun:"event_id,notnull" json:"eventId"`
	RequestedBy    string        `bun:"requested_by,notnull" json:"requestedBy"`
	PreferredVenue string        `bun:"preferred_venue,nullzero" json:"preferredVenue,omitempty"`
	Status         BookingStatus `bun:"status,notnull" json:"status"`
	AllocatedVenue string        `bun:"allocated_venue,nullzero" json:"allocatedVenue,omitempty"`
	StartTime      time.Time     `bun:"start_time,notnull" json:"startTime"`
	EndTime        time.Time     `bun:"end_time,notnull" json:"endTime"`
	AdminComment   string        `bun:"admin_comment,nullzero" json:"adminComment,omitempty"`
	CreatedAt      time.Time     `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt      time.Time     `bun:"updated_at,notnull" json:"updatedAt"`
}

type BookingRequest struct {
	EventID   string    `json:"eventId"`
	VenueID   string    `json:"venueId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type DecisionRequest struct {
	Decision         BookingStatus `json:"decision"`
	AllocatedVenueID string        `json:"allocatedVenueId"`
	AdminComment     string        `json:"adminComment"`
}

type EventRef struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	ClubOrDept string    `json:"clubOrDept,omitempty"`
}

type RequesterRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	ClubOrDept string `json:"clubOrDept,omitempty"`
}

// BookingWithDetails joins a booking with its event and venue references for
// list responses. Requester is only filled on the admin pending list.
type BookingWithDetails struct {
	Booking
	Event             *EventRef     `json:"event,omitempty"`
	PreferredVenueRef *VenueRef     `json:"preferredVenueRef,omitempty"`
	AllocatedVenueRef *VenueRef     `json:"allocatedVenueRef,omitempty"`
	Requester         *RequesterRef `json:"requester,omitempty"`
}

// BookingPass is the payload encrypted into the QR pass for an approved
// booking.
type BookingPass struct {
	BookingID string    `json:"booking_id"`
	EventID   string    `json:"event_id"`
	VenueID   string    `json:"venue_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	IssuedAt  time.Time `json:"issued_at"`
}
