package bookings

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campus-hub/internal/logger"
	"campus-hub/internal/models"
	"campus-hub/internal/utils"
)

type DBLayer interface {
	CreateBooking(booking models.Booking) error
	GetBookingByID(id string) (*models.Booking, error)
	ListBookingsByRequester(userID string) ([]models.Booking, error)
	ListPendingBookings() ([]models.Booking, error)
	HasApprovedConflict(venueID string, start, end time.Time, excludeID string) (bool, error)
	RejectBooking(id, adminComment string) (*models.Booking, error)
	ApproveBooking(booking models.Booking, venueID, adminComment string) (*models.Booking, error)
}

type EventDBLayer interface {
	GetEventForOwner(id, creatorID string) (*models.Event, error)
	GetEventsByIDs(ids []string) ([]models.Event, error)
}

type VenueDBLayer interface {
	GetVenueByID(id string) (*models.Venue, error)
	GetVenuesByIDs(ids []string) ([]models.Venue, error)
}

type UserDBLayer interface {
	GetUsersByIDs(ids []string) ([]models.User, error)
}

type VenueLock interface {
	LockVenue(venueID, bookingID string) (bool, error)
	UnlockVenue(venueID, bookingID string) error
}

type KafkaPublisher interface {
	PublishBookingRequested(booking models.Booking) error
	PublishBookingApproved(booking models.Booking) error
	PublishBookingRejected(booking models.Booking) error
}

// BookingService owns every status/allocated-venue transition. Nothing else
// in the system writes those fields, or an event's confirmed venue.
type BookingService struct {
	DB      DBLayer
	EventDB EventDBLayer
	VenueDB VenueDBLayer
	UserDB  UserDBLayer
	Redis   VenueLock
	Kafka   KafkaPublisher
	Logger  *logger.Logger
}

func NewBookingService(db DBLayer, eventDB EventDBLayer, venueDB VenueDBLayer, userDB UserDBLayer, venueLock VenueLock, kafka KafkaPublisher, log *logger.Logger) *BookingService {
	return &BookingService{
		DB:      db,
		EventDB: eventDB,
		VenueDB: venueDB,
		UserDB:  userDB,
		Redis:   venueLock,
		Kafka:   kafka,
		Logger:  log,
	}
}

// RequestBooking files a Pending request. Conflicts are checked only against
// Approved bookings: several pending requests may target the same slot, and
// only the admin decision path enforces exclusivity.
func (s *BookingService) RequestBooking(req models.BookingRequest, caller models.Identity) (*models.Booking, error) {
	if !caller.HasRole(models.RoleClubHead, models.RoleFaculty) {
		return nil, models.ErrForbidden
	}

	if req.EventID == "" || req.VenueID == "" {
		return nil, fmt.Errorf("%w: eventId and venueId are required", models.ErrValidation)
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() || !req.EndTime.After(req.StartTime) {
		return nil, models.ErrInvalidRange
	}

	start := req.StartTime.UTC()
	end := req.EndTime.UTC()

	// Ownership is enforced in the lookup itself: a foreign event resolves
	// exactly like a missing one.
	if _, err := s.EventDB.GetEventForOwner(req.EventID, caller.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: event not found or not owned by you", models.ErrNotFound)
		}
		return nil, fmt.Errorf("resolve event: %w", err)
	}

	venue, err := s.VenueDB.GetVenueByID(req.VenueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: venue not found", models.ErrNotFound)
		}
		return nil, fmt.Errorf("resolve venue: %w", err)
	}
	if !venue.IsActive {
		return nil, fmt.Errorf("%w: venue not found or inactive", models.ErrNotFound)
	}

	conflict, err := s.DB.HasApprovedConflict(req.VenueID, start, end, "")
	if err != nil {
		return nil, fmt.Errorf("conflict check: %w", err)
	}
	if conflict {
		return nil, models.ErrVenueConflict
	}

	now := time.Now().UTC()
	booking := models.Booking{
		ID:             utils.NewID(),
		EventID:        req.EventID,
		RequestedBy:    caller.ID,
		PreferredVenue: req.VenueID,
		Status:         models.StatusPending,
		StartTime:      start,
		EndTime:        end,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.DB.CreateBooking(booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.Logger.LogBooking("REQUEST", booking.ID, fmt.Sprintf("venue %s %s - %s", req.VenueID, start.Format(time.RFC3339), end.Format(time.RFC3339)))

	if s.Kafka != nil {
		if err := s.Kafka.PublishBookingRequested(booking); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("publish booking requested: %v", err))
		}
	}

	return &booking, nil
}

// ListMyBookings returns the caller's requests newest first, with event and
// venue references embedded.
func (s *BookingService) ListMyBookings(caller models.Identity) ([]models.BookingWithDetails, error) {
	if !caller.HasRole(models.RoleClubHead, models.RoleFaculty) {
		return nil, models.ErrForbidden
	}

	bookings, err := s.DB.ListBookingsByRequester(caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list my bookings: %w", err)
	}

	return s.attachDetails(bookings, false)
}

// ListPendingBookings is the admin review queue, oldest first.
func (s *BookingService) ListPendingBookings(caller models.Identity) ([]models.BookingWithDetails, error) {
	if !caller.HasRole(models.RoleAdmin) {
		return nil, models.ErrForbidden
	}

	bookings, err := s.DB.ListPendingBookings()
	if err != nil {
		return nil, fmt.Errorf("list pending bookings: %w", err)
	}

	return s.attachDetails(bookings, true)
}

// DecideBooking approves or rejects a pending request. Approval re-runs the
// conflict check against current data under a per-venue lock, then flips the
// booking and the event's confirmed venue as one transaction. Approved and
// Rejected are terminal; there is no un-approve path.
func (s *BookingService) DecideBooking(bookingID string, req models.DecisionRequest, caller models.Identity) (*models.Booking, error) {
	if !caller.HasRole(models.RoleAdmin) {
		return nil, models.ErrForbidden
	}

	if req.Decision != models.StatusApproved && req.Decision != models.StatusRejected {
		return nil, models.ErrInvalidDecision
	}

	booking, err := s.DB.GetBookingByID(bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: booking not found", models.ErrNotFound)
		}
		return nil, fmt.Errorf("resolve booking: %w", err)
	}

	// Approved and Rejected are terminal. Without this guard a rejection of
	// an approved booking would strand the event's confirmed venue.
	if booking.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: booking is %s", models.ErrAlreadyDecided, booking.Status)
	}

	if req.Decision == models.StatusRejected {
		updated, err := s.DB.RejectBooking(booking.ID, req.AdminComment)
		if err != nil {
			return nil, fmt.Errorf("reject booking: %w", err)
		}

		s.Logger.LogBooking("REJECT", booking.ID, fmt.Sprintf("by admin %s", caller.ID))

		if s.Kafka != nil {
			if err := s.Kafka.PublishBookingRejected(*updated); err != nil {
				s.Logger.Error("KAFKA", fmt.Sprintf("publish booking rejected: %v", err))
			}
		}
		return updated, nil
	}

	// The admin may allocate a venue other than the requested one; the
	// preferred venue is only a fallback.
	venueID := req.AllocatedVenueID
	if venueID == "" {
		venueID = booking.PreferredVenue
	}
	if venueID == "" {
		return nil, models.ErrMissingVenue
	}

	if _, err := s.VenueDB.GetVenueByID(venueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: venue not found", models.ErrNotFound)
		}
		return nil, fmt.Errorf("resolve venue: %w", err)
	}

	// Serialize the check-then-approve window per venue. The transaction in
	// ApproveBooking re-checks as well; the lock keeps two admins from both
	// reaching that point for overlapping slots.
	locked, err := s.Redis.LockVenue(venueID, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("venue lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: another decision for this venue is in progress", models.ErrVenueConflict)
	}
	defer func() {
		if err := s.Redis.UnlockVenue(venueID, booking.ID); err != nil {
			s.Logger.Error("REDIS", fmt.Sprintf("unlock venue %s: %v", venueID, err))
		}
	}()

	conflict, err := s.DB.HasApprovedConflict(venueID, booking.StartTime, booking.EndTime, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("conflict check: %w", err)
	}
	if conflict {
		// Approval refused; the booking stays Pending.
		return nil, models.ErrVenueConflict
	}

	updated, err := s.DB.ApproveBooking(*booking, venueID, req.AdminComment)
	if err != nil {
		if errors.Is(err, models.ErrVenueConflict) {
			return nil, models.ErrVenueConflict
		}
		return nil, fmt.Errorf("approve booking: %w", err)
	}

	s.Logger.LogBooking("APPROVE", booking.ID, fmt.Sprintf("venue %s by admin %s", venueID, caller.ID))

	if s.Kafka != nil {
		if err := s.Kafka.PublishBookingApproved(*updated); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("publish booking approved: %v", err))
		}
	}

	return updated, nil
}

// BookingPass returns the pass payload for an approved booking, visible to
// the requester and admins.
func (s *BookingService) BookingPass(bookingID string, caller models.Identity) (*models.BookingPass, error) {
	booking, err := s.DB.GetBookingByID(bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: booking not found", models.ErrNotFound)
		}
		return nil, fmt.Errorf("resolve booking: %w", err)
	}

	if booking.RequestedBy != caller.ID && caller.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: booking not found", models.ErrNotFound)
	}
	if booking.Status != models.StatusApproved {
		return nil, models.ErrNotApproved
	}

	return &models.BookingPass{
		BookingID: booking.ID,
		EventID:   booking.EventID,
		VenueID:   booking.AllocatedVenue,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		IssuedAt:  time.Now().UTC(),
	}, nil
}

// attachDetails batch-resolves the events, venues and (for the admin queue)
// requesters referenced by a page of bookings.
func (s *BookingService) attachDetails(bookings []models.Booking, withRequester bool) ([]models.BookingWithDetails, error) {
	detailed := make([]models.BookingWithDetails, 0, len(bookings))
	if len(bookings) == 0 {
		return detailed, nil
	}

	eventIDs := make([]string, 0, len(bookings))
	venueIDs := make([]string, 0, len(bookings)*2)
	userIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		eventIDs = append(eventIDs, b.EventID)
		if b.PreferredVenue != "" {
			venueIDs = append(venueIDs, b.PreferredVenue)
		}
		if b.AllocatedVenue != "" {
			venueIDs = append(venueIDs, b.AllocatedVenue)
		}
		userIDs = append(userIDs, b.RequestedBy)
	}

	events, err := s.EventDB.GetEventsByIDs(eventIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve events: %w", err)
	}
	eventsByID := map[string]models.Event{}
	for _, e := range events {
		eventsByID[e.ID] = e
	}

	venuesByID := map[string]models.Venue{}
	if len(venueIDs) > 0 {
		venues, err := s.VenueDB.GetVenuesByIDs(venueIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve venues: %w", err)
		}
		for _, v := range venues {
			venuesByID[v.ID] = v
		}
	}

	usersByID := map[string]models.User{}
	if withRequester {
		users, err := s.UserDB.GetUsersByIDs(userIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve requesters: %w", err)
		}
		for _, u := range users {
			usersByID[u.ID] = u
		}
	}

	for _, b := range bookings {
		row := models.BookingWithDetails{Booking: b}
		if e, ok := eventsByID[b.EventID]; ok {
			row.Event = &models.EventRef{
				ID:         e.ID,
				Title:      e.Title,
				StartTime:  e.StartTime,
				EndTime:    e.EndTime,
				ClubOrDept: e.ClubOrDept,
			}
		}
		if v, ok := venuesByID[b.PreferredVenue]; ok {
			row.PreferredVenueRef = &models.VenueRef{ID: v.ID, Name: v.Name, Location: v.Location}
		}
		if v, ok := venuesByID[b.AllocatedVenue]; ok {
			row.AllocatedVenueRef = &models.VenueRef{ID: v.ID, Name: v.Name, Location: v.Location}
		}
		if u, ok := usersByID[b.RequestedBy]; ok {
			row.Requester = &models.RequesterRef{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, ClubOrDept: u.ClubOrDept}
		}
		detailed = append(detailed, row)
	}

	return detailed, nil
}
