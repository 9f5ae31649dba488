package bookings_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campus-hub/internal/bookings"
	"campus-hub/internal/logger"
	"campus-hub/internal/models"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateBooking(booking models.Booking) error {
	args := m.Called(booking)
	return args.Error(0)
}

func (m *MockDBLayer) GetBookingByID(id string) (*models.Booking, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockDBLayer) ListBookingsByRequester(userID string) ([]models.Booking, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockDBLayer) ListPendingBookings() ([]models.Booking, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockDBLayer) HasApprovedConflict(venueID string, start, end time.Time, excludeID string) (bool, error) {
	args := m.Called(venueID, start, end, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) RejectBooking(id, adminComment string) (*models.Booking, error) {
	args := m.Called(id, adminComment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockDBLayer) ApproveBooking(booking models.Booking, venueID, adminComment string) (*models.Booking, error) {
	args := m.Called(booking, venueID, adminComment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

type MockEventDB struct {
	mock.Mock
}

func (m *MockEventDB) GetEventForOwner(id, creatorID string) (*models.Event, error) {
	args := m.Called(id, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventDB) GetEventsByIDs(ids []string) ([]models.Event, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

type MockVenueDB struct {
	mock.Mock
}

func (m *MockVenueDB) GetVenueByID(id string) (*models.Venue, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Venue), args.Error(1)
}

func (m *MockVenueDB) GetVenuesByIDs(ids []string) ([]models.Venue, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Venue), args.Error(1)
}

type MockUserDB struct {
	mock.Mock
}

func (m *MockUserDB) GetUsersByIDs(ids []string) ([]models.User, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

type MockVenueLock struct {
	mock.Mock
}

func (m *MockVenueLock) LockVenue(venueID, bookingID string) (bool, error) {
	args := m.Called(venueID, bookingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVenueLock) UnlockVenue(venueID, bookingID string) error {
	args := m.Called(venueID, bookingID)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishBookingRequested(booking models.Booking) error {
	args := m.Called(booking)
	return args.Error(0)
}

func (m *MockPublisher) PublishBookingApproved(booking models.Booking) error {
	args := m.Called(booking)
	return args.Error(0)
}

func (m *MockPublisher) PublishBookingRejected(booking models.Booking) error {
	args := m.Called(booking)
	return args.Error(0)
}

type serviceMocks struct {
	db      *MockDBLayer
	eventDB *MockEventDB
	venueDB *MockVenueDB
	userDB  *MockUserDB
	lock    *MockVenueLock
	kafka   *MockPublisher
}

func newTestService(t *testing.T) (*bookings.BookingService, *serviceMocks) {
	t.Helper()
	m := &serviceMocks{
		db:      &MockDBLayer{},
		eventDB: &MockEventDB{},
		venueDB: &MockVenueDB{},
		userDB:  &MockUserDB{},
		lock:    &MockVenueLock{},
		kafka:   &MockPublisher{},
	}
	svc := bookings.NewBookingService(m.db, m.eventDB, m.venueDB, m.userDB, m.lock, m.kafka, logger.NewLogger())
	return svc, m
}

var (
	clubHead = models.Identity{ID: "user-1", Role: models.RoleClubHead, Email: "club@campus.local"}
	admin    = models.Identity{ID: "admin-1", Role: models.RoleAdmin, Email: "admin@campus.local"}
	student  = models.Identity{ID: "student-1", Role: models.RoleStudent, Email: "student@campus.local"}
)

func validRequest() models.BookingRequest {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return models.BookingRequest{
		EventID:   "event-1",
		VenueID:   "venue-1",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	}
}

func TestRequestBooking_ForbiddenForStudents(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RequestBooking(validRequest(), student)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestRequestBooking_InvalidRange(t *testing.T) {
	svc, _ := newTestService(t)

	req := validRequest()
	req.EndTime = req.StartTime
	_, err := svc.RequestBooking(req, clubHead)
	assert.ErrorIs(t, err, models.ErrInvalidRange)

	req.EndTime = req.StartTime.Add(-time.Hour)
	_, err = svc.RequestBooking(req, clubHead)
	assert.ErrorIs(t, err, models.ErrInvalidRange)
}

func TestRequestBooking_OwnershipEnforcedAsNotFound(t *testing.T) {
	svc, m := newTestService(t)

	// The event exists but belongs to someone else: the lookup by
	// (id, creator) misses, which must surface as NotFound.
	m.eventDB.On("GetEventForOwner", "event-1", clubHead.ID).Return(nil, sql.ErrNoRows)

	_, err := svc.RequestBooking(validRequest(), clubHead)
	assert.ErrorIs(t, err, models.ErrNotFound)
	m.venueDB.AssertNotCalled(t, "GetVenueByID", mock.Anything)
}

func TestRequestBooking_InactiveVenueNotFound(t *testing.T) {
	svc, m := newTestService(t)

	m.eventDB.On("GetEventForOwner", "event-1", clubHead.ID).Return(&models.Event{ID: "event-1", CreatedBy: clubHead.ID}, nil)
	m.venueDB.On("GetVenueByID", "venue-1").Return(&models.Venue{ID: "venue-1", IsActive: false}, nil)

	_, err := svc.RequestBooking(validRequest(), clubHead)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRequestBooking_ConflictWithApproved(t *testing.T) {
	svc, m := newTestService(t)

	req := validRequest()
	m.eventDB.On("GetEventForOwner", "event-1", clubHead.ID).Return(&models.Event{ID: "event-1", CreatedBy: clubHead.ID}, nil)
	m.venueDB.On("GetVenueByID", "venue-1").Return(&models.Venue{ID: "venue-1", IsActive: true}, nil)
	m.db.On("HasApprovedConflict", "venue-1", req.StartTime, req.EndTime, "").Return(true, nil)

	_, err := svc.RequestBooking(req, clubHead)
	assert.ErrorIs(t, err, models.ErrVenueConflict)
	m.db.AssertNotCalled(t, "CreateBooking", mock.Anything)
}

func TestRequestBooking_Success(t *testing.T) {
	svc, m := newTestService(t)

	req := validRequest()
	m.eventDB.On("GetEventForOwner", "event-1", clubHead.ID).Return(&models.Event{ID: "event-1", CreatedBy: clubHead.ID}, nil)
	m.venueDB.On("GetVenueByID", "venue-1").Return(&models.Venue{ID: "venue-1", IsActive: true}, nil)
	m.db.On("HasApprovedConflict", "venue-1", req.StartTime, req.EndTime, "").Return(false, nil)
	m.db.On("CreateBooking", mock.AnythingOfType("models.Booking")).Return(nil)
	m.kafka.On("PublishBookingRequested", mock.AnythingOfType("models.Booking")).Return(nil)

	booking, err := svc.RequestBooking(req, clubHead)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, booking.Status)
	assert.Equal(t, "venue-1", booking.PreferredVenue)
	assert.Empty(t, booking.AllocatedVenue)
	assert.Equal(t, clubHead.ID, booking.RequestedBy)
	m.db.AssertExpectations(t)
	m.kafka.AssertExpectations(t)
}

func TestListPendingBookings_AdminOnly(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ListPendingBookings(clubHead)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestDecideBooking_AdminOnly(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.DecideBooking("booking-1", models.DecisionRequest{Decision: models.StatusApproved}, clubHead)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestDecideBooking_InvalidDecision(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.DecideBooking("booking-1", models.DecisionRequest{Decision: models.StatusPending}, admin)
	assert.ErrorIs(t, err, models.ErrInvalidDecision)

	_, err = svc.DecideBooking("booking-1", models.DecisionRequest{Decision: "Maybe"}, admin)
	assert.ErrorIs(t, err, models.ErrInvalidDecision)
}

func TestDecideBooking_RejectHasNoVenueSideEffects(t *testing.T) {
	svc, m := newTestService(t)

	pending := &models.Booking{
		ID:             "booking-1",
		EventID:        "event-1",
		Status:         models.StatusPending,
		PreferredVenue: "venue-1",
	}
	rejected := *pending
	rejected.Status = models.StatusRejected
	rejected.AdminComment = "double booked elsewhere"

	m.db.On("GetBookingByID", "booking-1").Return(pending, nil)
	m.db.On("RejectBooking", "booking-1", "double booked elsewhere").Return(&rejected, nil)
	m.kafka.On("PublishBookingRejected", rejected).Return(nil)

	updated, err := svc.DecideBooking("booking-1", models.DecisionRequest{
		Decision:     models.StatusRejected,
		AdminComment: "double booked elsewhere",
	}, admin)
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, updated.Status)
	assert.Empty(t, updated.AllocatedVenue)
	// Rejection must never touch venues, locks, or the owning event.
	m.db.AssertNotCalled(t, "ApproveBooking", mock.Anything, mock.Anything, mock.Anything)
	m.lock.AssertNotCalled(t, "LockVenue", mock.Anything, mock.Anything)
	m.venueDB.AssertNotCalled(t, "GetVenueByID", mock.Anything)
}

func TestDecideBooking_RejectAfterApproveRefused(t *testing.T) {
	svc, m := newTestService(t)

	// b-1 was approved onto hall-a; its event's confirmed venue points there.
	approved := &models.Booking{
		ID:             "b-1",
		EventID:        "event-1",
		Status:         models.StatusApproved,
		PreferredVenue: "hall-a",
		AllocatedVenue: "hall-a",
	}
	m.db.On("GetBookingByID", "b-1").Return(approved, nil)

	_, err := svc.DecideBooking("b-1", models.DecisionRequest{Decision: models.StatusRejected}, admin)
	assert.ErrorIs(t, err, models.ErrAlreadyDecided)

	// Nothing moves: the booking keeps its status and the event keeps its
	// confirmed venue.
	m.db.AssertNotCalled(t, "RejectBooking", mock.Anything, mock.Anything)
	m.db.AssertNotCalled(t, "ApproveBooking", mock.Anything, mock.Anything, mock.Anything)
	m.kafka.AssertNotCalled(t, "PublishBookingRejected", mock.Anything)
}

func TestDecideBooking_ReDecideApprovedRefused(t *testing.T) {
	svc, m := newTestService(t)

	approved := &models.Booking{
		ID:             "b-1",
		EventID:        "event-1",
		Status:         models.StatusApproved,
		AllocatedVenue: "hall-a",
	}
	m.db.On("GetBookingByID", "b-1").Return(approved, nil)

	// Re-approving onto a different venue must not move the allocation.
	_, err := svc.DecideBooking("b-1", models.DecisionRequest{
		Decision:         models.StatusApproved,
		AllocatedVenueID: "hall-b",
	}, admin)
	assert.ErrorIs(t, err, models.ErrAlreadyDecided)
	m.venueDB.AssertNotCalled(t, "GetVenueByID", mock.Anything)
	m.lock.AssertNotCalled(t, "LockVenue", mock.Anything, mock.Anything)
}

func TestDecideBooking_RejectedStaysRejected(t *testing.T) {
	svc, m := newTestService(t)

	m.db.On("GetBookingByID", "b-1").Return(&models.Booking{
		ID:      "b-1",
		EventID: "event-1",
		Status:  models.StatusRejected,
	}, nil)

	_, err := svc.DecideBooking("b-1", models.DecisionRequest{Decision: models.StatusApproved}, admin)
	assert.ErrorIs(t, err, models.ErrAlreadyDecided)
}

func TestDecideBooking_MissingVenue(t *testing.T) {
	svc, m := newTestService(t)

	// No allocated venue in the request and no preferred venue recorded.
	m.db.On("GetBookingByID", "booking-1").Return(&models.Booking{
		ID:      "booking-1",
		EventID: "event-1",
		Status:  models.StatusPending,
	}, nil)

	_, err := svc.DecideBooking("booking-1", models.DecisionRequest{Decision: models.StatusApproved}, admin)
	assert.ErrorIs(t, err, models.ErrMissingVenue)
}

func TestDecideBooking_ApproveFallsBackToPreferredVenue(t *testing.T) {
	svc, m := newTestService(t)

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	pending := &models.Booking{
		ID:             "booking-1",
		EventID:        "event-1",
		Status:         models.StatusPending,
		PreferredVenue: "venue-1",
		StartTime:      start,
		EndTime:        start.Add(2 * time.Hour),
	}
	approved := *pending
	approved.Status = models.StatusApproved
	approved.AllocatedVenue = "venue-1"

	m.db.On("GetBookingByID", "booking-1").Return(pending, nil)
	m.venueDB.On("GetVenueByID", "venue-1").Return(&models.Venue{ID: "venue-1", IsActive: true}, nil)
	m.lock.On("LockVenue", "venue-1", "booking-1").Return(true, nil)
	m.lock.On("UnlockVenue", "venue-1", "booking-1").Return(nil)
	m.db.On("HasApprovedConflict", "venue-1", pending.StartTime, pending.EndTime, "booking-1").Return(false, nil)
	m.db.On("ApproveBooking", *pending, "venue-1", "").Return(&approved, nil)
	m.kafka.On("PublishBookingApproved", approved).Return(nil)

	updated, err := svc.DecideBooking("booking-1", models.DecisionRequest{Decision: models.StatusApproved}, admin)
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, updated.Status)
	assert.Equal(t, "venue-1", updated.AllocatedVenue)
	m.db.AssertExpectations(t)
	m.lock.AssertExpectations(t)
}

func TestDecideBooking_ApproveWithSubstituteVenue(t *testing.T) {
	svc, m := newTestService(t)

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	pending := &models.Booking{
		ID:             "booking-1",
		EventID:        "event-1",
		Status:         models.StatusPending,
		PreferredVenue: "venue-1",
		StartTime:      start,
		EndTime:        start.Add(time.Hour),
	}
	approved := *pending
	approved.Status = models.StatusApproved
	approved.AllocatedVenue = "venue-2"

	m.db.On("GetBookingByID", "booking-1").Return(pending, nil)
	m.venueDB.On("GetVenueByID", "venue-2").Return(&models.Venue{ID: "venue-2", IsActive: true}, nil)
	m.lock.On("LockVenue", "venue-2", "booking-1").Return(true, nil)
	m.lock.On("UnlockVenue", "venue-2", "booking-1").Return(nil)
	m.db.On("HasApprovedConflict", "venue-2", pending.StartTime, pending.EndTime, "booking-1").Return(false, nil)
	m.db.On("ApproveBooking", *pending, "venue-2", "moved to bigger hall").Return(&approved, nil)
	m.kafka.On("PublishBookingApproved", approved).Return(nil)

	// Admin discretion: allocating a venue other than the preferred one
	// needs no requester re-validation.
	updated, err := svc.DecideBooking("booking-1", models.DecisionRequest{
		Decision:         models.StatusApproved,
		AllocatedVenueID: "venue-2",
		AdminComment:     "moved to bigger hall",
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, "venue-2", updated.AllocatedVenue)
}

func TestDecideBooking_ApproveConflictLeavesBookingPending(t *testing.T) {
	svc, m := newTestService(t)

	start := time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	pending := &models.Booking{
		ID:             "booking-2",
		EventID:        "event-2",
		Status:         models.StatusPending,
		PreferredVenue: "venue-1",
		StartTime:      start,
		EndTime:        start.Add(2 * time.Hour),
	}

	m.db.On("GetBookingByID", "booking-2").Return(pending, nil)
	m.venueDB.On("GetVenueByID", "venue-1").Return(&models.Venue{ID: "venue-1", IsActive: true}, nil)
	m.lock.On("LockVenue", "venue-1", "booking-2").Return(true, nil)
	m.lock.On("UnlockVenue", "venue-1", "booking-2").Return(nil)
	m.db.On("HasApprovedConflict", "venue-1", pending.StartTime, pending.EndTime, "booking-2").Return(true, nil)

	_, err := svc.DecideBooking("booking-2", models.DecisionRequest{Decision: models.StatusApproved}, admin)
	assert.ErrorIs(t, err, models.ErrVenueConflict)
	m.db.AssertNotCalled(t, "ApproveBooking", mock.Anything, mock.Anything, mock.Anything)
	m.lock.AssertExpectations(t)
}

func TestDecideBooking_LockHeldByAnotherDecision(t *testing.T) {
	svc, m := newTestService(t)

	pending := &models.Booking{
		ID:             "booking-1",
		EventID:        "event-1",
		Status:         models.StatusPending,
		PreferredVenue: "venue-1",
	}

	m.db.On("GetBookingByID", "booking-1").Return(pending, nil)
	m.venueDB.On("GetVenueByID", "venue-1").Return(&models.Venue{ID: "venue-1", IsActive: true}, nil)
	m.lock.On("LockVenue", "venue-1", "booking-1").Return(false, nil)

	_, err := svc.DecideBooking("booking-1", models.DecisionRequest{Decision: models.StatusApproved}, admin)
	assert.ErrorIs(t, err, models.ErrVenueConflict)
	m.db.AssertNotCalled(t, "HasApprovedConflict", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListMyBookings_AttachesDetails(t *testing.T) {
	svc, m := newTestService(t)

	bookingID := uuid.New().String()
	rows := []models.Booking{
		{
			ID:             bookingID,
			EventID:        "event-1",
			RequestedBy:    clubHead.ID,
			PreferredVenue: "venue-1",
			AllocatedVenue: "venue-2",
			Status:         models.StatusApproved,
		},
	}

	m.db.On("ListBookingsByRequester", clubHead.ID).Return(rows, nil)
	m.eventDB.On("GetEventsByIDs", []string{"event-1"}).Return([]models.Event{
		{ID: "event-1", Title: "Tech Talk"},
	}, nil)
	m.venueDB.On("GetVenuesByIDs", []string{"venue-1", "venue-2"}).Return([]models.Venue{
		{ID: "venue-1", Name: "Seminar Hall 1", Location: "Block B"},
		{ID: "venue-2", Name: "Main Auditorium", Location: "Block A"},
	}, nil)

	list, err := svc.ListMyBookings(clubHead)
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.Equal(t, "Tech Talk", list[0].Event.Title)
	assert.Equal(t, "Seminar Hall 1", list[0].PreferredVenueRef.Name)
	assert.Equal(t, "Main Auditorium", list[0].AllocatedVenueRef.Name)
	assert.Nil(t, list[0].Requester)
}

func TestBookingPass_OnlyForApproved(t *testing.T) {
	svc, m := newTestService(t)

	m.db.On("GetBookingByID", "booking-1").Return(&models.Booking{
		ID:          "booking-1",
		RequestedBy: clubHead.ID,
		Status:      models.StatusPending,
	}, nil)

	_, err := svc.BookingPass("booking-1", clubHead)
	assert.ErrorIs(t, err, models.ErrNotApproved)
}

func TestBookingPass_HiddenFromStrangers(t *testing.T) {
	svc, m := newTestService(t)

	m.db.On("GetBookingByID", "booking-1").Return(&models.Booking{
		ID:             "booking-1",
		RequestedBy:    "someone-else",
		Status:         models.StatusApproved,
		AllocatedVenue: "venue-1",
	}, nil)

	_, err := svc.BookingPass("booking-1", clubHead)
	assert.ErrorIs(t, err, models.ErrNotFound)

	pass, err := svc.BookingPass("booking-1", admin)
	require.NoError(t, err)
	assert.Equal(t, "venue-1", pass.VenueID)
}
