package venues_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campus-hub/internal/models"
	"campus-hub/internal/venues"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) ListActiveVenues() ([]models.Venue, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Venue), args.Error(1)
}

func (m *MockDBLayer) GetVenueByID(id string) (*models.Venue, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Venue), args.Error(1)
}

func (m *MockDBLayer) NameExists(name string) (bool, error) {
	args := m.Called(name)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) CreateVenue(venue models.Venue) error {
	args := m.Called(venue)
	return args.Error(0)
}

func (m *MockDBLayer) DeactivateVenue(id string) (int64, error) {
	args := m.Called(id)
	return args.Get(0).(int64), args.Error(1)
}

var (
	admin    = models.Identity{ID: "admin-1", Role: models.RoleAdmin}
	clubHead = models.Identity{ID: "user-1", Role: models.RoleClubHead}
)

func validVenueRequest() models.VenueRequest {
	return models.VenueRequest{
		Name:     "Main Auditorium",
		Type:     models.VenueAuditorium,
		Capacity: 500,
		Location: "Block A",
	}
}

func TestCreateVenue_AdminOnly(t *testing.T) {
	svc := venues.NewVenueService(&MockDBLayer{})

	_, err := svc.CreateVenue(validVenueRequest(), clubHead)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestCreateVenue_Validation(t *testing.T) {
	svc := venues.NewVenueService(&MockDBLayer{})

	req := validVenueRequest()
	req.Name = ""
	_, err := svc.CreateVenue(req, admin)
	assert.ErrorIs(t, err, models.ErrValidation)

	req = validVenueRequest()
	req.Capacity = 0
	_, err = svc.CreateVenue(req, admin)
	assert.ErrorIs(t, err, models.ErrValidation)

	req = validVenueRequest()
	req.Type = "stadium-of-unknown-kind"
	_, err = svc.CreateVenue(req, admin)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateVenue_DuplicateName(t *testing.T) {
	db := &MockDBLayer{}
	svc := venues.NewVenueService(db)

	// NameExists also matches deactivated venues, so a retired hall's name
	// cannot be reused.
	db.On("NameExists", "Main Auditorium").Return(true, nil)

	_, err := svc.CreateVenue(validVenueRequest(), admin)
	assert.ErrorIs(t, err, models.ErrDuplicateName)
	db.AssertNotCalled(t, "CreateVenue", mock.Anything)
}

func TestCreateVenue_Success(t *testing.T) {
	db := &MockDBLayer{}
	svc := venues.NewVenueService(db)

	db.On("NameExists", "Main Auditorium").Return(false, nil)
	db.On("CreateVenue", mock.AnythingOfType("models.Venue")).Return(nil)

	venue, err := svc.CreateVenue(validVenueRequest(), admin)
	require.NoError(t, err)

	assert.NotEmpty(t, venue.ID)
	assert.True(t, venue.IsActive)
	assert.NotNil(t, venue.Equipment)
	db.AssertExpectations(t)
}

func TestDeactivateVenue(t *testing.T) {
	db := &MockDBLayer{}
	svc := venues.NewVenueService(db)

	db.On("DeactivateVenue", "venue-1").Return(int64(1), nil)
	require.NoError(t, svc.DeactivateVenue("venue-1", admin))

	db.On("DeactivateVenue", "no-such-venue").Return(int64(0), nil)
	assert.ErrorIs(t, svc.DeactivateVenue("no-such-venue", admin), models.ErrNotFound)

	assert.ErrorIs(t, svc.DeactivateVenue("venue-1", clubHead), models.ErrForbidden)
}

func TestListActiveVenues_NeverNil(t *testing.T) {
	db := &MockDBLayer{}
	svc := venues.NewVenueService(db)

	db.On("ListActiveVenues").Return(nil, nil)

	list, err := svc.ListActiveVenues()
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
