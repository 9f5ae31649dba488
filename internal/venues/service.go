package venues

import (
	"fmt"
	"time"

	"campus-hub/internal/models"
	"campus-hub/internal/utils"
)

type DBLayer interface {
	ListActiveVenues() ([]models.Venue, error)
	GetVenueByID(id string) (*models.Venue, error)
	NameExists(name string) (bool, error)
	CreateVenue(venue models.Venue) error
	DeactivateVenue(id string) (int64, error)
}

type VenueService struct {
	DB DBLayer
}

func NewVenueService(db DBLayer) *VenueService {
	return &VenueService{DB: db}
}

// ListActiveVenues is public: clients use it for dropdowns and filters.
func (s *VenueService) ListActiveVenues() ([]models.Venue, error) {
	venues, err := s.DB.ListActiveVenues()
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	if venues == nil {
		venues = []models.Venue{}
	}
	return venues, nil
}

func (s *VenueService) CreateVenue(req models.VenueRequest, caller models.Identity) (*models.Venue, error) {
	if !caller.HasRole(models.RoleAdmin) {
		return nil, models.ErrForbidden
	}

	if req.Name == "" || req.Location == "" || req.Capacity <= 0 {
		return nil, fmt.Errorf("%w: name, location and a positive capacity are required", models.ErrValidation)
	}
	if !models.ValidVenueType(req.Type) {
		return nil, fmt.Errorf("%w: unknown venue type %q", models.ErrValidation, req.Type)
	}

	exists, err := s.DB.NameExists(req.Name)
	if err != nil {
		return nil, fmt.Errorf("check venue name: %w", err)
	}
	if exists {
		return nil, models.ErrDuplicateName
	}

	now := time.Now().UTC()
	venue := models.Venue{
		ID:        utils.NewID(),
		Name:      req.Name,
		Type:      req.Type,
		Capacity:  req.Capacity,
		Location:  req.Location,
		Equipment: req.Equipment,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if venue.Equipment == nil {
		venue.Equipment = []string{}
	}

	if err := s.DB.CreateVenue(venue); err != nil {
		return nil, fmt.Errorf("create venue: %w", err)
	}

	return &venue, nil
}

// DeactivateVenue soft-disables a venue. Historical bookings keep their
// reference; only new booking requests stop seeing it.
func (s *VenueService) DeactivateVenue(id string, caller models.Identity) error {
	if !caller.HasRole(models.RoleAdmin) {
		return models.ErrForbidden
	}

	affected, err := s.DB.DeactivateVenue(id)
	if err != nil {
		return fmt.Errorf("deactivate venue: %w", err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}
