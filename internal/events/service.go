package events

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campus-hub/internal/models"
	"campus-hub/internal/utils"
)

type DBLayer interface {
	ListEvents(eventType models.EventType) ([]models.Event, error)
	ListEventsByCreator(creatorID string) ([]models.Event, error)
	GetEventByID(id string) (*models.Event, error)
	GetEventForOwner(id, creatorID string) (*models.Event, error)
	CreateEvent(event models.Event) error
	UpdateEvent(event models.Event) error
	HasApprovedBooking(eventID string) (bool, error)
	DeleteEventCascade(eventID string) error
}

type VenueDBLayer interface {
	GetVenuesByIDs(ids []string) ([]models.Venue, error)
}

type UserDBLayer interface {
	GetUsersByIDs(ids []string) ([]models.User, error)
}

type EventService struct {
	DB      DBLayer
	VenueDB VenueDBLayer
	UserDB  UserDBLayer
}

func NewEventService(db DBLayer, venueDB VenueDBLayer, userDB UserDBLayer) *EventService {
	return &EventService{DB: db, VenueDB: venueDB, UserDB: userDB}
}

// ListEvents is the public listing, optionally filtered by type, sorted by
// start time ascending, with confirmed venue and creator embedded.
func (s *EventService) ListEvents(eventType models.EventType) ([]models.EventWithDetails, error) {
	if eventType != "" && !models.ValidEventType(eventType) {
		return nil, fmt.Errorf("%w: unknown event type %q", models.ErrValidation, eventType)
	}

	list, err := s.DB.ListEvents(eventType)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return s.attachDetails(list, true)
}

func (s *EventService) ListMyEvents(caller models.Identity) ([]models.EventWithDetails, error) {
	list, err := s.DB.ListEventsByCreator(caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list my events: %w", err)
	}

	return s.attachDetails(list, false)
}

func (s *EventService) CreateEvent(req models.EventRequest, caller models.Identity) (*models.Event, error) {
	if !caller.HasRole(models.RoleClubHead, models.RoleFaculty) {
		return nil, models.ErrForbidden
	}

	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrValidation)
	}
	if req.Type == "" {
		req.Type = models.EventOther
	}
	if !models.ValidEventType(req.Type) {
		return nil, fmt.Errorf("%w: unknown event type %q", models.ErrValidation, req.Type)
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, models.ErrInvalidRange
	}

	now := time.Now().UTC()
	event := models.Event{
		ID:          utils.NewID(),
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		CreatedBy:   caller.ID,
		ClubOrDept:  req.ClubOrDept,
		IsPublic:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.DB.CreateEvent(event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	return &event, nil
}

// resolveOwned applies the ownership rule: admin reaches any event, everyone
// else only their own. Absence and ownership mismatch both come back as
// NotFound.
func (s *EventService) resolveOwned(id string, caller models.Identity) (*models.Event, error) {
	var event *models.Event
	var err error
	if caller.Role == models.RoleAdmin {
		event, err = s.DB.GetEventByID(id)
	} else {
		event, err = s.DB.GetEventForOwner(id, caller.ID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("resolve event: %w", err)
	}
	return event, nil
}

func (s *EventService) GetEvent(id string, caller models.Identity) (*models.EventWithDetails, error) {
	event, err := s.resolveOwned(id, caller)
	if err != nil {
		return nil, err
	}

	detailed, err := s.attachDetails([]models.Event{*event}, false)
	if err != nil {
		return nil, err
	}
	return &detailed[0], nil
}

func (s *EventService) UpdateEvent(id string, patch models.EventPatch, caller models.Identity) (*models.Event, error) {
	event, err := s.resolveOwned(id, caller)
	if err != nil {
		return nil, err
	}

	if patch.TouchesTime() {
		locked, err := s.DB.HasApprovedBooking(event.ID)
		if err != nil {
			return nil, fmt.Errorf("check approved bookings: %w", err)
		}
		if locked {
			return nil, models.ErrHasApprovedBooking
		}
	}

	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Type != nil {
		if !models.ValidEventType(*patch.Type) {
			return nil, fmt.Errorf("%w: unknown event type %q", models.ErrValidation, *patch.Type)
		}
		event.Type = *patch.Type
	}
	if patch.StartTime != nil {
		event.StartTime = patch.StartTime.UTC()
	}
	if patch.EndTime != nil {
		event.EndTime = patch.EndTime.UTC()
	}
	if !event.EndTime.After(event.StartTime) {
		return nil, models.ErrInvalidRange
	}
	event.UpdatedAt = time.Now().UTC()

	if err := s.DB.UpdateEvent(*event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	return event, nil
}

// DeleteEvent cascades to the event's bookings. The approved-booking guard is
// enforced here and again inside the delete transaction.
func (s *EventService) DeleteEvent(id string, caller models.Identity) error {
	event, err := s.resolveOwned(id, caller)
	if err != nil {
		return err
	}

	locked, err := s.DB.HasApprovedBooking(event.ID)
	if err != nil {
		return fmt.Errorf("check approved bookings: %w", err)
	}
	if locked {
		return models.ErrHasApprovedBooking
	}

	if err := s.DB.DeleteEventCascade(event.ID); err != nil {
		if errors.Is(err, models.ErrHasApprovedBooking) {
			return models.ErrHasApprovedBooking
		}
		return fmt.Errorf("delete event: %w", err)
	}

	return nil
}

// attachDetails batch-resolves confirmed venues and, optionally, creators and
// embeds them in the response rows.
func (s *EventService) attachDetails(list []models.Event, withCreator bool) ([]models.EventWithDetails, error) {
	detailed := make([]models.EventWithDetails, 0, len(list))
	if len(list) == 0 {
		return detailed, nil
	}

	venueIDs := make([]string, 0, len(list))
	creatorIDs := make([]string, 0, len(list))
	for _, e := range list {
		if e.ConfirmedVenue != "" {
			venueIDs = append(venueIDs, e.ConfirmedVenue)
		}
		creatorIDs = append(creatorIDs, e.CreatedBy)
	}

	venuesByID := map[string]models.Venue{}
	if len(venueIDs) > 0 {
		vs, err := s.VenueDB.GetVenuesByIDs(venueIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve venues: %w", err)
		}
		for _, v := range vs {
			venuesByID[v.ID] = v
		}
	}

	usersByID := map[string]models.User{}
	if withCreator {
		us, err := s.UserDB.GetUsersByIDs(creatorIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve creators: %w", err)
		}
		for _, u := range us {
			usersByID[u.ID] = u
		}
	}

	for _, e := range list {
		row := models.EventWithDetails{Event: e}
		if v, ok := venuesByID[e.ConfirmedVenue]; ok {
			row.ConfirmedVenueRef = &models.VenueRef{ID: v.ID, Name: v.Name, Location: v.Location}
		}
		if u, ok := usersByID[e.CreatedBy]; ok {
			row.Creator = &models.CreatorRef{ID: u.ID, Name: u.Name, Role: u.Role, ClubOrDept: u.ClubOrDept}
		}
		detailed = append(detailed, row)
	}

	return detailed, nil
}
