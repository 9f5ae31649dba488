package venue_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campus-hub/internal/auth"
	"campus-hub/internal/logger"
	"campus-hub/internal/models"
	"campus-hub/internal/venues"
)

type Handler struct {
	VenueService *venues.VenueService
	Logger       *logger.Logger
}

func NewHandler(venueService *venues.VenueService, log *logger.Logger) *Handler {
	return &Handler{VenueService: venueService, Logger: log}
}

func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	list, err := h.VenueService.ListActiveVenues()
	if err != nil {
		h.Logger.Error("VENUE", fmt.Sprintf("ListVenues: %v", err))
		http.Error(w, "Error fetching venues", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "missing or invalid credentials", http.StatusUnauthorized)
		return
	}

	var req models.VenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	venue, err := h.VenueService.CreateVenue(req, identity)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, models.ErrDuplicateName):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, models.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.Logger.Error("VENUE", fmt.Sprintf("CreateVenue: %v", err))
			http.Error(w, "Error creating venue", http.StatusInternalServerError)
		}
		return
	}

	h.Logger.LogDatabase("INSERT", "venues", fmt.Sprintf("venue %s (%s) created", venue.Name, venue.ID))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(venue)
}

func (h *Handler) DeactivateVenue(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "missing or invalid credentials", http.StatusUnauthorized)
		return
	}

	venueID := chi.URLParam(r, "venueId")

	err := h.VenueService.DeactivateVenue(venueID, identity)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, models.ErrNotFound):
			http.Error(w, "Venue not found", http.StatusNotFound)
		default:
			h.Logger.Error("VENUE", fmt.Sprintf("DeactivateVenue: %v", err))
			http.Error(w, "Error deactivating venue", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
