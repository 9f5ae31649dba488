package event_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campus-hub/internal/auth"
	"campus-hub/internal/events"
	"campus-hub/internal/logger"
	"campus-hub/internal/models"
)

type Handler struct {
	EventService *events.EventService
	Logger       *logger.Logger
}

func NewHandler(eventService *events.EventService, log *logger.Logger) *Handler {
	return &Handler{EventService: eventService, Logger: log}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, models.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "Event not found or not yours", http.StatusNotFound)
	case errors.Is(err, models.ErrHasApprovedBooking):
		http.Error(w, "Event has an approved booking. Cancel the booking first.", http.StatusBadRequest)
	case errors.Is(err, models.ErrInvalidRange), errors.Is(err, models.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.Logger.Error("EVENT", fmt.Sprintf("%s: %v", op, err))
		http.Error(w, "Error handling event request", http.StatusInternalServerError)
	}
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	eventType := models.EventType(r.URL.Query().Get("type"))

	list, err := h.EventService.ListEvents(eventType)
	if err != nil {
		h.writeServiceError(w, "ListEvents", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "missing or invalid credentials", http.StatusUnauthorized)
		return
	}

	list, err := h.EventService.ListMyEvents(identity)
	if err != nil {
		h.writeServiceError(w, "ListMyEvents", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "missing or invalid credentials", http.StatusUnauthorized)
		return
	}

	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.EventService.CreateEvent(req, identity)
	if err != nil {
		h.writeServiceError(w, "CreateEvent", err)
		return
	}

	h.Logger.LogDatabase("INSERT", "events", fmt.Sprintf("event %q (%s) created by %s", event.Title, event.ID, identity.ID))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(event)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "missing or invalid credentials", http.StatusUnauthorized)
		return
	}

	eventID := chi.URLParam(r, "eventId")

	event, err := h.EventService.GetEvent(eventID, identity)
	if err != nil {
		h.writeServiceError(w, "GetEvent", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "missing or invalid credentials", http.StatusUnauthorized)
		return
	}

	eventID := chi.URLParam(r, "eventId")

	var patch models.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.EventService.UpdateEvent(eventID, patch, identity)
	if err != nil {
		h.writeServiceError(w, "UpdateEvent", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "missing or invalid credentials", http.StatusUnauthorized)
		return
	}

	eventID := chi.URLParam(r, "eventId")

	if err := h.EventService.DeleteEvent(eventID, identity); err != nil {
		h.writeServiceError(w, "DeleteEvent", err)
		return
	}

	h.Logger.LogDatabase("DELETE", "events", fmt.Sprintf("event %s and its bookings deleted by %s", eventID, identity.ID))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Event and related bookings deleted"})
}
