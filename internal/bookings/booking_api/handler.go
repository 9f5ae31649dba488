package booking_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campus-hub/internal/auth"
	"campus-hub/internal/bookings"
	"campus-hub/internal/bookings/pass"
	"campus-hub/internal/logger"
	"campus-hub/internal/models"
)

type Handler struct {
	BookingService *bookings.BookingService
	PassGenerator  *pass.Generator
	Logger         *logger.Logger
}

func NewHandler(bookingService *bookings.BookingService, passGenerator *pass.Generator, log *logger.Logger) *Handler {
	return &Handler{
		BookingService: bookingService,
		PassGenerator:  passGenerator,
		Logger:         log,
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, models.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrVenueConflict):
		http.Error(w, "This venue is already booked for the selected time.", http.StatusConflict)
	case errors.Is(err, models.ErrAlreadyDecided):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrInvalidRange),
		errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrMissingVenue),
		errors.Is(err, models.ErrInvalidDecision),
		errors.Is(err, models.ErrNotApproved):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.Logger.Error("BOOKING", fmt.Sprintf("%s: %v", op, err))
		http.Error(w, "Error handling booking request", http.StatusInternalServerError)
	}
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "missing or invalid credentials", http.StatusUnauthorized)
		return
	}

	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	booking, err := h.BookingService.RequestBooking(req, identity)
	if err != nil {
		h.writeServiceError(w, "CreateBooking", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(booking)
}

func (h *Handler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "missing or invalid credentials", http.StatusUnauthorized)
		return
	}

	list, err := h.BookingService.ListMyBookings(identity)
	if err != nil {
		h.writeServiceError(w, "ListMyBookings", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) ListPendingBookings(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "missing or invalid credentials", http.StatusUnauthorized)
		return
	}

	list, err := h.BookingService.ListPendingBookings(identity)
	if err != nil {
		h.writeServiceError(w, "ListPendingBookings", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) DecideBooking(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "missing or invalid credentials", http.StatusUnauthorized)
		return
	}

	bookingID := chi.URLParam(r, "bookingId")

	var req models.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	booking, err := h.BookingService.DecideBooking(bookingID, req, identity)
	if err != nil {
		h.writeServiceError(w, "DecideBooking", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(booking)
}

// BookingPass serves the QR pass PNG for an approved booking.
func (h *Handler) BookingPass(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "missing or invalid credentials", http.StatusUnauthorized)
		return
	}

	bookingID := chi.URLParam(r, "bookingId")

	passData, err := h.BookingService.BookingPass(bookingID, identity)
	if err != nil {
		h.writeServiceError(w, "BookingPass", err)
		return
	}

	png, err := h.PassGenerator.GeneratePassQR(*passData)
	if err != nil {
		h.Logger.Error("BOOKING", fmt.Sprintf("BookingPass: generate QR: %v", err))
		http.Error(w, "Error generating booking pass", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
