package auth_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"campus-hub/internal/auth"
	"campus-hub/internal/logger"
	"campus-hub/internal/models"
)

type Handler struct {
	Service *auth.Service
	Logger  *logger.Logger
}

func NewHandler(service *auth.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.Service.Register(req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmailTaken):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, models.ErrInvalidCredentials):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.Logger.Error("AUTH", fmt.Sprintf("Register: %v", err))
			http.Error(w, "Error registering user", http.StatusInternalServerError)
		}
		return
	}

	h.Logger.LogSecurity("REGISTER", fmt.Sprintf("new %s account %s", resp.User.Role, resp.User.Email))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.Service.Login(req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			h.Logger.LogSecurity("LOGIN_FAILED", req.Email)
			http.Error(w, "invalid email or password", http.StatusUnauthorized)
			return
		}
		h.Logger.Error("AUTH", fmt.Sprintf("Login: %v", err))
		http.Error(w, "Error logging in", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
