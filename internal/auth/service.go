package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"campus-hub/internal/models"
	"campus-hub/internal/utils"
)

type UserDBLayer interface {
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	EmailExists(email string) (bool, error)
	CreateUser(user models.User) error
}

type Service struct {
	DB     UserDBLayer
	Issuer *TokenIssuer
}

func NewService(db UserDBLayer, issuer *TokenIssuer) *Service {
	return &Service{DB: db, Issuer: issuer}
}

type RegisterRequest struct {
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Password   string      `json:"password"`
	Role       models.Role `json:"role"`
	ClubOrDept string      `json:"clubOrDept"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func validRole(r models.Role) bool {
	switch r {
	case models.RoleStudent, models.RoleClubHead, models.RoleFaculty, models.RoleAdmin:
		return true
	}
	return false
}

func (s *Service) Register(req RegisterRequest) (*AuthResponse, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", models.ErrInvalidCredentials)
	}
	if req.Role == "" {
		req.Role = models.RoleStudent
	}
	if !validRole(req.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", models.ErrInvalidCredentials, req.Role)
	}

	taken, err := s.DB.EmailExists(req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, models.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           utils.NewID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		ClubOrDept:   req.ClubOrDept,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.DB.CreateUser(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.Issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *Service) Login(req LoginRequest) (*AuthResponse, error) {
	user, err := s.DB.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.Issuer.Issue(*user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResponse{Token: token, User: *user}, nil
}
