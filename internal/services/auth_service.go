package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"kelime/internal/models"
	"kelime/internal/repositories"
	"kelime/pkg/rabbitmq"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	events    ActivityPublisher
}

// NewAuthService creates a new AuthService. events may be nil; registration
// events are then skipped.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, events ActivityPublisher) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		events:    events,
	}
}

// RegisterUser registers a new user with zeroed counters, hashing the
// password before it is stored. isAdmin is true only on the admin
// registration surface.
func (s *AuthService) RegisterUser(username, email, password string, isAdmin bool) (*models.User, error) {
	if existing, err := s.userRepo.GetByUsername(username); err == nil && existing != nil {
		return nil, fmt.Errorf("username %q already taken: %w", username, ErrConflict)
	}
	if existing, err := s.userRepo.GetByEmail(email); err == nil && existing != nil {
		return nil, fmt.Errorf("email %q already registered: %w", email, ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		IsAdmin:  isAdmin,
	}
	if err := s.userRepo.Create(user); err != nil {
		// Two registrations can race past the lookups above; the unique
		// index is the authority.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("username or email already in use: %w", ErrConflict)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.publish(rabbitmq.ActivityEvent{
		Type:   rabbitmq.EventUserRegistered,
		UserID: user.ID,
	})

	return user, nil
}

// Login authenticates a user by username or email and returns a signed
// token plus the user record. requireAdmin selects the admin-only login
// surface; the normal surface rejects admin accounts and vice versa.
func (s *AuthService) Login(identifier, password string, requireAdmin bool) (string, *models.User, error) {
	user, err := s.userRepo.GetByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, fmt.Errorf("no account for %q: %w", identifier, ErrNotFound)
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.IsAdmin != requireAdmin {
		return "", nil, fmt.Errorf("account role not allowed on this login surface: %w", ErrForbidden)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("password mismatch: %w", ErrInvalidCredentials)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
		"iat":      time.Now().Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, user, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// GetProfile returns the user's own record.
func (s *AuthService) GetProfile(userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return user, nil
}

// UpdateProfileRequest carries the optional profile mutations. Empty fields
// are left untouched.
type UpdateProfileRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"omitempty,min=6"`
	NewEmail        string `json:"newEmail" validate:"omitempty,email"`
	NewImage        string `json:"newImage" validate:"omitempty,max=512"`
}

// UpdateProfile re-verifies the current password and applies the supplied
// optional fields. Nothing is mutated when the verification fails.
func (s *AuthService) UpdateProfile(userID string, req UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return nil, fmt.Errorf("current password mismatch: %w", ErrInvalidCredentials)
	}

	if req.NewEmail != "" && req.NewEmail != user.Email {
		if existing, err := s.userRepo.GetByEmail(req.NewEmail); err == nil && existing != nil {
			return nil, fmt.Errorf("email %q already in use: %w", req.NewEmail, ErrConflict)
		}
		user.Email = req.NewEmail
	}
	if req.NewPassword != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash new password: %w", err)
		}
		user.Password = string(hashed)
	}
	if req.NewImage != "" {
		user.ProfileImage = req.NewImage
	}

	if err := s.userRepo.Save(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("email %q already in use: %w", req.NewEmail, ErrConflict)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) publish(event rabbitmq.ActivityEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishActivityEvent(event); err != nil {
		log.Printf("Warning: failed to publish %s event for user %s: %v", event.Type, event.UserID, err)
	}
}
