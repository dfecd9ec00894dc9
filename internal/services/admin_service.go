package services

import (
	"errors"
	"fmt"

	"kelime/internal/models"
	"kelime/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// AdminService handles privileged CRUD over user records. Authorization is
// enforced upstream by the admin gate; this service assumes the caller has
// already been verified.
type AdminService struct {
	userRepo     repositories.UserRepository
	categoryRepo repositories.CategoryRepository
}

// NewAdminService creates a new AdminService.
func NewAdminService(userRepo repositories.UserRepository, categoryRepo repositories.CategoryRepository) *AdminService {
	return &AdminService{
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
	}
}

// ListUsers returns every user with password hashes stripped.
func (s *AdminService) ListUsers() ([]models.User, error) {
	users, err := s.userRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// AdminUpdateUserRequest carries the fields an admin may change. Nil fields
// are left untouched.
type AdminUpdateUserRequest struct {
	Username          *string `json:"username" validate:"omitempty,min=3,max=100"`
	Email             *string `json:"email" validate:"omitempty,email"`
	Password          *string `json:"password" validate:"omitempty,min=6"`
	ProfileImage      *string `json:"profileImage" validate:"omitempty,max=512"`
	LearnedWordsCount *int    `json:"learnedWordsCount" validate:"omitempty,gte=0"`
	DailyStreak       *int    `json:"dailyStreak" validate:"omitempty,gte=0"`
	IsAdmin           *bool   `json:"isAdmin"`
}

// UpdateUser applies the supplied fields to the user record. A supplied
// password is hashed before storage; username and email changes go through
// the same uniqueness checks as registration.
func (s *AdminService) UpdateUser(id string, req AdminUpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if req.Username != nil && *req.Username != user.Username {
		if existing, err := s.userRepo.GetByUsername(*req.Username); err == nil && existing != nil {
			return nil, fmt.Errorf("username %q already taken: %w", *req.Username, ErrConflict)
		}
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		if existing, err := s.userRepo.GetByEmail(*req.Email); err == nil && existing != nil {
			return nil, fmt.Errorf("email %q already in use: %w", *req.Email, ErrConflict)
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hashed)
	}
	if req.ProfileImage != nil {
		user.ProfileImage = *req.ProfileImage
	}
	if req.LearnedWordsCount != nil {
		user.LearnedWordsCount = *req.LearnedWordsCount
	}
	if req.DailyStreak != nil {
		user.DailyStreak = *req.DailyStreak
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}

	if err := s.userRepo.Save(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("username or email already in use: %w", ErrConflict)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user record and every category assignment it owns,
// so no assignment is left orphaned.
func (s *AdminService) DeleteUser(id string) error {
	if _, err := s.userRepo.GetByID(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.categoryRepo.DeleteByUser(id); err != nil {
		return fmt.Errorf("failed to delete user's assignments: %w", err)
	}
	if err := s.userRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
