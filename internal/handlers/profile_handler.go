package handlers

import (
	"log"

	"kelime/internal/middleware"
	"kelime/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProfileHandler handles HTTP requests for the caller's own profile and
// daily streak.
type ProfileHandler struct {
	authService     *services.AuthService
	categoryService *services.CategoryService
	validate        *validator.Validate
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(authService *services.AuthService, categoryService *services.CategoryService) *ProfileHandler {
	return &ProfileHandler{
		authService:     authService,
		categoryService: categoryService,
		validate:        validator.New(),
	}
}

// RegisterRoutes registers the profile routes on an authenticated group.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/profile", h.HandleGetProfile)
	router.Put("/profile", h.HandleUpdateProfile)
}

// RegisterStreakRoutes registers the streak route on an authenticated group.
func (h *ProfileHandler) RegisterStreakRoutes(router fiber.Router) {
	router.Post("/update", h.HandleUpdateStreak)
}

// HandleGetProfile returns the caller's own profile, password excluded.
func (h *ProfileHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.authService.GetProfile(middleware.UserID(c))
	if err != nil {
		log.Printf("Error loading profile: %v", err)
		return respondError(c, err, "Could not load profile")
	}
	return c.JSON(user.Sanitized())
}

// HandleUpdateProfile updates the caller's email, password or image after
// re-verifying the current password.
func (h *ProfileHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req services.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing profile request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	user, err := h.authService.UpdateProfile(middleware.UserID(c), req)
	if err != nil {
		log.Printf("Error updating profile: %v", err)
		return respondError(c, err, "Could not update profile")
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    user.Sanitized(),
	})
}

// HandleUpdateStreak bumps the caller's daily streak at most once per
// calendar day.
func (h *ProfileHandler) HandleUpdateStreak(c *fiber.Ctx) error {
	user, err := h.categoryService.UpdateStreak(middleware.UserID(c))
	if err != nil {
		log.Printf("Error updating streak: %v", err)
		return respondError(c, err, "Could not update streak")
	}
	return c.JSON(fiber.Map{
		"message":     "Streak updated",
		"dailyStreak": user.DailyStreak,
		"user":        user.Sanitized(),
	})
}
