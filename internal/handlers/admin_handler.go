package handlers

import (
	"log"

	"kelime/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles privileged user CRUD. The routes must be mounted
// behind both the auth and admin middleware.
type AdminHandler struct {
	adminService *services.AdminService
	validate     *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the admin user-management routes.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleListUsers)
	router.Put("/:id", h.HandleUpdateUser)
	router.Delete("/:id", h.HandleDeleteUser)
}

// HandleListUsers returns every user, password hashes excluded.
func (h *AdminHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.adminService.ListUsers()
	if err != nil {
		log.Printf("Error listing users: %v", err)
		return respondError(c, err, "Could not retrieve users")
	}
	return c.JSON(users)
}

// HandleUpdateUser applies the supplied fields to a user record.
func (h *AdminHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var req services.AdminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing admin update request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	user, err := h.adminService.UpdateUser(c.Params("id"), req)
	if err != nil {
		log.Printf("Error updating user %s: %v", c.Params("id"), err)
		return respondError(c, err, "Could not update user")
	}
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    user.Sanitized(),
	})
}

// HandleDeleteUser removes a user record and its category assignments.
func (h *AdminHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.adminService.DeleteUser(c.Params("id")); err != nil {
		log.Printf("Error deleting user %s: %v", c.Params("id"), err)
		return respondError(c, err, "Could not delete user")
	}
	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
	})
}
