package repositories

import "kelime/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	// GetByIdentifier resolves a login identifier that may be either a
	// username or an email address.
	GetByIdentifier(identifier string) (*models.User, error)
	GetAll() ([]models.User, error)
	Save(user *models.User) error
	Delete(id string) error
}
