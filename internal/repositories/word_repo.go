package repositories

import (
	"kelime/internal/models"
)

// WordRepository defines the interface for word corpus data access.
type WordRepository interface {
	// GetAll returns the corpus, newest entries first.
	GetAll() ([]models.Word, error)
	GetByID(id string) (*models.Word, error)
	GetByIDs(ids []string) ([]models.Word, error)
	Create(word *models.Word) error
	Update(word *models.Word) error
	Delete(id string) error
}
