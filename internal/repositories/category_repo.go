package repositories

import (
	"kelime/internal/models"
)

// CategoryRepository defines the interface for category assignment data
// access. A (user, word) pair holds at most one assignment; Upsert is the
// only write path for that pair.
type CategoryRepository interface {
	GetByUserAndWord(userID, wordID string) (*models.CategoryAssignment, error)
	// Upsert atomically creates the assignment or replaces the existing one
	// for the same (user, word) pair.
	Upsert(assignment *models.CategoryAssignment) error
	// Delete removes the assignment for the pair. Deleting an absent pair is
	// not an error.
	Delete(userID, wordID string) error
	ListByUser(userID string) ([]models.CategoryAssignment, error)
	// DeleteByUser removes every assignment owned by the user.
	DeleteByUser(userID string) error
}
