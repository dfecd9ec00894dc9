package repositories

import (
	"errors"
	"fmt"

	"kelime/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{
		db: db,
	}
}

// GetByUserAndWord retrieves the assignment for a (user, word) pair.
func (r *GORMCategoryRepository) GetByUserAndWord(userID, wordID string) (*models.CategoryAssignment, error) {
	var assignment models.CategoryAssignment
	err := r.db.First(&assignment, "user_id = ? AND word_id = ?", userID, wordID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("assignment for user %s word %s: %w", userID, wordID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &assignment, nil
}

// Upsert inserts the assignment, or replaces the category of the existing
// row when the (user_id, word_id) unique index already holds the pair. The
// conflict clause makes concurrent writers serialize on the index instead
// of leaving two rows.
func (r *GORMCategoryRepository) Upsert(assignment *models.CategoryAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.New().String()
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "word_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"category_name", "added_at"}),
	}).Create(assignment).Error
	if err != nil {
		return fmt.Errorf("failed to upsert assignment: %w", err)
	}
	return nil
}

// Delete removes the assignment for the pair; absent pairs are a no-op.
func (r *GORMCategoryRepository) Delete(userID, wordID string) error {
	err := r.db.Delete(&models.CategoryAssignment{}, "user_id = ? AND word_id = ?", userID, wordID).Error
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return nil
}

// ListByUser retrieves every assignment owned by the user, oldest first.
func (r *GORMCategoryRepository) ListByUser(userID string) ([]models.CategoryAssignment, error) {
	var assignments []models.CategoryAssignment
	if err := r.db.Order("added_at").Find(&assignments, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments for user %s: %w", userID, err)
	}
	return assignments, nil
}

// DeleteByUser removes every assignment owned by the user.
func (r *GORMCategoryRepository) DeleteByUser(userID string) error {
	err := r.db.Delete(&models.CategoryAssignment{}, "user_id = ?", userID).Error
	if err != nil {
		return fmt.Errorf("failed to delete assignments for user %s: %w", userID, err)
	}
	return nil
}
