package repositories

import (
	"errors"
	"fmt"

	"kelime/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMWordRepository is a GORM implementation of WordRepository.
type GORMWordRepository struct {
	db *gorm.DB
}

// NewGORMWordRepository creates a new instance of GORMWordRepository.
func NewGORMWordRepository(db *gorm.DB) *GORMWordRepository {
	return &GORMWordRepository{
		db: db,
	}
}

// GetAll retrieves the whole corpus from the database, newest first.
func (r *GORMWordRepository) GetAll() ([]models.Word, error) {
	var words []models.Word
	if err := r.db.Order("created_at DESC").Find(&words).Error; err != nil {
		return nil, fmt.Errorf("failed to get all words: %w", err)
	}
	return words, nil
}

// GetByID retrieves a single word by its ID from the database.
func (r *GORMWordRepository) GetByID(id string) (*models.Word, error) {
	var word models.Word
	if err := r.db.First(&word, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("word with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get word by ID %s: %w", id, err)
	}
	return &word, nil
}

// GetByIDs retrieves the words whose IDs appear in ids. Missing IDs are
// silently skipped; callers that care compare lengths.
func (r *GORMWordRepository) GetByIDs(ids []string) ([]models.Word, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var words []models.Word
	if err := r.db.Where("id IN ?", ids).Find(&words).Error; err != nil {
		return nil, fmt.Errorf("failed to get words by IDs: %w", err)
	}
	return words, nil
}

// Create creates a new word in the database.
func (r *GORMWordRepository) Create(word *models.Word) error {
	if word.ID == "" {
		word.ID = uuid.New().String()
	}
	if err := r.db.Create(word).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("word %q: %w", word.Polish, ErrDuplicate)
		}
		return fmt.Errorf("failed to create word: %w", err)
	}
	return nil
}

// Update updates an existing word in the database.
func (r *GORMWordRepository) Update(word *models.Word) error {
	res := r.db.Save(word)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("word %q: %w", word.Polish, ErrDuplicate)
		}
		return fmt.Errorf("failed to update word: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("word with ID %s: %w", word.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a word by its ID from the database.
func (r *GORMWordRepository) Delete(id string) error {
	res := r.db.Delete(&models.Word{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete word: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("word with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
