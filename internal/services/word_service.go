package services

import (
	"errors"
	"fmt"

	"kelime/internal/models"
	"kelime/internal/repositories"
)

// WordService handles business logic for the vocabulary corpus.
type WordService struct {
	repo repositories.WordRepository
}

// NewWordService creates a new WordService.
func NewWordService(repo repositories.WordRepository) *WordService {
	return &WordService{
		repo: repo,
	}
}

// GetAllWords retrieves the corpus, newest entries first.
func (s *WordService) GetAllWords() ([]models.Word, error) {
	return s.repo.GetAll()
}

// GetWordByID retrieves a single word by its ID.
func (s *WordService) GetWordByID(id string) (*models.Word, error) {
	word, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("word %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return word, nil
}

// CreateWord adds one word to the corpus.
func (s *WordService) CreateWord(word *models.Word) error {
	if word.Difficulty == "" {
		word.Difficulty = models.DifficultyMedium
	}
	if err := s.repo.Create(word); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return fmt.Errorf("word %q already exists: %w", word.Polish, ErrConflict)
		}
		return fmt.Errorf("failed to create word: %w", err)
	}
	return nil
}

// UpdateWordRequest carries the fields an admin may change on a word. Nil
// fields are left untouched.
type UpdateWordRequest struct {
	Polish      *string `json:"polish" validate:"omitempty,min=1,max=255"`
	Turkish     *string `json:"turkish" validate:"omitempty,min=1,max=255"`
	Phonetic    *string `json:"phonetic" validate:"omitempty,max=255"`
	Example     *string `json:"example" validate:"omitempty,max=500"`
	Translation *string `json:"translation" validate:"omitempty,max=500"`
	Difficulty  *string `json:"difficulty" validate:"omitempty,oneof=Kolay Orta Zor"`
}

// UpdateWord applies the supplied fields to an existing word. A changed
// source term goes through the same uniqueness check as creation.
func (s *WordService) UpdateWord(id string, req UpdateWordRequest) (*models.Word, error) {
	word, err := s.GetWordByID(id)
	if err != nil {
		return nil, err
	}

	if req.Polish != nil {
		word.Polish = *req.Polish
	}
	if req.Turkish != nil {
		word.Turkish = *req.Turkish
	}
	if req.Phonetic != nil {
		word.Phonetic = *req.Phonetic
	}
	if req.Example != nil {
		word.Example = *req.Example
	}
	if req.Translation != nil {
		word.Translation = *req.Translation
	}
	if req.Difficulty != nil {
		word.Difficulty = *req.Difficulty
	}

	if err := s.repo.Update(word); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("word %q already exists: %w", word.Polish, ErrConflict)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("word %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return word, nil
}

// DeleteWord deletes a word by its ID.
func (s *WordService) DeleteWord(id string) error {
	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("word %s: %w", id, ErrNotFound)
		}
		return err
	}
	return nil
}

// BulkImportFailure describes one word that could not be imported.
type BulkImportFailure struct {
	Index  int    `json:"index"`
	Polish string `json:"polish"`
	Error  string `json:"error"`
}

// BulkImportReport is the per-item outcome of a bulk import.
type BulkImportReport struct {
	Inserted []models.Word       `json:"inserted"`
	Failed   []BulkImportFailure `json:"failed"`
}

// BulkImport inserts a pre-parsed collection of words. Each record succeeds
// or fails on its own; one duplicate term never aborts the rest of the
// batch.
func (s *WordService) BulkImport(words []models.Word) BulkImportReport {
	report := BulkImportReport{
		Inserted: make([]models.Word, 0, len(words)),
		Failed:   []BulkImportFailure{},
	}
	for i := range words {
		word := words[i]
		if err := s.CreateWord(&word); err != nil {
			report.Failed = append(report.Failed, BulkImportFailure{
				Index:  i,
				Polish: word.Polish,
				Error:  err.Error(),
			})
			continue
		}
		report.Inserted = append(report.Inserted, word)
	}
	return report
}
