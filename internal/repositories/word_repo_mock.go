package repositories

import (
	"fmt"
	"sort"
	"sync"

	"kelime/internal/models"

	"github.com/google/uuid"
)

// MockWordRepository is an in-memory implementation of WordRepository.
type MockWordRepository struct {
	words map[string]models.Word
	seq   map[string]int // insertion order, for newest-first listing
	next  int
	mu    sync.RWMutex
}

// NewMockWordRepository creates a new instance of MockWordRepository.
func NewMockWordRepository() *MockWordRepository {
	return &MockWordRepository{
		words: make(map[string]models.Word),
		seq:   make(map[string]int),
	}
}

// GetAll returns all words, newest first.
func (r *MockWordRepository) GetAll() ([]models.Word, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wordList := make([]models.Word, 0, len(r.words))
	for _, w := range r.words {
		wordList = append(wordList, w)
	}
	sort.Slice(wordList, func(i, j int) bool {
		return r.seq[wordList[i].ID] > r.seq[wordList[j].ID]
	})
	return wordList, nil
}

// GetByID returns a word by its ID.
func (r *MockWordRepository) GetByID(id string) (*models.Word, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	word, ok := r.words[id]
	if !ok {
		return nil, fmt.Errorf("word with ID %s: %w", id, ErrNotFound)
	}
	return &word, nil
}

// GetByIDs returns the words whose IDs appear in ids.
func (r *MockWordRepository) GetByIDs(ids []string) ([]models.Word, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var words []models.Word
	for _, id := range ids {
		if w, ok := r.words[id]; ok {
			words = append(words, w)
		}
	}
	return words, nil
}

// Create stores a new word, enforcing the unique source-term constraint.
func (r *MockWordRepository) Create(word *models.Word) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.words {
		if existing.Polish == word.Polish {
			return fmt.Errorf("word %q: %w", word.Polish, ErrDuplicate)
		}
	}
	if word.ID == "" {
		word.ID = uuid.New().String()
	}
	if word.Difficulty == "" {
		word.Difficulty = models.DifficultyMedium
	}
	r.words[word.ID] = *word
	r.seq[word.ID] = r.next
	r.next++
	return nil
}

// Update replaces an existing word.
func (r *MockWordRepository) Update(word *models.Word) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.words[word.ID]; !ok {
		return fmt.Errorf("word with ID %s: %w", word.ID, ErrNotFound)
	}
	for id, existing := range r.words {
		if id != word.ID && existing.Polish == word.Polish {
			return fmt.Errorf("word %q: %w", word.Polish, ErrDuplicate)
		}
	}
	r.words[word.ID] = *word
	return nil
}

// Delete removes a word by its ID.
func (r *MockWordRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.words[id]; !ok {
		return fmt.Errorf("word with ID %s: %w", id, ErrNotFound)
	}
	delete(r.words, id)
	delete(r.seq, id)
	return nil
}
