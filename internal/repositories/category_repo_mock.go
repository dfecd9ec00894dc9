package repositories

import (
	"fmt"
	"sort"
	"sync"

	"kelime/internal/models"

	"github.com/google/uuid"
)

// MockCategoryRepository is an in-memory implementation of CategoryRepository.
// Assignments are keyed by (user, word), which gives the same at-most-one
// guarantee as the database unique index.
type MockCategoryRepository struct {
	assignments map[string]models.CategoryAssignment
	mu          sync.RWMutex
}

// NewMockCategoryRepository creates a new instance of MockCategoryRepository.
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		assignments: make(map[string]models.CategoryAssignment),
	}
}

func pairKey(userID, wordID string) string {
	return userID + "/" + wordID
}

// GetByUserAndWord returns the assignment for a (user, word) pair.
func (r *MockCategoryRepository) GetByUserAndWord(userID, wordID string) (*models.CategoryAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assignment, ok := r.assignments[pairKey(userID, wordID)]
	if !ok {
		return nil, fmt.Errorf("assignment for user %s word %s: %w", userID, wordID, ErrNotFound)
	}
	return &assignment, nil
}

// Upsert creates or replaces the assignment for the pair.
func (r *MockCategoryRepository) Upsert(assignment *models.CategoryAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(assignment.UserID, assignment.WordID)
	if existing, ok := r.assignments[key]; ok {
		assignment.ID = existing.ID
	} else if assignment.ID == "" {
		assignment.ID = uuid.New().String()
	}
	r.assignments[key] = *assignment
	return nil
}

// Delete removes the assignment for the pair; absent pairs are a no-op.
func (r *MockCategoryRepository) Delete(userID, wordID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.assignments, pairKey(userID, wordID))
	return nil
}

// ListByUser returns every assignment owned by the user, oldest first.
func (r *MockCategoryRepository) ListByUser(userID string) ([]models.CategoryAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var assignments []models.CategoryAssignment
	for _, a := range r.assignments {
		if a.UserID == userID {
			assignments = append(assignments, a)
		}
	}
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].AddedAt.Before(assignments[j].AddedAt)
	})
	return assignments, nil
}

// DeleteByUser removes every assignment owned by the user.
func (r *MockCategoryRepository) DeleteByUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, a := range r.assignments {
		if a.UserID == userID {
			delete(r.assignments, key)
		}
	}
	return nil
}
