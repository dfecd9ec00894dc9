package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"kelime/internal/models"
	"kelime/internal/repositories"
	"kelime/pkg/rabbitmq"
)

// CategoryService maintains the at-most-one category membership per
// (user, word) pair, the learned-word counter and the daily streak.
type CategoryService struct {
	categoryRepo repositories.CategoryRepository
	wordRepo     repositories.WordRepository
	userRepo     repositories.UserRepository
	events       ActivityPublisher
}

// NewCategoryService creates a new CategoryService. events may be nil.
func NewCategoryService(categoryRepo repositories.CategoryRepository, wordRepo repositories.WordRepository, userRepo repositories.UserRepository, events ActivityPublisher) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		wordRepo:     wordRepo,
		userRepo:     userRepo,
		events:       events,
	}
}

// AssignCategory files the word under categoryName for the user, replacing
// any previous assignment for the same pair. Entering the Learned category
// increments the user's learned-word counter once per transition: repeating
// an assignment that is already Learned does not count again.
func (s *CategoryService) AssignCategory(userID, wordID, categoryName string) (*models.CategoryAssignment, error) {
	if !models.IsValidCategory(categoryName) {
		return nil, fmt.Errorf("unknown category %q: %w", categoryName, ErrInvalidArgument)
	}

	if _, err := s.wordRepo.GetByID(wordID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("word %s: %w", wordID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up word: %w", err)
	}

	previous, err := s.categoryRepo.GetByUserAndWord(userID, wordID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up existing assignment: %w", err)
	}

	assignment := &models.CategoryAssignment{
		UserID:       userID,
		WordID:       wordID,
		CategoryName: categoryName,
		AddedAt:      time.Now(),
	}
	if err := s.categoryRepo.Upsert(assignment); err != nil {
		return nil, fmt.Errorf("failed to store assignment: %w", err)
	}

	if categoryName == models.CategoryLearned && (previous == nil || previous.CategoryName != models.CategoryLearned) {
		if err := s.recordLearned(userID, wordID); err != nil {
			return nil, err
		}
	}

	return assignment, nil
}

// MarkLearned files the word under the Learned category for the user.
// Identity always comes from the verified token, never from the body.
func (s *CategoryService) MarkLearned(userID, wordID string) (*models.CategoryAssignment, error) {
	return s.AssignCategory(userID, wordID, models.CategoryLearned)
}

// RemoveFromCategory deletes the user's assignment for the word. Removing
// an absent pair is a no-op, not an error.
func (s *CategoryService) RemoveFromCategory(userID, wordID string) error {
	if err := s.categoryRepo.Delete(userID, wordID); err != nil {
		return fmt.Errorf("failed to remove assignment: %w", err)
	}
	return nil
}

// ListByCategory returns the user's words grouped by category label, in
// assignment order. Word data is joined at read time.
func (s *CategoryService) ListByCategory(userID string) (map[string][]models.Word, error) {
	assignments, err := s.categoryRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.WordID)
	}
	words, err := s.wordRepo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load words: %w", err)
	}
	byID := make(map[string]models.Word, len(words))
	for _, w := range words {
		byID[w.ID] = w
	}

	grouped := make(map[string][]models.Word)
	for _, a := range assignments {
		word, ok := byID[a.WordID]
		if !ok {
			// Assignment outlived its word; skip rather than fail the read.
			continue
		}
		grouped[a.CategoryName] = append(grouped[a.CategoryName], word)
	}
	return grouped, nil
}

// UpdateStreak bumps the user's daily streak at most once per calendar day.
// Activity on the day after the last recorded one extends the streak;
// activity after a gap restarts it at 1; a second call on the same day is
// a no-op.
func (s *CategoryService) UpdateStreak(userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	now := time.Now()
	switch {
	case user.LastActivityAt == nil:
		user.DailyStreak = 1
	default:
		days := calendarDaysBetween(*user.LastActivityAt, now)
		if days == 0 {
			return user, nil
		}
		if days == 1 {
			user.DailyStreak++
		} else {
			user.DailyStreak = 1
		}
	}
	user.LastActivityAt = &now

	if err := s.userRepo.Save(user); err != nil {
		return nil, fmt.Errorf("failed to update streak: %w", err)
	}
	return user, nil
}

// recordLearned bumps the learned counter and last-activity stamp after a
// transition into the Learned category.
func (s *CategoryService) recordLearned(userID, wordID string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	now := time.Now()
	user.LearnedWordsCount++
	user.LastActivityAt = &now
	if err := s.userRepo.Save(user); err != nil {
		return fmt.Errorf("failed to update learned count: %w", err)
	}

	s.publish(rabbitmq.ActivityEvent{
		Type:     rabbitmq.EventWordLearned,
		UserID:   userID,
		WordID:   wordID,
		Category: models.CategoryLearned,
	})
	return nil
}

func (s *CategoryService) publish(event rabbitmq.ActivityEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishActivityEvent(event); err != nil {
		log.Printf("Warning: failed to publish %s event for user %s: %v", event.Type, event.UserID, err)
	}
}

// calendarDaysBetween returns how many calendar dates lie between earlier
// and later in later's location, ignoring the time of day. The local dates
// are re-anchored in UTC before subtracting so a daylight-saving shift never
// shortens or stretches a day.
func calendarDaysBetween(earlier, later time.Time) int {
	loc := later.Location()
	earlier = earlier.In(loc)
	a := time.Date(earlier.Year(), earlier.Month(), earlier.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(later.Year(), later.Month(), later.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
