package services_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"kelime/internal/models"
	"kelime/internal/repositories"
	"kelime/internal/services"

	"github.com/stretchr/testify/assert"
)

// stubUserRepo is a stateful in-memory UserRepository so counter and streak
// mutations can be observed across calls.
type stubUserRepo struct {
	users map[string]models.User
	mu    sync.Mutex
}

func newStubUserRepo(users ...models.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *stubUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *stubUserRepo) GetByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	return &u, nil
}

func (r *stubUserRepo) GetByUsername(string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}

func (r *stubUserRepo) GetByEmail(string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}

func (r *stubUserRepo) GetByIdentifier(string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}

func (r *stubUserRepo) GetAll() ([]models.User, error) { return nil, nil }

func (r *stubUserRepo) Save(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *stubUserRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func setupCategoryService(t *testing.T) (*services.CategoryService, *stubUserRepo, models.Word) {
	t.Helper()

	userRepo := newStubUserRepo(models.User{ID: "user-1", Username: "ana", Email: "ana@x.com"})
	wordRepo := repositories.NewMockWordRepository()
	categoryRepo := repositories.NewMockCategoryRepository()

	word := models.Word{Polish: "dom", Turkish: "ev"}
	assert.NoError(t, wordRepo.Create(&word))

	service := services.NewCategoryService(categoryRepo, wordRepo, userRepo, nil)
	return service, userRepo, word
}

func TestCategoryService_AssignReplacesExisting(t *testing.T) {
	service, _, word := setupCategoryService(t)

	_, err := service.AssignCategory("user-1", word.ID, models.CategoryDifficult)
	assert.NoError(t, err)

	_, err = service.AssignCategory("user-1", word.ID, models.CategoryToReview)
	assert.NoError(t, err)

	grouped, err := service.ListByCategory("user-1")
	assert.NoError(t, err)
	assert.Len(t, grouped[models.CategoryToReview], 1)
	assert.Empty(t, grouped[models.CategoryDifficult])
	assert.Equal(t, word.ID, grouped[models.CategoryToReview][0].ID)
}

func TestCategoryService_AssignRejectsUnknownCategory(t *testing.T) {
	service, _, word := setupCategoryService(t)

	_, err := service.AssignCategory("user-1", word.ID, "Favorilerim")
	assert.ErrorIs(t, err, services.ErrInvalidArgument)
}

func TestCategoryService_AssignUnknownWord(t *testing.T) {
	service, _, _ := setupCategoryService(t)

	_, err := service.AssignCategory("user-1", "no-such-word", models.CategoryLearned)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCategoryService_LearnedCounterPerTransition(t *testing.T) {
	service, userRepo, word := setupCategoryService(t)

	// First entry into Learned counts
	_, err := service.AssignCategory("user-1", word.ID, models.CategoryLearned)
	assert.NoError(t, err)
	user, _ := userRepo.GetByID("user-1")
	assert.Equal(t, 1, user.LearnedWordsCount)
	assert.NotNil(t, user.LastActivityAt)

	// Repeating the same assignment does not count again
	_, err = service.AssignCategory("user-1", word.ID, models.CategoryLearned)
	assert.NoError(t, err)
	user, _ = userRepo.GetByID("user-1")
	assert.Equal(t, 1, user.LearnedWordsCount)

	// Leaving and re-entering Learned counts once more
	_, err = service.AssignCategory("user-1", word.ID, models.CategoryDifficult)
	assert.NoError(t, err)
	_, err = service.AssignCategory("user-1", word.ID, models.CategoryLearned)
	assert.NoError(t, err)
	user, _ = userRepo.GetByID("user-1")
	assert.Equal(t, 2, user.LearnedWordsCount)
}

func TestCategoryService_MarkLearned(t *testing.T) {
	service, userRepo, word := setupCategoryService(t)

	assignment, err := service.MarkLearned("user-1", word.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.CategoryLearned, assignment.CategoryName)

	user, _ := userRepo.GetByID("user-1")
	assert.Equal(t, 1, user.LearnedWordsCount)
}

func TestCategoryService_RemoveAbsentIsNoop(t *testing.T) {
	service, _, word := setupCategoryService(t)

	_, err := service.AssignCategory("user-1", word.ID, models.CategoryToReview)
	assert.NoError(t, err)
	before, err := service.ListByCategory("user-1")
	assert.NoError(t, err)

	// Removing a pair that was never assigned must not error or change state
	assert.NoError(t, service.RemoveFromCategory("user-1", "no-such-word"))

	after, err := service.ListByCategory("user-1")
	assert.NoError(t, err)
	assert.Equal(t, before, after)

	// Removing the real pair empties the listing
	assert.NoError(t, service.RemoveFromCategory("user-1", word.ID))
	after, err = service.ListByCategory("user-1")
	assert.NoError(t, err)
	assert.Empty(t, after)
}

func TestCategoryService_UpdateStreak(t *testing.T) {
	service, userRepo, _ := setupCategoryService(t)

	// First ever activity starts the streak
	user, err := service.UpdateStreak("user-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, user.DailyStreak)

	// Second call on the same calendar day is a no-op
	user, err = service.UpdateStreak("user-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, user.DailyStreak)

	// Activity on the day after the last one extends the streak
	stored, _ := userRepo.GetByID("user-1")
	yesterday := time.Now().AddDate(0, 0, -1)
	stored.LastActivityAt = &yesterday
	assert.NoError(t, userRepo.Save(stored))

	user, err = service.UpdateStreak("user-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, user.DailyStreak)

	// A gap restarts the streak at 1
	stored, _ = userRepo.GetByID("user-1")
	lastWeek := time.Now().AddDate(0, 0, -7)
	stored.LastActivityAt = &lastWeek
	assert.NoError(t, userRepo.Save(stored))

	user, err = service.UpdateStreak("user-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, user.DailyStreak)
}

func TestCategoryService_UpdateStreakUnknownUser(t *testing.T) {
	service, _, _ := setupCategoryService(t)

	_, err := service.UpdateStreak("ghost")
	assert.ErrorIs(t, err, services.ErrNotFound)
}
