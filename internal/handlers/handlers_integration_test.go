package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"kelime/internal/handlers"
	"kelime/internal/middleware"
	"kelime/internal/models"
	"kelime/internal/repositories"
	"kelime/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter int64

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers/services, mounted exactly like the real server.
func setupApp() (*fiber.App, *services.AuthService, error) {
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// A named in-memory database per setup keeps tests isolated while the
	// shared cache keeps the schema alive across pooled connections.
	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}
	// SQLite takes table locks under shared cache; a single pooled
	// connection serializes writers without touching request concurrency.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access database pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Word{}, &models.CategoryAssignment{}); err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	wordRepo := repositories.NewGORMWordRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)

	authService := services.NewAuthService(userRepo, jwtSecret, time.Hour, nil)
	wordService := services.NewWordService(wordRepo)
	categoryService := services.NewCategoryService(categoryRepo, wordRepo, userRepo, nil)
	adminService := services.NewAdminService(userRepo, categoryRepo)

	authHandler := handlers.NewAuthHandler(authService)
	wordHandler := handlers.NewWordHandler(wordService, categoryService)
	profileHandler := handlers.NewProfileHandler(authService, categoryService)
	adminHandler := handlers.NewAdminHandler(adminService)

	app := fiber.New()

	authRequired := middleware.AuthRequired(authService)
	adminRequired := middleware.AdminRequired()

	authHandler.RegisterRoutes(app)
	authHandler.RegisterAdminRoutes(app.Group("/admin"))
	adminHandler.RegisterRoutes(app.Group("/admin/users", authRequired, adminRequired))
	wordHandler.RegisterRoutes(app.Group("/words", authRequired), adminRequired)
	profileHandler.RegisterRoutes(app.Group("/user", authRequired))
	profileHandler.RegisterStreakRoutes(app.Group("/streak", authRequired))

	return app, authService, nil
}

func TestMain(m *testing.M) {
	log.SetOutput(os.Stdout)
	code := m.Run()
	os.Exit(code)
}

// doJSON performs a request against the app with an optional bearer token
// and JSON body, decoding the JSON response into out when non-nil.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}, out interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)
	if out != nil {
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	resp.Body.Close()
	return resp
}

// registerAndLogin creates an account on the requested surface and returns
// a fresh token plus the user id.
func registerAndLogin(t *testing.T, app *fiber.App, username, email, password string, admin bool) (string, string) {
	t.Helper()

	registerPath, loginPath := "/register", "/login"
	if admin {
		registerPath, loginPath = "/admin/register", "/admin/login"
	}

	resp := doJSON(t, app, http.MethodPost, registerPath, "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var loginResp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	resp = doJSON(t, app, http.MethodPost, loginPath, "", map[string]string{
		"loginIdentifier": username,
		"password":        password,
	}, &loginResp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, loginResp.Token)
	return loginResp.Token, loginResp.User.ID
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, authService, err := setupApp()
	assert.NoError(t, err)

	// Registration never echoes the password back
	var registerResp map[string]interface{}
	resp := doJSON(t, app, http.MethodPost, "/register", "", map[string]string{
		"username": "ana",
		"email":    "ana@x.com",
		"password": "Secret1!",
	}, &registerResp)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "User registered successfully", registerResp["message"])
	userBody, _ := json.Marshal(registerResp["user"])
	assert.NotContains(t, string(userBody), "Secret1!")
	assert.NotContains(t, string(userBody), "password")

	// Duplicate registration fails with Conflict and changes nothing
	resp = doJSON(t, app, http.MethodPost, "/register", "", map[string]string{
		"username": "ana",
		"email":    "other@x.com",
		"password": "Secret1!",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Login with the same credentials succeeds and the token identity matches
	var loginResp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	resp = doJSON(t, app, http.MethodPost, "/login", "", map[string]string{
		"loginIdentifier": "ana",
		"password":        "Secret1!",
	}, &loginResp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, loginResp.Token)

	claims, err := authService.ValidateToken(loginResp.Token)
	assert.NoError(t, err)
	assert.Equal(t, loginResp.User.ID, claims["user_id"])
	assert.Equal(t, false, claims["is_admin"])

	// Login by email works as well
	resp = doJSON(t, app, http.MethodPost, "/login", "", map[string]string{
		"loginIdentifier": "ana@x.com",
		"password":        "Secret1!",
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Wrong password
	resp = doJSON(t, app, http.MethodPost, "/login", "", map[string]string{
		"loginIdentifier": "ana",
		"password":        "nope",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Unknown identifier
	resp = doJSON(t, app, http.MethodPost, "/login", "", map[string]string{
		"loginIdentifier": "nobody",
		"password":        "Secret1!",
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// A normal account is rejected on the admin login surface
	resp = doJSON(t, app, http.MethodPost, "/admin/login", "", map[string]string{
		"loginIdentifier": "ana",
		"password":        "Secret1!",
	}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWordAndCategoryFlow(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	adminToken, _ := registerAndLogin(t, app, "boss", "boss@x.com", "AdminPass1", true)
	userToken, _ := registerAndLogin(t, app, "ana", "ana@x.com", "Secret1!", false)

	// Corpus mutation is admin-only
	resp := doJSON(t, app, http.MethodPost, "/words", userToken, map[string]string{
		"polish": "dom", "turkish": "ev",
	}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var word models.Word
	resp = doJSON(t, app, http.MethodPost, "/words", adminToken, map[string]string{
		"polish": "dom", "turkish": "ev",
	}, &word)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, word.ID)

	// The word list is visible to any authenticated user
	var words []models.Word
	resp = doJSON(t, app, http.MethodGet, "/words", userToken, nil, &words)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, words, 1)

	// File the word under the Learned category
	resp = doJSON(t, app, http.MethodPost, "/words/category", userToken, map[string]string{
		"wordId":       word.ID,
		"categoryName": models.CategoryLearned,
	}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var grouped map[string][]models.Word
	resp = doJSON(t, app, http.MethodGet, "/words/categories", userToken, nil, &grouped)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, grouped[models.CategoryLearned], 1)
	assert.Equal(t, word.ID, grouped[models.CategoryLearned][0].ID)
	assert.Empty(t, grouped[models.CategoryDifficult])
	assert.Empty(t, grouped[models.CategoryToReview])

	// Reassignment replaces, never appends
	resp = doJSON(t, app, http.MethodPost, "/words/category", userToken, map[string]string{
		"wordId":       word.ID,
		"categoryName": models.CategoryDifficult,
	}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	grouped = nil
	doJSON(t, app, http.MethodGet, "/words/categories", userToken, nil, &grouped)
	assert.Empty(t, grouped[models.CategoryLearned])
	assert.Len(t, grouped[models.CategoryDifficult], 1)

	// An unknown category label is rejected
	resp = doJSON(t, app, http.MethodPost, "/words/category", userToken, map[string]string{
		"wordId":       word.ID,
		"categoryName": "Favorilerim",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The learned counter moved once per transition into Learned
	var profile models.User
	resp = doJSON(t, app, http.MethodGet, "/user/profile", userToken, nil, &profile)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, profile.LearnedWordsCount)

	// Marking learned again (after leaving Learned) counts once more,
	// repeating it does not
	resp = doJSON(t, app, http.MethodPost, "/words/learned", userToken, map[string]string{"wordId": word.ID}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doJSON(t, app, http.MethodPost, "/words/learned", userToken, map[string]string{"wordId": word.ID}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	doJSON(t, app, http.MethodGet, "/user/profile", userToken, nil, &profile)
	assert.Equal(t, 2, profile.LearnedWordsCount)
}

func TestConcurrentCategoryAssignment(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	adminToken, _ := registerAndLogin(t, app, "boss", "boss@x.com", "AdminPass1", true)
	userToken, _ := registerAndLogin(t, app, "ana", "ana@x.com", "Secret1!", false)

	var word models.Word
	resp := doJSON(t, app, http.MethodPost, "/words", adminToken, map[string]string{
		"polish": "okno", "turkish": "pencere",
	}, &word)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Two simultaneous assignments race on the same (user, word) pair; the
	// compound unique index guarantees a single surviving row whichever
	// write lands last.
	var wg sync.WaitGroup
	for _, category := range []string{models.CategoryDifficult, models.CategoryToReview} {
		wg.Add(1)
		go func(category string) {
			defer wg.Done()
			resp := doJSON(t, app, http.MethodPost, "/words/category", userToken, map[string]string{
				"wordId":       word.ID,
				"categoryName": category,
			}, nil)
			assert.Equal(t, http.StatusCreated, resp.StatusCode)
		}(category)
	}
	wg.Wait()

	var grouped map[string][]models.Word
	resp = doJSON(t, app, http.MethodGet, "/words/categories", userToken, nil, &grouped)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	total := 0
	for _, words := range grouped {
		total += len(words)
	}
	assert.Equal(t, 1, total)

	winner := grouped[models.CategoryDifficult]
	if len(winner) == 0 {
		winner = grouped[models.CategoryToReview]
	}
	assert.Len(t, winner, 1)
	assert.Equal(t, word.ID, winner[0].ID)
}

func TestWordUpdateAndDelete(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	adminToken, _ := registerAndLogin(t, app, "boss", "boss@x.com", "AdminPass1", true)
	userToken, _ := registerAndLogin(t, app, "ana", "ana@x.com", "Secret1!", false)

	var word models.Word
	doJSON(t, app, http.MethodPost, "/words", adminToken, map[string]string{
		"polish": "dom", "turkish": "ev",
	}, &word)

	// Corpus edits are admin-only
	resp := doJSON(t, app, http.MethodPut, "/words/"+word.ID, userToken, map[string]string{
		"turkish": "hane",
	}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var updated models.Word
	resp = doJSON(t, app, http.MethodPut, "/words/"+word.ID, adminToken, map[string]string{
		"turkish":    "hane",
		"difficulty": models.DifficultyHard,
	}, &updated)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dom", updated.Polish)
	assert.Equal(t, "hane", updated.Turkish)
	assert.Equal(t, models.DifficultyHard, updated.Difficulty)

	resp = doJSON(t, app, http.MethodPut, "/words/no-such-id", adminToken, map[string]string{
		"turkish": "x",
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/words/"+word.ID, adminToken, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var words []models.Word
	doJSON(t, app, http.MethodGet, "/words", adminToken, nil, &words)
	assert.Empty(t, words)

	resp = doJSON(t, app, http.MethodDelete, "/words/"+word.ID, adminToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRemoveFromCategory(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	adminToken, _ := registerAndLogin(t, app, "boss", "boss@x.com", "AdminPass1", true)
	userToken, _ := registerAndLogin(t, app, "ana", "ana@x.com", "Secret1!", false)

	var word models.Word
	doJSON(t, app, http.MethodPost, "/words", adminToken, map[string]string{
		"polish": "kot", "turkish": "kedi",
	}, &word)

	doJSON(t, app, http.MethodPost, "/words/category", userToken, map[string]string{
		"wordId":       word.ID,
		"categoryName": models.CategoryToReview,
	}, nil)

	// Removing an absent pair is a no-op and the listing is unchanged
	resp := doJSON(t, app, http.MethodDelete, "/words/category/no-such-word", userToken, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var grouped map[string][]models.Word
	doJSON(t, app, http.MethodGet, "/words/categories", userToken, nil, &grouped)
	assert.Len(t, grouped[models.CategoryToReview], 1)

	// Removing the real pair clears it
	resp = doJSON(t, app, http.MethodDelete, "/words/category/"+word.ID, userToken, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	grouped = nil
	doJSON(t, app, http.MethodGet, "/words/categories", userToken, nil, &grouped)
	assert.Empty(t, grouped)
}

func TestBulkImport(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	adminToken, _ := registerAndLogin(t, app, "boss", "boss@x.com", "AdminPass1", true)

	// Pre-existing word the batch collides with
	doJSON(t, app, http.MethodPost, "/words", adminToken, map[string]string{
		"polish": "dom", "turkish": "ev",
	}, nil)

	batch := make([]map[string]string, 0, 11)
	for i := 0; i < 10; i++ {
		batch = append(batch, map[string]string{
			"polish":  fmt.Sprintf("słowo-%d", i),
			"turkish": fmt.Sprintf("kelime-%d", i),
		})
	}
	batch = append(batch, map[string]string{"polish": "dom", "turkish": "ev"})

	var report struct {
		Inserted []models.Word                `json:"inserted"`
		Failed   []services.BulkImportFailure `json:"failed"`
	}
	resp := doJSON(t, app, http.MethodPost, "/words/bulk", adminToken, map[string]interface{}{
		"words": batch,
	}, &report)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, report.Inserted, 10)
	assert.Len(t, report.Failed, 1)
	assert.Equal(t, "dom", report.Failed[0].Polish)

	// The corpus holds the 10 new terms plus the pre-existing one
	var words []models.Word
	doJSON(t, app, http.MethodGet, "/words", adminToken, nil, &words)
	assert.Len(t, words, 11)
}

func TestStreakEndpoint(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	userToken, _ := registerAndLogin(t, app, "ana", "ana@x.com", "Secret1!", false)

	var streakResp struct {
		DailyStreak int `json:"dailyStreak"`
	}
	resp := doJSON(t, app, http.MethodPost, "/streak/update", userToken, nil, &streakResp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, streakResp.DailyStreak)

	// Twice within the same calendar day increments by exactly one in total
	resp = doJSON(t, app, http.MethodPost, "/streak/update", userToken, nil, &streakResp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, streakResp.DailyStreak)
}

func TestProfileUpdate(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	userToken, _ := registerAndLogin(t, app, "ana", "ana@x.com", "Secret1!", false)
	registerAndLogin(t, app, "bob", "bob@x.com", "Secret1!", false)

	// Wrong current password fails and leaves everything unchanged
	resp := doJSON(t, app, http.MethodPut, "/user/profile", userToken, map[string]string{
		"currentPassword": "wrong",
		"newEmail":        "ana2@x.com",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/login", "", map[string]string{
		"loginIdentifier": "ana@x.com",
		"password":        "Secret1!",
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Changing to a taken email fails with Conflict
	resp = doJSON(t, app, http.MethodPut, "/user/profile", userToken, map[string]string{
		"currentPassword": "Secret1!",
		"newEmail":        "bob@x.com",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// A valid update applies only the supplied fields
	resp = doJSON(t, app, http.MethodPut, "/user/profile", userToken, map[string]string{
		"currentPassword": "Secret1!",
		"newEmail":        "ana2@x.com",
		"newPassword":     "NewSecret2!",
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/login", "", map[string]string{
		"loginIdentifier": "ana2@x.com",
		"password":        "NewSecret2!",
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var profile models.User
	resp = doJSON(t, app, http.MethodGet, "/user/profile", userToken, nil, &profile)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ana", profile.Username)
	assert.Equal(t, "ana2@x.com", profile.Email)
}

func TestAdminUserManagement(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	adminToken, _ := registerAndLogin(t, app, "boss", "boss@x.com", "AdminPass1", true)
	userToken, userID := registerAndLogin(t, app, "ana", "ana@x.com", "Secret1!", false)

	// A valid non-admin token is rejected before the handler
	resp := doJSON(t, app, http.MethodGet, "/admin/users", userToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Listing excludes password hashes
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rawResp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rawResp.StatusCode)
	var buf bytes.Buffer
	_, err = buf.ReadFrom(rawResp.Body)
	assert.NoError(t, err)
	rawResp.Body.Close()
	assert.NotContains(t, buf.String(), "password")
	assert.NotContains(t, buf.String(), "$2a$") // bcrypt hash prefix

	var users []models.User
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &users))
	assert.Len(t, users, 2)

	// Update an arbitrary user record
	var updateResp struct {
		User models.User `json:"user"`
	}
	resp = doJSON(t, app, http.MethodPut, "/admin/users/"+userID, adminToken, map[string]interface{}{
		"dailyStreak": 7,
	}, &updateResp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 7, updateResp.User.DailyStreak)

	// Delete the user; the record is gone afterwards
	resp = doJSON(t, app, http.MethodDelete, "/admin/users/"+userID, adminToken, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/admin/users/"+userID, adminToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEndpointsWithoutAuth(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	resp := doJSON(t, app, http.MethodGet, "/words", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/user/profile", "not.a.token", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/admin/users", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
