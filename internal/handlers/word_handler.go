package handlers

import (
	"log"

	"kelime/internal/middleware"
	"kelime/internal/models"
	"kelime/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// WordHandler handles HTTP requests for the word corpus and the caller's
// category assignments.
type WordHandler struct {
	wordService     *services.WordService
	categoryService *services.CategoryService
	validate        *validator.Validate
}

// NewWordHandler creates a new WordHandler.
func NewWordHandler(wordService *services.WordService, categoryService *services.CategoryService) *WordHandler {
	return &WordHandler{
		wordService:     wordService,
		categoryService: categoryService,
		validate:        validator.New(),
	}
}

// RegisterRoutes registers the word routes on an authenticated group.
// adminOnly additionally gates the corpus-mutating endpoints.
func (h *WordHandler) RegisterRoutes(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("/", h.HandleGetWords)
	router.Post("/", adminOnly, h.HandleCreateWord)
	router.Post("/bulk", adminOnly, h.HandleBulkImport)
	router.Post("/category", h.HandleAssignCategory)
	router.Delete("/category/:wordId", h.HandleRemoveFromCategory)
	router.Get("/categories", h.HandleListCategories)
	router.Post("/learned", h.HandleMarkLearned)
	router.Put("/:id", adminOnly, h.HandleUpdateWord)
	router.Delete("/:id", adminOnly, h.HandleDeleteWord)
}

// HandleGetWords returns the whole corpus, newest first.
func (h *WordHandler) HandleGetWords(c *fiber.Ctx) error {
	words, err := h.wordService.GetAllWords()
	if err != nil {
		log.Printf("Error getting words: %v", err)
		return respondError(c, err, "Could not retrieve words")
	}
	return c.JSON(words)
}

// HandleCreateWord adds one word to the corpus.
func (h *WordHandler) HandleCreateWord(c *fiber.Ctx) error {
	var word models.Word
	if err := c.BodyParser(&word); err != nil {
		log.Printf("Error parsing word request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(word); err != nil {
		return respondValidationError(c, err)
	}

	if err := h.wordService.CreateWord(&word); err != nil {
		log.Printf("Error creating word %q: %v", word.Polish, err)
		return respondError(c, err, "Could not create word")
	}
	return c.Status(fiber.StatusCreated).JSON(word)
}

// HandleUpdateWord applies the supplied fields to an existing corpus entry.
func (h *WordHandler) HandleUpdateWord(c *fiber.Ctx) error {
	var req services.UpdateWordRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing word update request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	word, err := h.wordService.UpdateWord(c.Params("id"), req)
	if err != nil {
		log.Printf("Error updating word %s: %v", c.Params("id"), err)
		return respondError(c, err, "Could not update word")
	}
	return c.JSON(word)
}

// HandleDeleteWord removes a word from the corpus.
func (h *WordHandler) HandleDeleteWord(c *fiber.Ctx) error {
	if err := h.wordService.DeleteWord(c.Params("id")); err != nil {
		log.Printf("Error deleting word %s: %v", c.Params("id"), err)
		return respondError(c, err, "Could not delete word")
	}
	return c.JSON(fiber.Map{
		"message": "Word deleted",
	})
}

// BulkImportRequest represents the request body for bulk word import.
type BulkImportRequest struct {
	Words []models.Word `json:"words" validate:"required,min=1,dive"`
}

// HandleBulkImport inserts many words at once, tolerating per-item
// failures. The response reports which records failed and why.
func (h *WordHandler) HandleBulkImport(c *fiber.Ctx) error {
	var req BulkImportRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing bulk import request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	report := h.wordService.BulkImport(req.Words)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Bulk import finished",
		"inserted": report.Inserted,
		"failed":   report.Failed,
	})
}

// AssignCategoryRequest represents the request body for filing a word under
// a category. The user is always the authenticated caller.
type AssignCategoryRequest struct {
	WordID       string `json:"wordId" validate:"required"`
	CategoryName string `json:"categoryName" validate:"required"`
}

// HandleAssignCategory assigns or replaces the caller's category for a word.
func (h *WordHandler) HandleAssignCategory(c *fiber.Ctx) error {
	var req AssignCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing category request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	assignment, err := h.categoryService.AssignCategory(middleware.UserID(c), req.WordID, req.CategoryName)
	if err != nil {
		log.Printf("Error assigning category for word %s: %v", req.WordID, err)
		return respondError(c, err, "Could not assign category")
	}
	return c.Status(fiber.StatusCreated).JSON(assignment)
}

// HandleRemoveFromCategory removes the caller's assignment for a word.
// Removing an absent assignment succeeds silently.
func (h *WordHandler) HandleRemoveFromCategory(c *fiber.Ctx) error {
	wordID := c.Params("wordId")
	if err := h.categoryService.RemoveFromCategory(middleware.UserID(c), wordID); err != nil {
		log.Printf("Error removing category for word %s: %v", wordID, err)
		return respondError(c, err, "Could not remove category")
	}
	return c.JSON(fiber.Map{
		"message": "Category removed",
	})
}

// HandleListCategories returns the caller's words grouped by category.
func (h *WordHandler) HandleListCategories(c *fiber.Ctx) error {
	grouped, err := h.categoryService.ListByCategory(middleware.UserID(c))
	if err != nil {
		log.Printf("Error listing categories: %v", err)
		return respondError(c, err, "Could not retrieve categories")
	}
	return c.JSON(grouped)
}

// MarkLearnedRequest represents the request body for marking a word learned.
type MarkLearnedRequest struct {
	WordID string `json:"wordId" validate:"required"`
}

// HandleMarkLearned files a word under the Learned category for the caller
// and bumps the learned-word counter on first entry.
func (h *WordHandler) HandleMarkLearned(c *fiber.Ctx) error {
	var req MarkLearnedRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing learned request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	assignment, err := h.categoryService.MarkLearned(middleware.UserID(c), req.WordID)
	if err != nil {
		log.Printf("Error marking word %s learned: %v", req.WordID, err)
		return respondError(c, err, "Could not mark word learned")
	}
	return c.Status(fiber.StatusCreated).JSON(assignment)
}
