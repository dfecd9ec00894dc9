package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kelime/internal/handlers"
	"kelime/internal/middleware"
	"kelime/internal/models"
	"kelime/internal/repositories"
	"kelime/internal/services"
	"kelime/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=kelime port=5432 sslmode=disable")
	viper.SetDefault("JWT_SECRET", "change_me")
	viper.SetDefault("TOKEN_TTL", "24h")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("SEED_WORDS", false)
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")
	tokenTTL := viper.GetDuration("TOKEN_TTL")

	// --- Initialize Database (GORM) ---
	// TranslateError lets the repositories detect uniqueness violations
	// uniformly across dialects.
	db, err := gorm.Open(postgres.Open(viper.GetString("DATABASE_DSN")), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Word{}, &models.CategoryAssignment{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Initialize RabbitMQ Client (optional) ---
	// The API works without a broker; activity events are then skipped.
	var mqClient *rabbitmq.Client
	if url := viper.GetString("RABBITMQ_URL"); url != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: url})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, continuing without events: %v", err)
		} else {
			defer mqClient.Close()
		}
	}
	var events services.ActivityPublisher
	if mqClient != nil {
		events = mqClient
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	wordRepo := repositories.NewGORMWordRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)

	if viper.GetBool("SEED_WORDS") {
		seedWords(wordRepo)
	}

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, viper.GetString("JWT_SECRET"), tokenTTL, events)
	wordService := services.NewWordService(wordRepo)
	categoryService := services.NewCategoryService(categoryRepo, wordRepo, userRepo, events)
	adminService := services.NewAdminService(userRepo, categoryRepo)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	wordHandler := handlers.NewWordHandler(wordService, categoryService)
	profileHandler := handlers.NewProfileHandler(authService, categoryService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// --- Initialize Fiber App ---
	app := fiber.New()
	app.Use(logger.New()) // Request logger

	// --- API Routes ---
	authRequired := middleware.AuthRequired(authService)
	adminRequired := middleware.AdminRequired()

	authHandler.RegisterRoutes(app)
	authHandler.RegisterAdminRoutes(app.Group("/admin"))
	adminHandler.RegisterRoutes(app.Group("/admin/users", authRequired, adminRequired))
	wordHandler.RegisterRoutes(app.Group("/words", authRequired), adminRequired)
	profileHandler.RegisterRoutes(app.Group("/user", authRequired))
	profileHandler.RegisterStreakRoutes(app.Group("/streak", authRequired))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start RabbitMQ Consumer in a Goroutine ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for activity events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received activity event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeActivityEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// seedWords populates an empty word repository with a small starter corpus.
func seedWords(repo repositories.WordRepository) {
	existing, err := repo.GetAll()
	if err != nil || len(existing) > 0 {
		return
	}
	words := []models.Word{
		{Polish: "dom", Turkish: "ev", Phonetic: "dom", Example: "To jest mój dom.", Translation: "Bu benim evim.", Difficulty: models.DifficultyEasy},
		{Polish: "książka", Turkish: "kitap", Phonetic: "kshionshka", Example: "Czytam książkę.", Translation: "Kitap okuyorum.", Difficulty: models.DifficultyMedium},
		{Polish: "dziękuję", Turkish: "teşekkür ederim", Phonetic: "jenkuye", Difficulty: models.DifficultyMedium},
	}
	for i := range words {
		if err := repo.Create(&words[i]); err != nil {
			log.Printf("Error seeding word %q: %v", words[i].Polish, err)
		} else {
			log.Printf("Seeded word: %s (ID: %s)", words[i].Polish, words[i].ID)
		}
	}
}
