package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/postpilot/postpilot/configs"
	"github.com/postpilot/postpilot/internal/api/handlers"
	"github.com/postpilot/postpilot/internal/api/middleware"
	job "github.com/postpilot/postpilot/internal/jobs"
	"github.com/postpilot/postpilot/internal/queue"
	"github.com/postpilot/postpilot/internal/repository"
	"github.com/postpilot/postpilot/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)
	productRepo := repository.NewProductRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)

	generator, err := service.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}

	authService := service.NewAuthService(cfg, userRepo)
	userService := service.NewUserService(userRepo)
	r2Service := service.NewR2Service(cfg)
	twitterService := service.NewTwitterService(cfg)
	schedulingService := service.NewSchedulingService(cfg, postRepo, credentialRepo, twitterService)
	connectionService := service.NewConnectionService(cfg, credentialRepo, twitterService)
	postService := service.NewPostService(postRepo, productRepo, credentialRepo, schedulingService)
	analyticsService := service.NewAnalyticsService(postRepo, credentialRepo, analyticsRepo, twitterService, schedulingService)
	contentService := service.NewContentService(generator, productRepo)
	productService := service.NewProductService(productRepo)
	mediaService := service.NewMediaService(mediaAssetRepo, r2Service)
	settingsService := service.NewSettingsService(settingsRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)

	authMiddleware := middleware.NewAuthMiddleware(cfg, apiKeyService)

	auth := handlers.NewAuthHandler(cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)
	app.Get("/logout", auth.Logout)

	cronHandler := handlers.NewCronHandler(cfg, schedulingService)
	app.Get("/cron/process-posts", cronHandler.ProcessScheduledPosts)
	app.Post("/cron/process-posts", cronHandler.TriggerManual)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	connection := handlers.NewConnectionHandler(cfg, connectionService)
	api.Get("/twitter/connect", connection.Connect)
	api.Get("/twitter/callback", connection.Callback)
	api.Get("/twitter/info", connection.Info)
	api.Post("/twitter/disconnect", connection.Disconnect)

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)
	api.Post("/user/remove", user.RemoveUser)

	settings := handlers.NewSettingsHandler(settingsService)
	api.Get("/settings/info", settings.GetSettingsInfo)
	api.Post("/settings/update", settings.UpdateSettings)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	post := handlers.NewPostHandler(postService)
	api.Post("/posts/create", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/schedule", post.SchedulePost)
	api.Post("/posts/reschedule", post.ReschedulePost)
	api.Post("/posts/cancel", post.CancelPost)
	api.Post("/posts/publish", post.PublishPost)
	api.Post("/posts/mark-posted", post.MarkAsPosted)
	api.Post("/posts/remove", post.RemovePost)

	content := handlers.NewContentHandler(contentService)
	api.Post("/content/generate", content.GenerateContent)
	api.Get("/content/hashtags", content.GenerateHashtags)
	api.Post("/content/improve", content.ImproveContent)

	product := handlers.NewProductHandler(productService)
	api.Post("/products/create", product.CreateProduct)
	api.Get("/products", product.ListProducts)
	api.Post("/products/update", product.UpdateProduct)
	api.Post("/products/remove", product.RemoveProduct)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media/upload", media.UploadMedia)
	api.Get("/media", media.ListMedia)
	api.Post("/media/remove", media.RemoveMedia)

	analytics := handlers.NewAnalyticsHandler(analyticsService, client)
	api.Get("/analytics/summary", analytics.Summary)
	api.Get("/analytics/post", analytics.PostMetrics)
	api.Get("/analytics/top-posts", analytics.TopPosts)
	api.Get("/analytics/optimal-times", analytics.OptimalTimes)
	api.Post("/analytics/sync", analytics.Sync)

	dashboard := handlers.NewDashboardHandler(analyticsService)
	api.Get("/dashboard/stats", dashboard.Stats)

	// cron jobs
	publishJob := job.NewPublishJob(schedulingService)
	refreshTokenJob := job.NewTokenRefreshJob(credentialRepo, schedulingService)
	analyticsJob := job.NewAnalyticsJob(credentialRepo, client)

	// queue
	queueW := queue.NewQueue(analyticsService)

	c := cron.New()
	c.AddFunc("@every 00h01m00s", publishJob.Run)
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.AddFunc("@every 06h00m00s", analyticsJob.EnqueueSyncs)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeAnalyticsSync, queueW.HandleAnalyticsSyncTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
