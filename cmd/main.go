package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"study-abroad-backend/config"
	"study-abroad-backend/internal/metrics"
	"study-abroad-backend/internal/scheduler"
	"study-abroad-backend/middleware"
	"study-abroad-backend/notifications"
	"study-abroad-backend/search"
	"study-abroad-backend/token"
	"study-abroad-backend/utils"
	"study-abroad-backend/websocket"

	// Repositories
	auth_repositories "study-abroad-backend/auth/repositories"
	catalog_repositories "study-abroad-backend/catalog/repositories"
	housing_repositories "study-abroad-backend/housing/repositories"
	visa_repositories "study-abroad-backend/visas/repositories"

	// Services
	catalog_services "study-abroad-backend/catalog/services"
	housing_services "study-abroad-backend/housing/services"
	visa_services "study-abroad-backend/visas/services"

	// Routes
	application_routes "study-abroad-backend/applications/routes"
	auth_routes "study-abroad-backend/auth/routes"
	catalog_routes "study-abroad-backend/catalog/routes"
	document_routes "study-abroad-backend/documents/routes"
	housing_routes "study-abroad-backend/housing/routes"
	report_routes "study-abroad-backend/reports/routes"
	scholarship_routes "study-abroad-backend/scholarships/routes"
	visa_routes "study-abroad-backend/visas/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	// Initialize Zap logger
	config.InitLogger()
	defer config.Logger.Sync()

	// Load environment variables
	config.LoadEnv()

	if len(os.Args) > 1 {
		runCommand(os.Args[1:])
		return
	}

	if err := utils.InitializeDateLocation(); err != nil {
		config.Logger.Fatal("Failed to initialize date location", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database and seed the first administrator
	db := config.ConfigureDatabase()
	if err := config.SeedInitialAdmin(db,
		config.GetEnvDefault("INITIAL_ADMIN_NAME", "Administrator"),
		config.GetEnv("INITIAL_ADMIN_EMAIL"),
		config.GetEnv("INITIAL_ADMIN_PASSWORD"),
	); err != nil {
		config.Logger.Error("Initial admin seed failed", zap.Error(err))
	}

	redisClient := config.InitRedisServer(ctx)
	defer redisClient.Close()

	tokenMaker, err := token.NewPasetoMaker(config.GetEnv("TOKEN_SYMMETRIC_KEY"))
	if err != nil {
		config.Logger.Fatal("Cannot create token maker", zap.Error(err))
	}

	appCtx := &middleware.AppContext{
		PasetoMaker: tokenMaker,
		Ctx:         ctx,
		RedisClient: redisClient,
	}

	// Initialize the mailer
	utils.InitializeMailer()
	if utils.GetMailer() == nil {
		config.Logger.Fatal("Mailer not initialized")
	}

	// ------ WebSocket Hub Initialization for live decision updates ------
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// ------ Background notification queue ------
	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     config.GetEnvDefault("REDIS_ADDRESS", "localhost:6379"),
		Password: config.GetEnv("REDIS_PASSWORD"),
		DB:       0,
	}
	asynqClient := asynq.NewClient(asynqRedisOpt)
	defer asynqClient.Close()

	var notifier notifications.Notifier = notifications.NewAsynqNotifier(asynqClient)
	if config.GetEnv("NOTIFIER") == "log" {
		notifier = notifications.LogNotifier{}
		config.Logger.Warn("NOTIFIER=log, notifications are only logged")
	}

	asynqServer := notifications.NewServer(asynqRedisOpt)
	mux := asynq.NewServeMux()
	notifications.NewProcessor(db, wsHub, utils.SendEmail).Register(mux)
	if err := asynqServer.Start(mux); err != nil {
		config.Logger.Fatal("Failed to start notification worker", zap.Error(err))
	}
	defer asynqServer.Shutdown()

	// ------ Program search ------
	programIndex := initProgramIndex()
	go func() {
		if err := search.Reindex(ctx, db, programIndex); err != nil {
			config.Logger.Error("Initial program reindex failed", zap.Error(err))
		}
	}()

	// ------ HTTP server ------
	app := fiber.New(fiber.Config{BodyLimit: 12 * 1024 * 1024})
	middleware.InitCors(app)
	app.Use(middleware.GlobalRateLimiter())

	metrics.Register()
	app.Get("/metrics", metrics.Handler())

	// Serve static files
	app.Static("/public", "./public")

	// Repositories
	accountRepo := auth_repositories.NewAccountRepository(db)
	catalogRepo := catalog_repositories.NewCatalogRepository(db)
	visaRepo := visa_repositories.NewVisaRepository(db)
	housingRepo := housing_repositories.NewHousingRepository(db)

	// Services shared between routes and the scheduler
	fileStorage := utils.NewLocalFileStorage(config.GetEnvDefault("UPLOAD_PATH", "./uploads"))
	visaService := visa_services.NewVisaService(db, visaRepo, notifier)
	housingService := housing_services.NewHousingService(db, housingRepo, notifier)
	catalogService := catalog_services.NewCatalogService(db, catalogRepo, accountRepo, programIndex, redisClient)

	// Routes
	loginLimiter := middleware.NewKeyedLimiter(12*time.Second, 5)
	auth_routes.InitRoutes(app, db, appCtx, loginLimiter)
	catalog_routes.CatalogRouterInit(app, appCtx, catalogService)
	application_routes.ApplicationRouterInit(app, db, appCtx, notifier)
	document_routes.DocumentRouterInit(app, db, appCtx, fileStorage, notifier)
	scholarship_routes.ScholarshipRouterInit(app, db, appCtx, notifier)
	visa_routes.VisaRouterInit(app, appCtx, visaService)
	housing_routes.HousingRouterInit(app, appCtx, housingService)
	report_routes.ReportRouterInit(app, db, appCtx)

	// ------ WebSocket Route for Real-time Communication ------
	wsHandler := websocket.NewWsHandler(wsHub, tokenMaker)
	app.Get("/ws", wsHandler.HandleWebSocket)

	// ------ Scheduled jobs ------
	jobs, err := scheduler.New(visaService, scheduler.Options{
		ReminderDays: config.GetEnvInt("VISA_REMINDER_DAYS", visa_services.DefaultReminderDays),
		ExportDir:    utils.ExportDir,
	})
	if err != nil {
		config.Logger.Fatal("Failed to configure scheduler", zap.Error(err))
	}
	jobs.Start()

	go func() {
		<-ctx.Done()
		config.Logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		jobs.Stop(shutdownCtx)
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			config.Logger.Error("HTTP shutdown failed", zap.Error(err))
		}
	}()

	port := config.GetEnvDefault("PORT", "8080")
	config.Logger.Info("Server starting", zap.String("port", port))
	if err := app.Listen(":" + port); err != nil {
		config.Logger.Fatal("Server failed", zap.String("port", port), zap.Error(err))
	}
}

// initProgramIndex picks the search backend from SEARCH_BACKEND.
func initProgramIndex() search.ProgramIndex {
	if config.GetEnv("SEARCH_BACKEND") == "elastic" {
		index := search.NewElasticIndex(config.InitElasticsearch())
		if err := index.EnsureIndex(context.Background()); err != nil {
			config.Logger.Fatal("Failed to prepare elasticsearch index", zap.Error(err))
		}
		return index
	}

	index, err := search.NewBleveIndex(config.GetEnvDefault("BLEVE_INDEX_PATH", "./bleve_data"))
	if err != nil {
		config.Logger.Fatal("Failed to open bleve index", zap.Error(err))
	}
	return index
}

// runCommand handles the maintenance subcommands: backup [dir] and restore <file>.
func runCommand(args []string) {
	ctx := context.Background()
	switch args[0] {
	case "backup":
		dir := "./backups"
		if len(args) > 1 {
			dir = args[1]
		}
		if _, err := config.BackupDatabase(ctx, dir); err != nil {
			config.Logger.Fatal("Backup failed", zap.Error(err))
		}
	case "restore":
		if len(args) < 2 {
			config.Logger.Fatal("Usage: restore <backup-file>")
		}
		if err := config.RestoreDatabase(ctx, args[1]); err != nil {
			config.Logger.Fatal("Restore failed", zap.Error(err))
		}
	default:
		config.Logger.Fatal("Unknown command", zap.String("command", args[0]))
	}
}
