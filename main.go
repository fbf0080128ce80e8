package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"venue-guide-system/handlers"
	"venue-guide-system/middleware"
	"venue-guide-system/services"
	"venue-guide-system/storage"
	"venue-guide-system/utils"
	"venue-guide-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB — this service takes JSON only
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Session-Token, X-Service-Token, X-Device-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := storage.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	store := storage.NewStore(db)
	if err := store.SeedCatalog(); err != nil {
		log.Fatal("failed to seed catalog:", err)
	}

	// Notification dispatch: webhook when configured, service log otherwise.
	var notifier services.Notifier = services.LogNotifier{}
	if webhookURL := os.Getenv("NOTIFICATION_WEBHOOK_URL"); webhookURL != "" {
		notifier = services.NewWebhookNotifier(webhookURL, os.Getenv("GUIDE_SERVICE_TOKEN"))
		log.Println("🔔 Webhook notifier configured")
	}

	xpService := services.NewXPService(store, notifier)

	archiver, err := utils.InitLedgerArchive()
	if err != nil {
		log.Fatal("failed to initialize ledger archiver:", err)
	}
	if archiver != nil {
		xpService.Archive = archiver
		log.Println("🗄️ R2 ledger archival enabled")
	}

	streakService := services.NewStreakService(store)
	badgeService := services.NewBadgeService(store, store, store, xpService)
	missionService := services.NewMissionService(store, store, store, xpService, badgeService, streakService)
	missionService.HistoryRetentionDays = 90
	checkInService := services.NewCheckInService(store, missionService)
	leaderboardService := services.NewLeaderboardService(store)

	// SSE auth goes straight to the auth service; optional in dev.
	var authClient *services.AuthServiceClient
	if authURL := os.Getenv("AUTH_SERVICE_URL"); authURL != "" {
		authClient = services.NewAuthServiceClient(authURL, os.Getenv("GUIDE_SERVICE_TOKEN"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL != "" {
		syncWorker := workers.NewProfileSyncWorker(db, profileServiceURL, "/api/v1/public/profiles", os.Getenv("GUIDE_SERVICE_TOKEN"))
		syncWorker.Start(ctx)
	} else {
		log.Println("⚠️  PROFILE_SERVICE_URL not set — profile mirror sync disabled")
	}

	sched, err := services.StartResetScheduler(missionService, xpService)
	if err != nil {
		log.Fatal("failed to start reset scheduler:", err)
	}

	// ✅ Setup routes — enforced Gateway auth + consistent /s/ prefix
	handlers.SetupProgressionRoutes(app, xpService, missionService, badgeService, checkInService, authClient, store)
	handlers.SetupEventRoutes(app, missionService)
	handlers.SetupLeaderboardRoutes(app, leaderboardService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := sched.Shutdown(); err != nil {
		log.Printf("scheduler shutdown error: %v", err)
	}
	if err := app.Shutdown(); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
