package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fenilmodi00/meabot-backend/config"
	"github.com/fenilmodi00/meabot-backend/handlers"
	"github.com/fenilmodi00/meabot-backend/jobs"
	"github.com/fenilmodi00/meabot-backend/models"
	"github.com/fenilmodi00/meabot-backend/services"
	"github.com/fenilmodi00/meabot-backend/shared"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	config.ConfigureLogging(cfg)

	mode := "serve"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	datasetsCfg, err := config.LoadDatasetsConfig(cfg.DatasetsFile, cfg.GetCacheTTL())
	if err != nil {
		logrus.Fatalf("Failed to load datasets config: %v", err)
	}

	metrics := shared.NewMetrics()

	sheets, err := services.NewGoogleSheetsClient(ctx, services.SheetsClientConfig{
		SpreadsheetID:   cfg.SpreadsheetID,
		CredentialsFile: cfg.GoogleCredentialsFile,
		Timeout:         cfg.GetSheetsTimeout(),
		MinInterval:     cfg.GetSheetsMinInterval(),
	})
	if err != nil {
		logrus.Fatalf("Failed to initialize Google Sheets client: %v", err)
	}
	defer sheets.Close()

	cache := services.NewDatasetCache(time.Now, metrics, datasetSources(sheets, datasetsCfg)...)
	warmupJob := jobs.NewCacheWarmupJob(cache)

	if mode == "warmup" {
		if err := warmupJob.Run(ctx); err != nil {
			os.Exit(1)
		}
		return
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logrus.Fatalf("Failed to initialize Telegram bot: %v", err)
	}
	logrus.Infof("Authorized on Telegram account %s", bot.Self.UserName)

	reconciler, err := services.NewAnswerReconciler(sheets, services.NewTelegramSender(bot),
		datasetsCfg.QuestionsRange, metrics)
	if err != nil {
		logrus.Fatalf("Failed to initialize answer reconciler: %v", err)
	}
	answerJob := jobs.NewAnswerDeliveryJob(reconciler)

	switch mode {
	case "check-answers":
		if _, err := answerJob.RunOnce(ctx); err != nil {
			os.Exit(1)
		}
		return
	case "serve":
	default:
		logrus.Fatalf("Unknown mode %q (expected serve, warmup or check-answers)", mode)
	}

	recorder := services.NewQuestionRecorder(sheets, datasetsCfg.QuestionsRange, time.Now, metrics)
	conversations := services.NewConversationState(cfg.GetConversationTTL(), time.Now)
	botHandler := handlers.NewBotHandler(bot, cache, recorder, conversations, metrics)

	webhookHandler := handlers.NewWebhookHandler(botHandler, answerJob, cfg.TelegramBotToken, cfg.CheckAnswersSecret)
	adminHandler := handlers.NewAdminHandler(cache, conversations, answerJob, cfg.AdminToken)

	logrus.WithFields(logrus.Fields{
		"cache_ttl":       cfg.GetCacheTTL(),
		"questions_range": datasetsCfg.QuestionsRange,
		"sheets_timeout":  cfg.GetSheetsTimeout(),
		"answer_interval": cfg.GetAnswerCheckInterval(),
	}).Info("meabot backend services initialized")

	// Warmup cache on startup
	go func() {
		_ = warmupJob.Run(ctx)
	}()

	if interval := cfg.GetAnswerCheckInterval(); interval > 0 {
		answerJob.Start(ctx, interval)
	}

	// Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	handlers.SetupRoutes(app, webhookHandler, adminHandler, metrics)

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.Errorf("Server shutdown failed: %v", err)
		}
	}()

	// Start server
	logrus.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Server failed to start: %v", err)
	}
}

func datasetSources(store services.SheetStore, cfg *config.DatasetsConfig) []services.DatasetSource {
	sources := make([]services.DatasetSource, 0, len(models.AllDatasets))
	for _, dataset := range models.AllDatasets {
		dc, ok := cfg.Datasets[dataset]
		if !ok {
			continue
		}
		schema, ok := models.SchemaFor(dataset)
		if !ok {
			continue
		}
		policy := services.FailurePropagate
		if dc.FailurePolicy == config.PolicyCacheEmpty {
			policy = services.FailureCacheEmpty
		}
		sources = append(sources, services.DatasetSource{
			Dataset: dataset,
			TTL:     dc.TTL,
			Policy:  policy,
			Fetch:   services.SheetFetcher(store, schema, dc.Range),
		})
	}
	return sources
}
