package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storebot/internal/bootstrap"
	"storebot/internal/bot"
	"storebot/internal/catalog"
	"storebot/internal/config"
	cronpkg "storebot/internal/cron"
	"storebot/internal/middleware"
	"storebot/internal/navigation"
	"storebot/internal/pkg/telegram"
	"storebot/internal/repository"
	"storebot/internal/router"
	"storebot/internal/shop"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if hasArg("--bootstrap-db") || hasArg("--seed-demo") {
		if err := runDBBootstrap(logger, hasArg("--seed-demo")); err != nil {
			logger.Fatal("Database bootstrap failed", zap.Error(err))
		}
		logger.Info("Database bootstrap completed")
		return
	}

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if envLogger, err := config.NewLogger(cfg.Server.Env); err == nil {
		logger = envLogger
		defer logger.Sync()
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := bootstrap.MigrateAndSeed(db, cfg.Bot.AdminID); err != nil {
		logger.Fatal("Failed to bootstrap database schema", zap.Error(err))
	}

	// --- Telegram Bot API (direct HTTP client for cron notices) ---
	botAPI := telegram.NewBotAPI(cfg.Bot.Token)

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	// --- Redis (sessions + webhook dedup, in-memory fallback) ---
	rdb, err := config.NewRedis(&cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, keeping sessions and update ids in memory", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}
	updateDeduper := middleware.NewUpdateDeduper(rdb, 10*time.Minute)
	navStore := navigation.NewStore(rdb, cfg.Catalog.SessionTTL)

	// --- Services ---
	repos := shop.NewRepos(db)
	engine := catalog.NewEngine(repository.NewCatalogRepository(db), cfg.Catalog.PageSize)
	shopService := shop.NewService(repos, logger)

	// --- Bot ---
	teleBot, err := bot.New(cfg, &bot.Deps{
		Engine: engine,
		Shop:   shopService,
		Nav:    navigation.NewManager(navStore, cfg.Catalog.HistoryLimit),
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// --- Routes ---
	router.Setup(e, engine, shopService, logger, cfg.API.Key, updateDeduper, teleBot.WebhookHandler())

	// --- Cron Scheduler ---
	scheduler := cronpkg.New(cfg, &cronpkg.CronRepos{
		Order:   repos.Order,
		Cart:    repos.Cart,
		Admin:   repos.Admin,
		CronJob: repos.CronJob,
	}, botAPI, logger)
	scheduler.Start()

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting storebot server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	go teleBot.Start()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	teleBot.Stop()

	ctx := scheduler.Stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func hasArg(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}

func runDBBootstrap(logger *zap.Logger, withDemo bool) error {
	dbCfg, adminID, err := config.LoadDatabaseOnly()
	if err != nil {
		return err
	}
	db, err := config.NewDatabase(dbCfg, logger)
	if err != nil {
		return err
	}
	if err := bootstrap.MigrateAndSeed(db, adminID); err != nil {
		return err
	}
	logger.Info("Schema migration and default seed completed")

	if withDemo {
		if err := bootstrap.SeedDemo(db); err != nil {
			return err
		}
		logger.Info("Demo catalog seeded")
	}
	return nil
}
