package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atarjan/memebet/internal/acceptance"
	"github.com/atarjan/memebet/internal/betting"
	"github.com/atarjan/memebet/internal/config"
	"github.com/atarjan/memebet/internal/feed"
	"github.com/atarjan/memebet/internal/history"
	"github.com/atarjan/memebet/internal/leaderboard"
	"github.com/atarjan/memebet/internal/logger"
	"github.com/atarjan/memebet/internal/metrics"
	"github.com/atarjan/memebet/internal/models"
	"github.com/atarjan/memebet/internal/notifier"
	"github.com/atarjan/memebet/internal/server"
	"github.com/atarjan/memebet/internal/trends"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging with level support
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	// Initialize bet history store
	store, err := history.New(cfg.Storage.DBPath)
	if err != nil {
		logger.Fatal("Failed to initialize bet history: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close bet history: %v", err)
		}
	}()

	// Initialize trend provider client and cache
	trendClient := trends.NewClient(
		cfg.Trends.APIBaseURL,
		cfg.Trends.Timeout,
		trends.ClientConfig{MaxRetries: cfg.Trends.MaxRetries},
	)
	trendCache := trends.NewCache()

	// Initialize bet acceptance client and lifecycle engine
	acceptClient := acceptance.NewClient(cfg.Acceptance.APIBaseURL, cfg.Acceptance.Timeout)
	engine := betting.New(store, acceptClient)

	// Initialize Telegram big-bet alerts
	if cfg.Telegram.Enabled {
		telegramClient, err := notifier.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		engine.SetNotifier(telegramClient, cfg.Betting.BigBetThreshold)
		logger.Info("Telegram big-bet alerts enabled (threshold: %d points)", cfg.Betting.BigBetThreshold)
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	// Initialize activity feed generator
	generator := feed.New(feed.Config{
		Interval:  cfg.Feed.Interval,
		SeedCap:   cfg.Feed.SeedCap,
		BufferCap: cfg.Feed.BufferCap,
	})
	defer generator.Stop()

	// Initialize leaderboard poller
	boardClient := leaderboard.NewClient(cfg.Leaderboard.APIBaseURL, cfg.Leaderboard.Timeout)
	board := leaderboard.NewPoller(boardClient, cfg.Leaderboard.PollInterval, models.Window(cfg.Leaderboard.Window))
	defer board.Stop()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	// Initial trend fetch seeds both the cache and the activity feed
	items, err := trendClient.FetchTrending(ctx, cfg.Trends.Limit)
	if err != nil {
		logger.Warn("Initial trend fetch failed, starting with an empty set: %v", err)
	} else {
		trendCache.Replace(items)
		generator.Seed(items)
		logger.Info("Seeded %d trend items", len(items))
	}

	// Initialize API server and wire the feed into the websocket hub before
	// the generator starts ticking
	apiServer := server.New(cfg.Server.Addr, engine, store, generator, board, trendCache)
	generator.Subscribe(apiServer.PublishActivity)

	// Start background loops
	generator.Start()
	board.Start(ctx)

	// Metrics and health endpoints on a side port
	metricsServer := metrics.StartServer(fmt.Sprintf("%d", cfg.Server.MetricsPort), func(ctx context.Context) error {
		return store.Ping(ctx)
	})
	logger.Info("Metrics server listening on :%d", cfg.Server.MetricsPort)

	// Trend refresh loop
	go func() {
		ticker := time.NewTicker(cfg.Trends.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				items, err := trendClient.FetchTrending(ctx, cfg.Trends.Limit)
				if err != nil {
					logger.Warn("Trend refresh failed, keeping previous set: %v", err)
					continue
				}
				trendCache.Replace(items)
				logger.Debug("Refreshed %d trend items", len(items))
			}
		}
	}()

	// Serve the API until shutdown
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- apiServer.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("API server stopped: %v", err)
		}
		cancel()
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server shutdown failed: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Metrics server shutdown failed: %v", err)
	}
	logger.Info("Service stopped")
}
