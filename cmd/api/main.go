package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"estatehub/internal/api"
	"estatehub/internal/auth"
	"estatehub/internal/availability"
	"estatehub/internal/config"
	"estatehub/internal/database"
	"estatehub/internal/domain"
	"estatehub/internal/events"
	"estatehub/internal/google"
	"estatehub/internal/logging"
	"estatehub/internal/metrics"
	"estatehub/internal/repository"
	"estatehub/internal/service"
	"estatehub/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const sheetsCacheRefresh = 10 * time.Minute

type flags struct {
	resyncSheets bool
	exportDays   int
}

func main() {
	var f flags
	flag.BoolVar(&f.resyncSheets, "resync-sheets", false, "rewrite the bookings sheet from the database and exit")
	flag.IntVar(&f.exportDays, "export-days", 0, "write an occupancy report for the next N days and exit")
	flag.Parse()

	if err := run(f); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(f flags) error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initDatabase(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	sheetsService := initGoogleSheets(ctx, cfg, &logger)

	switch {
	case f.resyncSheets:
		return resyncSheets(ctx, db, sheetsService, &logger)
	case f.exportDays > 0:
		return exportReport(ctx, db, cfg.Exports, f.exportDays, &logger)
	}

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	eventBus := events.NewEventBus()
	initTelegram(cfg, eventBus, &logger)

	var syncWorker domain.SyncWorker
	if sheetsService != nil {
		go sheetsService.StartCacheRefresh(ctx, sheetsCacheRefresh)

		w := worker.NewSheetsWorker(db, sheetsService, redisClient, cfg.Worker, &logger)
		go w.Start(ctx)
		syncWorker = w
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(db, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	policy, err := availability.ParsePolicy(cfg.Booking.CapacityPolicy)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenManager(cfg.API.Auth)
	bookingService := service.NewBookingService(db, availability.NewChecker(policy), eventBus, syncWorker, cfg.Booking, &logger).
		WithAttemptLimiter(initAttemptLimiter(redisClient, &logger))

	httpServer := api.NewHTTPServer(cfg.API, api.Services{
		Bookings:  bookingService,
		Dashboard: service.NewDashboardService(db, &logger),
		Users:     service.NewUserService(db, tokens, &logger),
		Listings:  service.NewListingService(db, eventBus, &logger),
		Tokens:    tokens,
		Ready:     db.PingContext,
	}, &logger)

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(cfg.API, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}

	startMetrics(ctx, cfg, &logger)

	return startServers(ctx, grpcServer, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	inventoryPath := cfg.InventoryPath
	if env := os.Getenv("INVENTORY_PATH"); env != "" {
		inventoryPath = env
	}
	if inventoryPath == "" {
		inventoryPath = "configs/inventory.yaml"
	}

	inv, err := database.LoadInventory(inventoryPath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn().Str("inventory_path", inventoryPath).Msg("inventory file not found, skipping seed")
		return db, nil
	}
	if err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.SeedInventory(ctx, inv, auth.HashPassword); err != nil {
		db.Close()
		logger.Error().Err(err).Str("inventory_path", inventoryPath).Msg("seed inventory")
		return nil, err
	}
	return db, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initAttemptLimiter prefers redis and falls back to process memory when
// redis is missing or stops answering.
func initAttemptLimiter(redisClient *redis.Client, logger *zerolog.Logger) domain.AttemptLimiter {
	memory := repository.NewMemoryAttemptLimiter()
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverAttemptLimiter(repository.NewRedisAttemptLimiter(redisClient), memory, logger)
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.BookingSpreadSheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(ctx, cfg.Google, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}
	if err := sheetsService.TestConnection(ctx); err != nil {
		email, _ := google.ServiceAccountEmail(cfg.Google.GoogleCredentialsFile)
		logger.Warn().Err(err).Str("service_account", email).
			Msg("google sheets unreachable, share the spreadsheet with the service account")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return sheetsService
}

func initTelegram(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Telegram.BotToken == "" || len(cfg.Telegram.NotifyChatIDs) == 0 {
		return
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}
	bot.Debug = cfg.Telegram.Debug

	service.NewTelegramService(bot, cfg.Telegram.NotifyChatIDs, logger).Subscribe(bus)
	logger.Info().Str("bot", bot.Self.UserName).Int("chats", len(cfg.Telegram.NotifyChatIDs)).Msg("telegram notifications enabled")
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	if grpcServer != nil {
		go func() {
			if err := grpcServer.ListenAndServe(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().
		Bool("grpc", grpcServer != nil).
		Int("grpc_port", cfg.API.GRPC.Port).
		Int("http_port", cfg.API.HTTP.Port).
		Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
