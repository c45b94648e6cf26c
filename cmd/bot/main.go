package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"burovik/internal/bot"
	"burovik/internal/catalog"
	"burovik/internal/config"
	"burovik/internal/dialog"
	"burovik/internal/events"
	"burovik/internal/metrics"
	"burovik/internal/quotes"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	// .env is optional; config placeholders pick the vars up.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("BUROVIK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Telegram.BotToken == "" || cfg.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		logger.Fatal().Msg("set telegram.bot_token in config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	machine := dialog.NewMachine(catalog.Default())
	if cfg.Catalog.Path != "" {
		err := catalog.Watch(ctx, cfg.Catalog.Path, cfg.CatalogWatchInterval(), func(c *catalog.Catalog) {
			machine.SetCatalog(c)
			logger.Info().Str("catalog", c.String()).Msg("catalog loaded")
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load catalog")
		}
	}

	var rdb *redis.Client
	var store dialog.Store
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		store = dialog.NewRedisStore(rdb, "burovik", cfg.SessionTimeout())
	} else {
		memStore := dialog.NewMemoryStore(cfg.SessionTimeout())
		go memStore.Cleanup(ctx, cfg.CleanupInterval())
		store = memStore
	}

	history, err := quotes.NewStore(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer history.Close()

	if cfg.Backup.Enabled {
		backup := quotes.NewBackupService(cfg.Database.Path, cfg.Backup.Path, cfg.BackupInterval(), cfg.Backup.RetentionDays, &logger)
		go backup.Start(ctx)
	}

	bus := events.NewBus()
	opts := bot.Options{
		History: history,
		Bus:     bus,
		Limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit.MessagesPerSecond), cfg.RateLimit.Burst),
	}
	if cfg.Sheets.Enabled {
		mirror, err := quotes.NewSheetsAppender(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, cfg.Sheets.Range)
		if err != nil {
			logger.Fatal().Err(err).Msg("sheets init error")
		}
		bus.Subscribe(func(ctx context.Context, ev events.QuoteCompleted) {
			if err := mirror.Append(ctx, ev.Quote); err != nil {
				logger.Warn().Err(err).Int64("quote_id", ev.Quote.ID).Msg("failed to mirror quote")
			}
		})
	}

	b, err := bot.New(cfg.Telegram.BotToken, cfg.Telegram.Debug, machine, store, opts, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create bot error")
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, history, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	logger.Info().Msg("Drilling calculator bot started")
	if cfg.Telegram.WebhookURL != "" {
		addr := cfg.Telegram.ListenAddr
		if addr == "" {
			addr = ":8443"
		}
		if err := b.StartWebhook(ctx, cfg.Telegram.WebhookURL, addr); err != nil {
			logger.Fatal().Err(err).Msg("webhook error")
		}
		return
	}
	b.Start(ctx)
}

func startHealthServer(ctx context.Context, port int, history *quotes.Store, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := history.Ping(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
