package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"github.com/foodgpt/pizzeria-ai-platform/internal/api/router"
	appconfig "github.com/foodgpt/pizzeria-ai-platform/internal/config"
	"github.com/foodgpt/pizzeria-ai-platform/internal/conversation"
	"github.com/foodgpt/pizzeria-ai-platform/internal/messaging"
	"github.com/foodgpt/pizzeria-ai-platform/internal/notify"
	"github.com/foodgpt/pizzeria-ai-platform/internal/observability/metrics"
	"github.com/foodgpt/pizzeria-ai-platform/internal/orders"
	"github.com/foodgpt/pizzeria-ai-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting pizzeria-ai-platform bot",
		"env", cfg.Env,
		"port", cfg.Port,
		"store", cfg.StoreName,
	)

	if cfg.OpenAIAPIKey == "" {
		logger.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("failed to reach redis", "error", err, "addr", cfg.RedisAddr)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	botMetrics := metrics.NewBotMetrics(registry)

	recordStore := conversation.NewRecordStore(redisClient)
	llmClient := conversation.NewOpenAIClient(
		openai.NewClient(cfg.OpenAIAPIKey),
		cfg.OpenAIModel,
		cfg.OpenAITemperature,
		cfg.OpenAIMaxTokens,
		logger,
	)
	service := conversation.NewService(recordStore, llmClient, cfg.StoreName, logger)

	queue := conversation.NewMemoryQueue(cfg.QueueBuffer)
	publisher := conversation.NewPublisher(queue, logger)
	messenger := messaging.NewGatewaySender(cfg.GatewayBaseURL, cfg.GatewayToken, botMetrics, logger)

	workerOpts := []conversation.WorkerOption{
		conversation.WithWorkerCount(cfg.WorkerCount),
		conversation.WithMetrics(botMetrics),
	}
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		workerOpts = append(workerOpts, conversation.WithOrderArchiver(orders.NewArchive(db)))
		logger.Info("order archive enabled")
	}
	if notifier := buildOrderNotifier(cfg, logger); notifier != nil {
		workerOpts = append(workerOpts, conversation.WithOrderNotifier(notifier))
		logger.Info("order ticket notifications enabled", "recipient", cfg.OrderTicketEmail)
	}

	worker := conversation.NewWorker(service, queue, messenger, logger, workerOpts...)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	worker.Start(workerCtx)

	messagingHandler := messaging.NewHandler(cfg.GatewayWebhookSecret, publisher, botMetrics, logger)
	r := router.New(&router.Config{
		Logger:           logger,
		MessagingHandler: messagingHandler,
		MetricsHandler:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	stopWorkers()
	worker.Wait()

	logger.Info("server stopped")
}

func buildOrderNotifier(cfg *appconfig.Config, logger *logging.Logger) *notify.OrderTicketNotifier {
	sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	if sender == nil {
		return nil
	}
	return notify.NewOrderTicketNotifier(sender, cfg.OrderTicketEmail, logger)
}
