package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpSwagger "github.com/swaggo/http-swagger"

	"payments-service/config"
	_ "payments-service/docs"
	infradb "payments-service/infra/db"
	"payments-service/infra/repository"
	"payments-service/internal/core/broker"
	"payments-service/internal/core/handler"
	"payments-service/internal/core/hub"
	"payments-service/internal/core/usecase"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title          Payments Service API
// @version        1.0
// @description    Idempotent transaction creation with asynchronous processing and live status updates.
// @host           localhost:8080
// @BasePath       /
// @schemes        http
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := infradb.Connect(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
	)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	rabbit := broker.NewRabbitMQ(cfg.RabbitMQ.URL)
	if err := rabbit.Connect(); err != nil {
		logger.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer rabbit.Close()
	logger.Info("connected to rabbitmq")

	jobs, err := broker.NewJobPublisher(rabbit.Channel, cfg.RabbitMQ.JobQueue)
	if err != nil {
		logger.Error("failed to set up job queue", slog.String("error", err.Error()))
		os.Exit(1)
	}

	broadcastHub := hub.New()
	subscriber, err := broker.NewEventSubscriber(rabbit.Channel, cfg.RabbitMQ.Exchange, broadcastHub, logger)
	if err != nil {
		logger.Error("failed to set up event subscriber", slog.String("error", err.Error()))
		os.Exit(1)
	}
	go func() {
		if err := subscriber.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("event subscriber stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	txRepo := repository.NewTransactionRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	txHandler := handler.NewTransactionHandlerFactory(usecase.NewFactory(txRepo, jobs, logger))
	assistantHandler := handler.NewAssistantHandler(
		usecase.NewSummarizeUseCase(summaryRepo, logger, cfg.OpenAI.APIKey, cfg.OpenAI.Model),
	)
	wsHandler := handler.NewWSHandler(broadcastHub, logger)

	apiMux := http.NewServeMux()
	txHandler.RegisterRoutes(apiMux)
	assistantHandler.RegisterRoutes(apiMux)
	apiMux.Handle("/metrics", promhttp.Handler())
	apiMux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// WebSocket upgrades bypass the metrics middleware: the recorder does
	// not implement http.Hijacker.
	mux := http.NewServeMux()
	wsHandler.RegisterRoutes(mux)
	mux.Handle("/", handler.MetricsMiddleware(apiMux))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: mux,
	}

	go func() {
		logger.Info("starting HTTP server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down gracefully")

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}
