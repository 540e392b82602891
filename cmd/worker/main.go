package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"payments-service/config"
	infradb "payments-service/infra/db"
	"payments-service/infra/repository"
	"payments-service/internal/core/broker"
	"payments-service/internal/core/processor"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := infradb.Connect(
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
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
	logger.Info("connected to rabbitmq", slog.String("exchange", cfg.RabbitMQ.Exchange))

	events, err := broker.NewEventPublisher(rabbit.Channel, cfg.RabbitMQ.Exchange)
	if err != nil {
		logger.Error("failed to set up event publisher", slog.String("error", err.Error()))
		os.Exit(1)
	}

	consumer, err := broker.NewJobConsumer(rabbit.Channel, cfg.RabbitMQ.JobQueue, logger)
	if err != nil {
		logger.Error("failed to set up job consumer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sim := processor.NewRandomSimulator(cfg.Processor.MinDelay, cfg.Processor.MaxDelay, cfg.Processor.SuccessRate)
	proc := processor.New(repository.NewTransactionRepository(db), events, sim, logger)

	logger.Info("processing worker started", slog.String("queue", cfg.RabbitMQ.JobQueue))

	err = consumer.Consume(ctx, func(jobCtx context.Context, transactionID string) error {
		if cfg.Processor.JobTimeout > 0 {
			var cancel context.CancelFunc
			jobCtx, cancel = context.WithTimeout(jobCtx, cfg.Processor.JobTimeout)
			defer cancel()
		}
		return proc.Process(jobCtx, transactionID)
	})
	if err != nil && ctx.Err() == nil {
		logger.Error("job consumer stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("processing worker stopped")
}
