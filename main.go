package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"portfolio/internal/config"
	"portfolio/internal/server"
	"portfolio/internal/services"
	"portfolio/pkg/logger"
	"portfolio/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// RabbitMQ is optional; the site works without notifications.
	mqClient, err := connectBroker(cfg.RabbitMQURL)
	if err != nil {
		logger.Warn().Err(err).Msg("RabbitMQ unavailable, message events disabled")
	}
	var publisher services.EventPublisher
	if mqClient != nil {
		defer mqClient.Close()
		publisher = mqClient
		if err := mqClient.ConsumeMessageEvents(rabbitmq.HandleMessageEvent); err != nil {
			logger.Error().Err(err).Msg("failed to start RabbitMQ consumer")
		}
	}

	app, err := server.NewApp(ctx, cfg, server.Deps{Publisher: publisher})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build application")
	}

	go func() {
		logger.Info().Str("addr", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := app.Listen(cfg.Port); err != nil {
			logger.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("error during shutdown")
	}
	logger.Info().Msg("server gracefully stopped")
}

// connectBroker returns nil without error when no URL is configured.
func connectBroker(url string) (*rabbitmq.Client, error) {
	if url == "" {
		return nil, nil
	}
	return rabbitmq.NewClient(rabbitmq.Config{URL: url})
}
