package application

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	redisclient "github.com/rocketscienceinc/tictactoe-engine/internal/transport/redis"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-engine/transport/rest"
	"github.com/rocketscienceinc/tictactoe-engine/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	params := usecase.Params{
		TurnBudget:   conf.Game.TurnBudget,
		TickInterval: conf.Game.TickInterval,
		MysterySeed:  conf.Game.MysterySeed,
	}

	var sessions *usecase.SessionManager

	if conf.Redis.Enabled {
		client, err := redisclient.Connect(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis: %w", err)
		}

		defer func() {
			if err = client.Close(); err != nil {
				log.Error("could not close redis client", "error", err)
			}
		}()

		log.Info("Publishing events to Redis", "addr", conf.Redis.GetRedisAddr(), "prefix", conf.Redis.ChannelPrefix)
		sessions = usecase.NewSessionManager(logger, redisclient.New(client, conf.Redis.ChannelPrefix), params)
	} else {
		sessions = usecase.NewSessionManager(logger, nil, params)
	}

	defer sessions.CloseAll()

	wsServer := websocket.New(logger, sessions)
	router := rest.NewRouter(logger, sessions, wsServer)

	log.Info("Starting HTTP server", "port", conf.HTTPPort)

	if err := rest.Start(ctx, conf.HTTPPort, router); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
