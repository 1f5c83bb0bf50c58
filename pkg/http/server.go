package http

import (
	"context"
	"os"

	http_router "github.com/lintang-b-s/mapmatch/pkg/http/router"
	"github.com/lintang-b-s/mapmatch/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/mapmatch/pkg/http/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,
	useRateLimit bool,
	matcherService controllers.MatcherService,
) (*Server, error) {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "1000s")
	viper.SetDefault("RATE_LIMIT_RPS", 20.0)
	viper.SetDefault("RATE_LIMIT_BURST", 40)

	config := http_server.Config{
		Port:    viper.GetInt("API_PORT"),
		Timeout: viper.GetDuration("API_TIMEOUT"),
	}

	api := http_router.NewAPI(log)

	g := errgroup.Group{}

	g.Go(func() error {
		return api.Run(ctx, config, log, useRateLimit, matcherService)
	})

	return s, nil
}

// GracefulShutdown re-export for the cmd wiring.
func GracefulShutdown() os.Signal {
	return http_server.GracefulShutdown()
}
