// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stwalsh4118/playout/internal/api"
	"github.com/stwalsh4118/playout/internal/buildlock"
	"github.com/stwalsh4118/playout/internal/channel"
	"github.com/stwalsh4118/playout/internal/config"
	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/library"
	"github.com/stwalsh4118/playout/internal/logger"
	"github.com/stwalsh4118/playout/internal/middleware"
	"github.com/stwalsh4118/playout/internal/playout"
	"github.com/stwalsh4118/playout/internal/scheduler"
	"github.com/stwalsh4118/playout/internal/timeline"
	"github.com/stwalsh4118/playout/internal/trigger"
)

// Server represents the HTTP server together with the background build
// machinery it hosts
type Server struct {
	config          *config.Config
	db              *db.DB
	repos           *db.Repositories
	library         *library.Guarded
	playoutService  *playout.Service
	channelService  *channel.ChannelService
	timelineService *timeline.TimelineService
	scheduler       *scheduler.Scheduler
	nc              *nats.Conn
	subscriber      *trigger.Subscriber
	router          *gin.Engine
	server          *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, database *db.DB) (*Server, error) {
	repos := db.NewRepositories(database)

	locks, err := buildlock.New(cfg.Build.LockDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare build locks: %w", err)
	}

	lib := library.NewGuarded(library.NewStore(repos.Media), library.BreakerConfig{
		FailureThreshold: cfg.Library.FailureThreshold,
		ResetTimeout:     cfg.Library.ResetTimeout,
	})
	playoutService := playout.NewService(repos, lib, locks)

	return &Server{
		config:          cfg,
		db:              database,
		repos:           repos,
		library:         lib,
		playoutService:  playoutService,
		channelService:  channel.NewChannelService(repos, cfg.Build.Timezone),
		timelineService: timeline.NewTimelineService(repos),
		scheduler:       scheduler.New(playoutService, repos.Playouts, cfg.Build),
	}, nil
}

// Router returns the configured handler, building it on first use
func (s *Server) Router() http.Handler {
	if s.router == nil {
		s.setupRouter()
	}
	return s.router
}

// PlayoutService returns the build service shared by every trigger
func (s *Server) PlayoutService() *playout.Service {
	return s.playoutService
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	s.router.Use(middleware.RequestLogger())
	s.router.Use(gin.Recovery())
	s.router.Use(cors.Default())

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := s.router.Group("/api")

	api.SetupHealthRoutes(apiGroup, s.db, s.library)
	api.SetupChannelRoutes(apiGroup, s.channelService, s.timelineService)
	api.SetupPlayoutRoutes(apiGroup, s.playoutService, s.repos, s.config.Build)
}

// Start launches the background scheduler, the optional NATS trigger and
// then serves HTTP until Shutdown
func (s *Server) Start() error {
	s.Router()

	if err := s.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	if s.config.Events.Enabled {
		nc, err := trigger.Connect(s.config.Events.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		s.nc = nc
		s.subscriber = trigger.NewSubscriber(nc, s.playoutService, s.config.Events.SubjectPrefix, s.config.Build)
		if err := s.subscriber.Start(); err != nil {
			return fmt.Errorf("failed to start build trigger: %w", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Log.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Msg("Starting HTTP server")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server. In-flight builds finish or are
// canceled by their timeout before the scheduler returns.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	var errs []error

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
	}

	if s.subscriber != nil {
		if err := s.subscriber.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("trigger shutdown error: %w", err))
		}
	}
	if s.nc != nil {
		s.nc.Close()
	}

	s.scheduler.Stop()

	logger.Log.Info().Msg("Server stopped")
	return errors.Join(errs...)
}
