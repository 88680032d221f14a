// Package api provides the HTTP REST API and WebSocket server for the
// EnerLink gateway.
//
// It exposes telemetry ingestion and queries, the pending-command queue,
// house registration, user login, and a live measurement feed to
// dashboards over WebSocket.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/enerlink/enerlink-core/internal/auth"
	"github.com/enerlink/enerlink-core/internal/command"
	"github.com/enerlink/enerlink-core/internal/house"
	"github.com/enerlink/enerlink-core/internal/infrastructure/config"
	"github.com/enerlink/enerlink-core/internal/infrastructure/logging"
	"github.com/enerlink/enerlink-core/internal/recharge"
	"github.com/enerlink/enerlink-core/internal/telemetry"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.ServerConfig
	WS        config.WebSocketConfig
	Security  config.SecurityConfig
	Telemetry config.TelemetryConfig
	Logger    *logging.Logger
	Recorder  *telemetry.Recorder
	Houses    house.Repository
	Commands  command.Store
	Users     auth.UserRepository
	Recharge  *recharge.Service
	// ExternalHub, if set, is used instead of creating a new hub. The
	// MQTT ingest path shares the hub so broker-sourced measurements
	// reach WebSocket subscribers too.
	ExternalHub *Hub
	Version     string
}

// Server is the HTTP API server for the EnerLink gateway.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg         config.ServerConfig
	wsCfg       config.WebSocketConfig
	secCfg      config.SecurityConfig
	telCfg      config.TelemetryConfig
	logger      *logging.Logger
	recorder    *telemetry.Recorder
	houses      house.Repository
	commands    command.Store
	users       auth.UserRepository
	recharge    *recharge.Service
	version     string
	server      *http.Server
	hub         *Hub
	externalHub bool               // true if hub was injected externally
	cancel      context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Recorder == nil {
		return nil, fmt.Errorf("telemetry recorder is required")
	}
	if deps.Houses == nil {
		return nil, fmt.Errorf("house repository is required")
	}
	if deps.Commands == nil {
		return nil, fmt.Errorf("command store is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if deps.Recharge == nil {
		return nil, fmt.Errorf("recharge service is required")
	}
	if deps.Security.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	s := &Server{
		cfg:      deps.Config,
		wsCfg:    deps.WS,
		secCfg:   deps.Security,
		telCfg:   deps.Telemetry,
		logger:   deps.Logger,
		recorder: deps.Recorder,
		houses:   deps.Houses,
		commands: deps.Commands,
		users:    deps.Users,
		recharge: deps.Recharge,
		version:  deps.Version,
	}

	// Use externally-provided hub if available (needed when the MQTT
	// ingest bridge also broadcasts through it).
	if deps.ExternalHub != nil {
		s.hub = deps.ExternalHub
		s.externalHub = true
	}

	return s, nil
}

// Hub returns the server's WebSocket hub. It is nil until Start() runs,
// unless an external hub was injected.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub, and launches the HTTP
// listener in a background goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Create internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	// Create WebSocket hub (unless one was injected externally)
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
		go s.hub.Run(srvCtx)
	}

	// Build router
	router := s.buildRouter()

	// Create HTTP server
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	// Start listening in background
	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
