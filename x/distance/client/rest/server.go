// Package rest serves the read-only HTTP surface the distance oracle polls.
package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/paw-chain/distance/x/distance/types"
)

// ContextProvider returns a query context at height. Zero means the latest
// committed height.
type ContextProvider func(height int64) (sdk.Context, error)

// Config holds server configuration
type Config struct {
	ListenAddr     string
	EnableCORS     bool
	AllowedOrigins []string
	// AccessLog receives combined-format access logs when set.
	AccessLog io.Writer
}

// DefaultConfig returns the default server configuration
func DefaultConfig() Config {
	return Config{
		ListenAddr:     "127.0.0.1:1318",
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
	}
}

// Server exposes the distance queries over HTTP.
type Server struct {
	handler    *Handler
	router     *mux.Router
	httpServer *http.Server
	logger     log.Logger

	wg sync.WaitGroup
}

// NewServer creates a new server
func NewServer(
	cfg Config,
	queries types.QueryServer,
	graph types.WotReader,
	ctxProvider ContextProvider,
	logger log.Logger,
) *Server {
	router := mux.NewRouter()
	handler := NewHandler(queries, graph, ctxProvider, logger)
	handler.RegisterRoutes(router)

	var httpHandler http.Handler = router
	if cfg.EnableCORS {
		c := cors.New(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		})
		httpHandler = c.Handler(httpHandler)
	}
	if cfg.AccessLog != nil {
		httpHandler = handlers.CombinedLoggingHandler(cfg.AccessLog, httpHandler)
	}
	httpHandler = handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(httpHandler)

	return &Server{
		handler: handler,
		router:  router,
		logger:  logger,
		httpServer: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      httpHandler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts serving in the background
func (s *Server) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info("distance rest server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("distance rest server failed", "error", err)
		}
	}()
}

// Stop shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown rest server: %w", err)
	}
	s.wg.Wait()
	return nil
}
