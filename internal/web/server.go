// Package web exposes the engine to the surrounding UI: snapshots,
// pair configuration, drawing and viewport persistence.
package web

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/aynu/chartcore/internal/chart"
	"github.com/aynu/chartcore/internal/domain"
	"github.com/aynu/chartcore/internal/market"
)

type Server struct {
	router    *http.ServeMux
	server    *http.Server
	engine    *market.Engine
	viewports *chart.ViewportController
	drawings  domain.DrawingRepository
	logger    *zap.Logger
}

func NewServer(
	port int,
	engine *market.Engine,
	viewports *chart.ViewportController,
	drawings domain.DrawingRepository,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:    http.NewServeMux(),
		engine:    engine,
		viewports: viewports,
		drawings:  drawings,
		logger:    logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	// Market state
	s.router.HandleFunc("GET /api/snapshot", s.handleSnapshot)

	// Pair configuration
	s.router.HandleFunc("GET /api/pairs", s.handleListPairs)
	s.router.HandleFunc("GET /api/pairs/config", s.handlePairConfig)
	s.router.HandleFunc("POST /api/pair", s.handleSetPair)
	s.router.HandleFunc("POST /api/timeframe", s.handleSetTimeframe)

	// Drawings
	s.router.HandleFunc("GET /api/drawings", s.handleListDrawings)
	s.router.HandleFunc("POST /api/drawings", s.handleSaveDrawing)
	s.router.HandleFunc("DELETE /api/drawings/{id}", s.handleDeleteDrawing)

	// Viewport
	s.router.HandleFunc("GET /api/viewport", s.handleGetViewport)
	s.router.HandleFunc("PUT /api/viewport", s.handlePutViewport)
}

func (s *Server) Start() error {
	s.logger.Info("web server listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }
