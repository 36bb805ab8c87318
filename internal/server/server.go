package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sankalpa/vivah-portrait-go/internal/domain"
	"github.com/sankalpa/vivah-portrait-go/internal/util"
)

// PortraitGenerator is the single inbound operation of the core pipeline.
type PortraitGenerator interface {
	Generate(ctx context.Context, photo *domain.Photo) (*domain.GenerationResult, error)
}

// SubjectCounter is the optional pre-check that counts people in an upload.
type SubjectCounter interface {
	CountSubjects(ctx context.Context, photo *domain.Photo) (int, error)
}

// Dependencies wires the HTTP surface to the core. Headcount and RateLimiter
// may be nil; both features degrade to no-ops.
type Dependencies struct {
	Generator       PortraitGenerator
	Headcount       SubjectCounter
	RateLimiter     *RateLimiter
	Breaker         *util.CircuitBreaker
	MaxUploadBytes  int64
	SubjectPrecheck bool
	Logger          *zap.Logger
}

type Server struct {
	httpServer *http.Server
	deps       *Dependencies
	logger     *zap.Logger
}

func New(port int, deps *Dependencies) *Server {
	s := &Server{
		deps:   deps,
		logger: deps.Logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.Middleware)
	}
	api.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
