package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/internmatch/placement-engine/internal/config"
	"github.com/internmatch/placement-engine/internal/delivery"
	"github.com/internmatch/placement-engine/internal/handlers"
	"github.com/internmatch/placement-engine/internal/service"
	"github.com/internmatch/placement-engine/internal/store"
	"github.com/internmatch/placement-engine/pkg/log"
	"github.com/internmatch/placement-engine/pkg/metrics"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	listener net.Listener
	producer *delivery.Producer
	writer   delivery.Writer
}

// New returns a new instance of the placement-engine API server.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
	producer *delivery.Producer,
	writer delivery.Writer,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		listener: listener,
		producer: producer,
		writer:   writer,
	}
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		chiMiddleware.RequestID,
		log.Logger(zap.L(), "api_server"),
		chiMiddleware.Recoverer,
	)

	schedulerService := service.NewSchedulerService(s.store, s.writer, s.cfg)
	approvalService := service.NewApprovalService(s.store, s.producer)
	recommendationService := service.NewRecommendationService(s.store, schedulerService, s.producer, s.cfg)

	h := handlers.NewHandler(approvalService, recommendationService, schedulerService)
	h.RegisterRoutes(router)

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}
