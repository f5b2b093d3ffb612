package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/floodwatch/apiserver/config"
	"github.com/floodwatch/apiserver/internal/auth"
	"github.com/floodwatch/apiserver/internal/db"
	"github.com/floodwatch/apiserver/internal/handlers"
	"github.com/floodwatch/apiserver/internal/logging"
	"github.com/floodwatch/apiserver/internal/notify"
	"github.com/floodwatch/apiserver/internal/services"
	"github.com/floodwatch/apiserver/internal/storage"
	"github.com/floodwatch/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server with all collaborators wired from config.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	log := logging.NewDefault()

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	objectStore, err := storage.NewFromConfig(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("ensure media bucket: %w", err)
	}

	messenger, err := notify.NewSMSGateway(cfg.SMS)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	mailer := notify.NewSMTPMailer(cfg.SMTP)

	userRepo := store.NewUserRepository(dbConn)
	reportRepo := store.NewReportRepository(dbConn)

	userService := services.NewUserService(userRepo)
	reportService := services.NewReportService(reportRepo)
	mediaService := services.NewMediaService(objectStore, cfg.Storage.PublicBaseURL, log)
	alertService := services.NewAlertService(userRepo, messenger, log)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.SessionTTL, cfg.JWT.ResetTTL)
	authMiddleware := handlers.RequireAuth(tokens)

	authHandler := handlers.NewAuthHandler(userService, tokens, mediaService, mailer, cfg.AppBaseURL, log)
	reportHandler := handlers.NewReportHandler(reportService, mediaService, log)
	adminHandler := handlers.NewAdminHandler(userService, reportService, log)
	alertHandler := handlers.NewAlertHandler(alertService, log)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Post("/register", authHandler.Register)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler, authMiddleware)
	})
	router.Route("/alerts", func(r chi.Router) {
		handlers.AlertRouter(r, alertHandler)
	})
	router.Route("/reports", func(r chi.Router) {
		handlers.ReportRouter(r, reportHandler, authMiddleware)
	})
	router.Route("/admin", func(r chi.Router) {
		handlers.AdminRouter(r, adminHandler, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
