package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/weatherbook/webapp/config"
	"github.com/weatherbook/webapp/internal/db"
	"github.com/weatherbook/webapp/internal/handlers"
	"github.com/weatherbook/webapp/internal/mailer"
	"github.com/weatherbook/webapp/internal/services"
	"github.com/weatherbook/webapp/internal/store"
	"github.com/weatherbook/webapp/internal/token"
	"github.com/weatherbook/webapp/internal/weather"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	logger     *zap.Logger
}

// New constructs a Server with all collaborators wired.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}
	if cfg.ResetTokenSecret == "" {
		return nil, errors.New("RESET_TOKEN_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	cityRepo := store.NewCityRepository(dbConn)

	weatherClient := weather.NewClient(cfg.WeatherAPIKey)
	smtpMailer, err := mailer.NewSMTPMailer(cfg.SMTP)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	issuer := token.NewIssuer(cfg.ResetTokenSecret, cfg.ResetTokenTTL)

	userService := services.NewUserService(userRepo, logger)
	cityService := services.NewCityService(cityRepo, weatherClient, logger)
	resetService := services.NewResetService(userRepo, issuer, smtpMailer, cfg.BaseURL, logger)

	sessionManager := handlers.NewSessionManager(cfg.SessionSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Group(func(r chi.Router) {
		handlers.AuthRouter(r, userService, sessionManager, logger)
		handlers.ResetRouter(r, userService, resetService, sessionManager, logger)
	})
	router.Group(func(r chi.Router) {
		handlers.WeatherRouter(r, cityService, sessionManager, logger)
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
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
