package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/matprat/matprat/backend/config"
	"github.com/matprat/matprat/backend/internal/api"
	"github.com/matprat/matprat/backend/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	log    logrus.FieldLogger
}

// New builds the router with the middleware chain, page templates, static
// files and every route.
func New(cfg *config.Config, deps api.Deps) (*Server, error) {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := api.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(
		middleware.RequestLogger(deps.Log),
		middleware.ErrorHandler(deps.Log, cfg.IsDevelopment()),
		middleware.CORS(cfg.CORSOrigins),
	)

	if cfg.StaticDir != "" {
		router.Static("/static", cfg.StaticDir)
	}
	if cfg.ImageStorage == "local" && cfg.ImageDir != "" {
		router.Static(cfg.ImageURLPrefix, cfg.ImageDir)
	}

	deps.SecureCookies = !cfg.IsDevelopment()
	api.RegisterRoutes(router, deps)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: deps.Log,
	}, nil
}

// Router exposes the handler, mostly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.log.WithField("addr", s.http.Addr).Info("Server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
