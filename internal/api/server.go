// Package api serves read-only JSON views of a student's progress over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Veraticus/coursemix/internal/engine"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Options configures the server.
type Options struct {
	Engine         *engine.Engine
	Logger         *slog.Logger
	Address        string
	DisableReqLogs bool

	// CertFile and KeyFile switch Start to HTTPS when both are set.
	CertFile string
	KeyFile  string
}

// Server is the HTTP API.
type Server interface {
	http.Handler
	Start() error
	Stop(context.Context) error
}

type server struct {
	opts   *Options
	app    *echo.Echo
	logger *slog.Logger
}

var _ Server = (*server)(nil)

// NewServer creates a server and registers every route.
func NewServer(opts *Options) Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &server{
		opts:   opts,
		app:    echo.New(),
		logger: logger,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.HidePort = true

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:  true,
			LogURI:     true,
			LogStatus:  true,
			LogLatency: true,
			LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
				s.logger.Info("request",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency", v.Latency)
				return nil
			},
		}))
	}
	s.app.Use(middleware.Recover())

	s.app.HTTPErrorHandler = newHTTPErrorHandler(s.logger)

	s.app.GET("/", home)

	h := &handlers{engine: s.opts.Engine}
	v1 := s.app.Group("/v1")
	v1.GET("/progress", h.progress)
	v1.GET("/grades", h.grades)
	v1.GET("/transcript", h.transcript)
	v1.GET("/suggestions", h.suggestions)
	v1.GET("/reviews", h.reviews)
}

// Start listens on the configured address until Stop is called.
func (s *server) Start() error {
	var err error
	if s.opts.CertFile != "" && s.opts.KeyFile != "" {
		s.logger.Info("Starting API server", "address", s.opts.Address, "tls", true)
		err = s.app.StartTLS(s.opts.Address, s.opts.CertFile, s.opts.KeyFile)
	} else {
		s.logger.Info("Starting API server", "address", s.opts.Address)
		err = s.app.Start(s.opts.Address)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the CourseMix API!")
}
