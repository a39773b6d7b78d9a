package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/Ziad0dev/lastfm-wallpaper/internal/config"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/delivery"
	lfhttp "github.com/Ziad0dev/lastfm-wallpaper/internal/http"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/lastfm"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/wallpaper"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// Validator checks usernames.
type Validator interface {
	Validate(ctx context.Context, username string) lastfm.Validation
}

// GenerateFunc runs one wallpaper generation.
type GenerateFunc func(ctx context.Context, username string, period lastfm.Period, limit int) (*wallpaper.Result, error)

// Server wires the HTTP surface to the generation pipeline.
type Server struct {
	settings  *config.Settings
	registry  *delivery.Registry
	validator Validator
	generate  GenerateFunc
}

// New creates a Server. managerOpts are passed to every wallpaper.Manager
// the server creates.
func New(settings *config.Settings, registry *delivery.Registry, managerOpts ...wallpaper.Option) *Server {
	client := lfhttp.NewClient(lfhttp.WithTimeout(settings.HTTPTimeoutDuration()))

	return &Server{
		settings:  settings,
		registry:  registry,
		validator: lastfm.NewClient(client, settings.APIKey, lastfm.WithBaseURL(settings.APIBaseURL)),
		generate: func(ctx context.Context, username string, period lastfm.Period, limit int) (*wallpaper.Result, error) {
			m := wallpaper.NewManager(settings, logProgress(username), managerOpts...)
			return m.Generate(ctx, username, period, limit)
		},
	}
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.settings.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/", HandleIndex())
	r.Get("/health", HandleHealth(s.settings, s.registry))
	r.Get("/download/{key}", HandleDownload(s.registry))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestSize(MaxBodyBytes))
		r.Post("/validate", HandleValidate(s.settings, s.validator))
		r.Post("/generate", HandleGenerate(s.settings, s.registry, s.generate))
	})

	return r
}

// ListenAndServe serves on the configured port until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.settings.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logrus.WithField("addr", srv.Addr).Info("Starting server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func logProgress(username string) func(wallpaper.ProgressEvent) {
	log := logrus.WithField("username", username)
	return func(e wallpaper.ProgressEvent) {
		switch e.Level {
		case wallpaper.LevelVerbose:
			log.Debug(e.Message)
		case wallpaper.LevelWarning:
			log.Warn(e.Message)
		case wallpaper.LevelError:
			log.Error(e.Message)
		default:
			log.Info(e.Message)
		}
	}
}
