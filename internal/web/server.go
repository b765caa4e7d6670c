// Package web serves the reminder form as a small local web page plus a
// JSON endpoint for the same builder.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/takeaship/slack-remind-command-constructor/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

type Config struct {
	Addr       string
	Mode       string
	RatePerMin int
	Logger     *slog.Logger
	// Location for date formatting; nil means time.Local.
	Location *time.Location
}

type Server struct {
	engine *gin.Engine
	addr   string
	l      *slog.Logger
}

func New(cfg Config) (*Server, error) {
	if cfg.Mode == "" {
		cfg.Mode = gin.ReleaseMode
	}
	gin.SetMode(cfg.Mode)
	if cfg.Logger == nil {
		cfg.Logger = logger.Get()
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)
	engine.Use(gin.Recovery(), RequestLogger(cfg.Logger))
	if cfg.RatePerMin > 0 {
		engine.Use(RateLimit(newRateLimiter(cfg.RatePerMin)))
	}

	h := &handler{loc: cfg.Location}
	engine.GET("/", h.form)
	engine.POST("/", h.submit)
	engine.GET("/api/command", h.command)
	engine.GET("/healthz", h.health)

	return &Server{engine: engine, addr: cfg.Addr, l: cfg.Logger}, nil
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.l.Info("HTTP server listening", slog.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.l.Info("HTTP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
