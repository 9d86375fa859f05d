package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"twfollowers/pkg/config"
	"twfollowers/pkg/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

// NewServer builds the gin engine with every route registered and the
// http.Server that serves it
func NewServer(cfg config.ServerConfig, svc Service, log logger.Logger) (*gin.Engine, *http.Server, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.SetHTMLTemplate(tmpl)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	NewController(svc, log).RegisterRoutes(r.Group(""))

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return r, srv, nil
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"humanize": func(n int64) string { return humanize.Comma(n) },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// Serve runs srv until ctx is cancelled, then shuts it down within
// shutdownTimeout
func Serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log logger.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		logger.LogComponentStart(log, "http_server", map[string]interface{}{"addr": srv.Addr})
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.LogComponentStop(log, "http_server", "shutdown")
		return nil
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
