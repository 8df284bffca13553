package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/dev-event-hub/internal/config"
	"github.com/PratikDhanave/dev-event-hub/internal/handlers"
	"github.com/PratikDhanave/dev-event-hub/internal/imagehost"
	"github.com/PratikDhanave/dev-event-hub/internal/metrics"
	"github.com/PratikDhanave/dev-event-hub/internal/store"
	"github.com/PratikDhanave/dev-event-hub/internal/web"
)

// NewRouter wires operational endpoints, the event API and the pages.
// Operational: /health, /ready, /metrics
// API: /api/events, /api/events/:slug
// Pages: /, /events/:slug, /create-event, /static/*
func NewRouter(cfg config.Config, st store.EventStore, images imagehost.Uploader, m *metrics.Metrics) (*gin.Engine, error) {
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	maxBody := cfg.MaxUploadMB << 20

	cc := corsConfig(cfg.AllowedOrigins)
	if err := cc.Validate(); err != nil {
		return nil, fmt.Errorf("ALLOWED_ORIGINS: %w", err)
	}

	r := gin.New()
	r.MaxMultipartMemory = maxBody
	r.Use(
		RequestID(),
		RequestLogger(),
		gin.Recovery(),
		m.Middleware(),
		cors.New(cc),
		BodyLimit(maxBody),
	)

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", web.Static())

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the DB dependency is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	handlers.RegisterMetricRoutes(r, m)
	handlers.RegisterEventRoutes(r, handlers.EventDeps{
		Store:       st,
		Images:      m.InstrumentUploader(images),
		ImageFolder: cfg.ImageFolder,
		Metrics:     m,
	})
	handlers.RegisterPageRoutes(r, st)

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not found", "error": "no route for " + c.Request.URL.Path})
			return
		}
		c.HTML(http.StatusNotFound, "not-found.html", gin.H{"Title": "Not found"})
	})

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AddAllowHeaders(requestIDHeader)
	cfg.AddExposeHeaders(requestIDHeader)

	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
