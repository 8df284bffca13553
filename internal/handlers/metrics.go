package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/dev-event-hub/internal/metrics"
)

// RegisterMetricRoutes exposes Prometheus metrics.
//
// GET /metrics
// - Unauthenticated, intended for an in-cluster scraper
func RegisterMetricRoutes(r gin.IRoutes, m *metrics.Metrics) {
	r.GET("/metrics", gin.WrapH(m.Handler()))
}
