package router

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/kitstock/internal/config"
	"github.com/mamadbah2/kitstock/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.Handler, cfg config.ServerConfig, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(gin.CustomRecovery(recoveryHandler(logger)))

	r.SetHTMLTemplate(template.Must(handlers.Templates()))
	r.StaticFS("/static", handlers.Static())

	// Health stays outside the limiter so uptime checks are never throttled.
	r.GET("/health", handler.Health)

	limited := r.Group("/")
	if cfg.RateLimitRPS > 0 {
		limited.Use(rateLimitMiddleware(newClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst), logger))
	}

	limited.GET("/", handler.Dashboard)
	limited.GET("/catalogue", handler.Catalogue)
	limited.GET("/record-sale", handler.SaleForm)
	limited.POST("/record-sale", handler.RecordSale)
	limited.GET("/customers", handler.Customers)
	limited.GET("/export/:which", handler.Export)
	limited.GET("/debug/sheet", handler.DebugSheet)

	api := limited.Group("/api/v1")
	{
		api.GET("/dashboard", handler.APIDashboard)
		api.GET("/catalogue", handler.APICatalogue)
		api.GET("/stock", handler.APIStock)
		api.GET("/customers", handler.APICustomers)
		api.POST("/sales", handler.APIRecordSale)
		api.GET("/snapshots", handler.APISnapshots)
	}

	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not Found")
	})

	logger.Info("router initialized")

	return r
}
