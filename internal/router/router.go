package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "freightdesk/docs"
	"freightdesk/internal/handler"
	"freightdesk/internal/middleware"
)

// Options configures router-level middleware.
type Options struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	opts Options,
	extractionH *handler.ExtractionHandler,
	exportH *handler.ExportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	extractions := v1.Group("/extractions")
	extractions.POST("", middleware.BodyLimit(opts.MaxBodyBytes), extractionH.Submit)
	extractions.GET("", extractionH.List)
	extractions.GET("/:id", extractionH.GetByID)
	extractions.POST("/:id/retry", extractionH.Retry)

	exports := v1.Group("/exports")
	exports.GET("/payloads.csv", exportH.PayloadsCSV)

	return r
}
