package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/asistia/care-api/internal/middleware"
)

// Handler registers its routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
}

// New assembles the engine: open health and metrics endpoints, then
// the authenticated /api/v1 surface.
func New(
	log *zerolog.Logger,
	auth *middleware.AuthMiddleware,
	cfg Config,
	health Handler,
	handlers ...Handler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
	)

	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  cfg.RateLimit,
			Burst: cfg.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	health.RegisterRoutes(&engine.RouterGroup)

	api := engine.Group("/api/v1")
	api.Use(auth.Authenticate())
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}

	return engine
}
