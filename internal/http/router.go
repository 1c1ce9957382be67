package http

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reddit-persona/internal/metrics"
	"reddit-persona/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
// limiter, jwtSvc y metricsHandler pueden ser nil.
func NewRouter(
	logger *zap.Logger,
	personaH *PersonaHandler,
	formH *FormHandler,
	jwtSvc *service.JWTService,
	limiter service.GenerationRateLimiter,
	m *metrics.Metrics,
	metricsHandler http.Handler,
) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(loadTemplates())

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	limit := rateLimitMiddleware(limiter, m)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	r.GET("/", formH.Index)
	r.POST("/persona", limit, formH.Generate)

	api := r.Group("/api", jsonContentTypeMiddleware(), optionalJWTMiddleware(jwtSvc))
	api.POST("/personas", limit, personaH.CreatePersona)
	api.GET("/personas", personaH.ListPersonas)
	api.GET("/personas/:id", personaH.GetPersona)
	api.GET("/personas/:id/text", personaH.GetPersonaText)
	api.GET("/personas/:id/related", personaH.RelatedTopics)
	api.POST("/topics", limit, personaH.CreateTopics)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// rateLimitMiddleware limita por subject del token o, sin token, por IP.
func rateLimitMiddleware(limiter service.GenerationRateLimiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := "ip:" + c.ClientIP()
		if claims, ok := GetAuthClaims(c); ok {
			key = "sub:" + claims.Subject
		}
		allowed, retryAfter := limiter.Allow(c.Request.Context(), key)
		if !allowed {
			m.RateLimited()
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(retryAfter)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many persona requests, try again later"})
			return
		}
		c.Next()
	}
}

// retryAfterSeconds redondea hacia arriba; nunca menos de 1.
func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
