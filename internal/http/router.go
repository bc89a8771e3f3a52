// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, error
// reporting, metrics, CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus + Sentry)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Personal data is never cached by intermediaries
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/isp-onboarding-backend/docs"
	"github.com/tbourn/isp-onboarding-backend/internal/config"
	"github.com/tbourn/isp-onboarding-backend/internal/document"
	"github.com/tbourn/isp-onboarding-backend/internal/http/handlers"
	"github.com/tbourn/isp-onboarding-backend/internal/http/middleware"
	"github.com/tbourn/isp-onboarding-backend/internal/repo"
	"github.com/tbourn/isp-onboarding-backend/internal/services"
)

// exposedHeaders are the response headers browser clients may read.
var exposedHeaders = []string{
	middleware.HeaderRequestID,
	middleware.HeaderIdempotencyReplayed,
	"ETag",
	"Content-Disposition",
	"Content-Length",
}

var allowedHeaders = []string{
	"Origin", "Content-Type", "Accept", "If-None-Match",
	middleware.HeaderIdempotencyKey,
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the public API under cfg.APIBasePath (default "/api").
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Sentry: per-request hub; re-panics into Recovery
//  6. Body size limiter
//  7. Metrics
//  8. CORS and Security headers
//  9. gzip (PDF downloads excluded)
//
// The forms group adds the idempotency validator and the per-IP rate
// limiter, which budgets submissions and reads separately; a replayed
// Idempotency-Key bypasses the limiter.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery(middleware.RecoveryOptions{ExposeDetail: !cfg.IsProduction()}))

	// 5) Error reporting
	r.Use(middleware.Sentry())

	// 6) Global body size limit (signatures arrive as base64 data URLs)
	r.Use(limitBody(cfg.MaxBodyBytes))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) CORS posture (allow all when no allowlist is configured)
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     allowedHeaders,
		ExposeHeaders:    exposedHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:    cfg.Security.EnableHSTS,
		HSTSMaxAge:    cfg.Security.HSTSMaxAge,
		NoStore:       true,
		EnablePolicy:  true,
		ExposeHeaders: exposedHeaders[1:],
	}))

	// 9) Compression
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`/pdf$`})))

	// Fallbacks
	r.NoRoute(handlers.NotFound)
	r.NoMethod(handlers.MethodNotAllowed)

	// Docs
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: service ← db/renderer
	forms := &services.FormService{
		DB:              db,
		Renderer:        document.New(cfg.Document.OrgName, cfg.Document.OrgAddress, cfg.Document.OrgContact),
		FrontendBaseURL: cfg.FrontendBaseURL,
		APIBaseURL:      cfg.PublicAPIBaseURL + cfg.APIBasePath,
		IdempotencyTTL:  cfg.IdempotencyTTL,
	}
	h := handlers.New(forms, handlers.Options{ExposeErrors: !cfg.IsProduction()})

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.GET("/health", h.Health)

	rl := middleware.NewRateLimiter(
		middleware.Budget{RPS: cfg.RateRPS, Burst: cfg.RateBurst},
		middleware.Budget{RPS: cfg.ReadRateRPS, Burst: cfg.ReadRateBurst},
		middleware.KeyByIP(),
	)
	fg := api.Group("/forms")
	fg.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))
	fg.Use(rl.Handler())
	{
		fg.POST("", h.CreateForm)
		fg.GET("/:uniqueId", h.GetForm)
		fg.GET("/:uniqueId/pdf", h.GetFormPDF)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
