package app

import (
	"context"

	"github.com/Rinkore1/BookServer/internal/auth/credentials"
	"github.com/Rinkore1/BookServer/internal/auth/handler"
	"github.com/Rinkore1/BookServer/internal/books"
	"github.com/Rinkore1/BookServer/internal/breaker"
	"github.com/Rinkore1/BookServer/internal/config"
	"github.com/Rinkore1/BookServer/internal/kv"
	"github.com/Rinkore1/BookServer/internal/middleware"
	"github.com/Rinkore1/BookServer/internal/ratelimit"
	"github.com/Rinkore1/BookServer/internal/session"
	"github.com/Rinkore1/BookServer/internal/users"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	sessions := session.NewManager(infra.Store, cfg.SessionTTL)
	credentialService := credentials.NewService(users.NewPostgresRepository(infra.DB))

	limiter := newLimiter(ctx, cfg, infra.Store)

	bookService := books.NewService(
		books.NewPostgresRepository(infra.DB),
		breaker.Options{
			FailureRateThreshold: cfg.Breaker.FailureRateThreshold,
			MinimumCalls:         cfg.Breaker.MinimumCalls,
			WaitOpen:             cfg.Breaker.WaitOpen,
			HalfOpenCalls:        cfg.Breaker.HalfOpenCalls,
			WindowSize:           cfg.Breaker.SlidingWindowSize,
		},
	)

	authHandler := handler.NewHandler(credentialService, sessions)
	bookHandler := books.NewHandler(bookService)

	admission := middleware.NewAdmissionMiddleware(limiter)
	authMiddleware := middleware.NewAuthMiddleware(sessions)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// every request passes admission before dispatch
	router.Use(middleware.GinAdmit(admission))

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api/books")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	bookHandler.RegisterRoutes(api)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}

// newLimiter picks the shared window limiter when requests are
// counted in Redis, and the in-process token bucket for single-node
// runs without one. The janitor stops with the app context.
func newLimiter(ctx context.Context, cfg config.Config, store kv.Store) ratelimit.Limiter {
	policy := ratelimit.Policy{
		Limit:         int64(cfg.RateLimitRequests),
		WindowSeconds: cfg.RateLimitWindowSeconds,
	}

	if cfg.RedisAddr == "" {
		local := ratelimit.NewLocalLimiter(policy)
		local.StartJanitor(ctx)
		return local
	}

	return ratelimit.NewWindowLimiter(store, policy)
}
