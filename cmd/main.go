package main

import (
	"context"
	"fmt"
	"log"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"attendhq/internal/analytics"
	"attendhq/internal/caching"
	"attendhq/internal/config"
	"attendhq/internal/handlers"
	"attendhq/internal/jobs"
	"attendhq/internal/middleware"
	"attendhq/internal/repositories"
	"attendhq/internal/services"
	"attendhq/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generated secret for development
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret")
	}

	// Token verification: remote JWKS when configured, HMAC otherwise.
	var verifier *middleware.TokenVerifier
	if cfg.JWKSURL != "" {
		verifier, err = middleware.NewJWKSVerifier(ctx, cfg.JWKSURL)
		if err != nil {
			log.Fatalf("Failed to initialize JWKS verifier: %v", err)
		}
	} else {
		verifier = middleware.NewHMACVerifier(jwtSecret)
	}

	minioSvc, err := services.NewMinioService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	orgRepo := repositories.NewOrganizationRepo(pool)
	attendanceRepo := repositories.NewAttendanceRepo(pool)

	// Cache
	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// Services
	analyticsSvc := analytics.NewService(attendanceRepo, cacheSvc)
	attendanceSvc := services.NewAttendanceService(attendanceRepo, cacheSvc)
	orgSvc := services.NewOrganizationService(orgRepo, userRepo)
	reportSvc := services.NewReportService(attendanceRepo, analyticsSvc, minioSvc, cfg.ReportBucket)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(userRepo, cacheSvc, jwtSecret)
	orgHandlers := handlers.NewOrganizationHandlers(orgSvc)
	attendanceHandlers := handlers.NewAttendanceHandlers(attendanceSvc)
	analyticsHandlers := handlers.NewAnalyticsHandlers(analyticsSvc, reportSvc)

	orgAccess := middleware.NewOrgAccessMiddleware(orgRepo)

	// Background jobs
	if cfg.StatsRefreshEnabled {
		refresher, err := jobs.NewStatsRefresher(analyticsSvc, orgRepo)
		if err != nil {
			log.Fatalf("Failed to initialize stats refresher: %v", err)
		}
		refresher.Start()
		defer func() {
			if err := refresher.Stop(); err != nil {
				log.Printf("Failed to stop stats refresher: %v", err)
			}
		}()
	}

	e := echo.New()

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", handlers.HealthCheck)
	e.GET("/health/ready", handlers.ReadinessCheck(pool, cacheSvc))

	v1 := e.Group("/v1")
	v1.Use(middleware.VersionHeader("v1"))

	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)

	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(verifier))

	protected.GET("/me", authHandlers.Me)
	protected.POST("/auth/logout", authHandlers.Logout)

	protected.POST("/organizations", orgHandlers.CreateOrganization)
	protected.GET("/organizations", orgHandlers.ListOrganizations)

	// Everything below is scoped to one organization and gated on
	// membership.
	org := protected.Group("/organizations/:orgID")
	org.Use(orgAccess.RequireOrgAccess())

	org.GET("", orgHandlers.GetOrganization)
	org.PUT("", orgHandlers.UpdateOrganization)
	org.POST("/access", orgHandlers.EnsureAccess)

	org.POST("/attendance", attendanceHandlers.CreateAttendance)
	org.GET("/attendance", attendanceHandlers.GetAttendanceByMonth)
	org.GET("/attendance/recent", attendanceHandlers.GetRecentAttendance)
	org.GET("/attendance/:serviceID/visitors", attendanceHandlers.GetVisitors)
	org.POST("/attendance/import", attendanceHandlers.ImportVisitors)

	org.GET("/analytics/stats", analyticsHandlers.GetMonthlyStats)
	org.GET("/analytics/totals", analyticsHandlers.GetYearlyTotals)
	org.GET("/analytics/compare", analyticsHandlers.CompareYears)
	org.GET("/analytics/export", analyticsHandlers.ExportMonthlyReport)

	log.Printf("AttendHQ server v%s starting on port %d", version, cfg.Port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Port)))
}
