package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asfi50/jnucsu-backend/internal/config"
	"github.com/asfi50/jnucsu-backend/internal/domain"
	"github.com/asfi50/jnucsu-backend/internal/handler"
	"github.com/asfi50/jnucsu-backend/internal/middleware"
	"github.com/asfi50/jnucsu-backend/internal/repository"
	"github.com/asfi50/jnucsu-backend/internal/routes"
	"github.com/asfi50/jnucsu-backend/internal/service"
	pkgcache "github.com/asfi50/jnucsu-backend/pkg/cache"
	pkgjwt "github.com/asfi50/jnucsu-backend/pkg/jwt"
	pkglogger "github.com/asfi50/jnucsu-backend/pkg/logger"
	pkgredis "github.com/asfi50/jnucsu-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	dotenvFiles := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	pkglogger.Init(cfg.Env)
	log := pkglogger.Get()
	log.Info().Str("env", cfg.Env).Strs("dotenv", dotenvFiles).Msg("starting jnucsu-backend")

	db, err := initDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := db.AutoMigrate(
		&domain.ContentItem{},
		&domain.ContentVersion{},
		&domain.ModerationDecision{},
		&domain.EngagementRecord{},
	); err != nil {
		log.Fatal().Err(err).Msg("automigrate failed")
	}

	var redisClient *goredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, counts served from database")
		redisClient = nil
	}
	cacheSvc := pkgcache.New(redisClient)

	jwtManager := pkgjwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	// Repositories
	contentRepo := repository.NewContentRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)

	// Services
	authz := service.NewAuthorizer()
	moderationSvc := service.NewModerationService(contentRepo, versionRepo, authz)
	reviewSvc := service.NewReviewService(contentRepo)
	engagementSvc := service.NewEngagementService(engagementRepo, cacheSvc)

	// Handlers
	moderationHandler := handler.NewModerationHandler(moderationSvc)
	engagementHandler := handler.NewEngagementHandler(engagementSvc)
	adminHandler := handler.NewAdminHandler(reviewSvc)

	if cfg.Env != "local" && cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	}))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.Setup(router, moderationHandler, engagementHandler, adminHandler, jwtManager)

	// Periodic orphaned-version scan. Findings are logged and counted,
	// never repaired: which write wins is a policy decision.
	stopScan := make(chan struct{})
	if cfg.IntegrityScanMinutes > 0 {
		go runIntegrityScan(versionRepo, time.Duration(cfg.IntegrityScanMinutes)*time.Minute, stopScan)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(stopScan)

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

func runIntegrityScan(versionRepo repository.VersionRepository, interval time.Duration, stop <-chan struct{}) {
	log := pkglogger.Get()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			orphans, err := versionRepo.FindOrphans()
			if err != nil {
				log.Error().Err(err).Msg("integrity scan failed")
				continue
			}
			if len(orphans) == 0 {
				continue
			}
			middleware.CountOrphanedVersions(len(orphans))
			for _, o := range orphans {
				log.Error().
					Str("content_item_id", o.ContentItemID).
					Str("version_id", o.VersionID).
					Uint("version_number", o.VersionNumber).
					Str("current_version_id", o.CurrentVersionID).
					Msg("orphaned content version detected")
			}
		}
	}
}
