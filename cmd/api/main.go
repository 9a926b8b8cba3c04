package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinescope-backend/config"
	"cinescope-backend/internal/delivery/http/middleware"
	v1 "cinescope-backend/internal/delivery/http/v1"
	"cinescope-backend/internal/domain"
	"cinescope-backend/internal/infrastructure/cache"
	"cinescope-backend/internal/repository/memory"
	pgrepo "cinescope-backend/internal/repository/postgres"
	"cinescope-backend/internal/usecase"
	"cinescope-backend/pkg/logger"
	"cinescope-backend/pkg/storage"
	"cinescope-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const serviceName = "cinescope-backend"

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- Store ---
	var (
		adRepo    domain.AdRequestRepository
		txManager domain.TransactionManager
		dbPinger  v1.Pinger
	)
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn().Msg("Using in-memory ad request store, data is lost on restart")
		adRepo = memory.NewAdRequestRepository()
		txManager = memory.NewTransactionManager()
	default:
		pgxPool, err := pgrepo.NewPgxPool(rootCtx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pgxPool.Close()
		log.Info().Msg("Successfully connected to PostgreSQL via pgx")

		if cfg.DBAutoMigrate {
			applied, err := pgrepo.Migrate(rootCtx, pgxPool)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to run migrations")
			}
			log.Info().Strs("applied", applied).Msg("Migrations up to date")
		}

		adRepo = pgrepo.NewAdRequestRepository(pgxPool)
		txManager = pgrepo.NewTransactionManager(pgxPool)
		dbPinger = pgxPool
	}

	// --- Cache ---
	projectionCache := cache.NewMemoryCache(cfg.AdCacheTTL, 2*cfg.AdCacheTTL)
	if cfg.CacheBackend == config.CacheRedis {
		redisClient, err := cache.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		projectionCache = cache.NewRedisCache(redisClient)
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis for the ad schedule cache")
	}

	// --- Creative storage (R2) ---
	var creatives usecase.CreativeStore
	if cfg.UploadsEnabled() {
		r2, err := storage.NewR2CreativeStore(
			rootCtx,
			cfg.R2AccountID,
			cfg.R2AccessKeyID,
			cfg.R2AccessKeySecret,
			cfg.R2BucketName,
			cfg.R2PublicURL,
			cfg.R2UploadTimeout,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize R2 creative storage")
		}
		creatives = r2
	} else {
		log.Info().Msg("R2_BUCKET_NAME not set, creative file uploads disabled")
	}

	// --- Ad booking module ---
	visibilityUC := usecase.NewAdVisibilityUsecase(adRepo, projectionCache, cfg.AdCacheTTL)
	bookingUC := usecase.NewAdBookingUsecase(adRepo, txManager, creatives, visibilityUC, cfg)
	retentionUC := usecase.NewRetentionUsecase(adRepo, creatives, visibilityUC, cfg.AdRetentionWindow)
	retentionWorker := usecase.NewRetentionWorker(rootCtx, retentionUC, cfg.AdPurgeInterval)

	mux := http.NewServeMux()
	v1.RegisterAdRequestRoutes(mux, v1.NewAdRequestHandler(bookingUC, visibilityUC, cfg.MaxUploadSizeMB))
	v1.RegisterHealthRoutes(mux, v1.NewHealthHandler(dbPinger))
	v1.RegisterConfigRoutes(mux, v1.NewConfigHandler(cfg))
	mux.Handle("GET /metrics", promhttp.Handler())

	// cleanup every minute, visitor TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		rootCtx,
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,
		3*time.Minute,
		cfg.TrustProxyHeaders,
	)

	// Metrics wraps the mux directly to see the matched pattern. CORS sits
	// next so preflights still get logged and limited.
	handler := middleware.Metrics(mux)
	handler = middleware.NewCORSMiddleware(cfg)(handler)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart(serviceName, cfg.Env, cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()
	retentionWorker.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.ServiceStop(serviceName)
}
