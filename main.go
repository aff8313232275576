package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"github.com/gmfsales/liffbackend/clients/line"
	"github.com/gmfsales/liffbackend/config"
	"github.com/gmfsales/liffbackend/controllers"
	"github.com/gmfsales/liffbackend/database"
	"github.com/gmfsales/liffbackend/formatter"
	"github.com/gmfsales/liffbackend/logger"
	"github.com/gmfsales/liffbackend/middleware"
	"github.com/gmfsales/liffbackend/monitoring"
	"github.com/gmfsales/liffbackend/ratelimit"
	"github.com/gmfsales/liffbackend/services"
	"github.com/gmfsales/liffbackend/utils"
)

const sweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Must("info", "json").Fatal("invalid configuration", zap.Error(err))
	}

	log := logger.Must(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()
	if !cfg.DotEnvLoaded {
		log.Info("no .env file found, using system environment variables")
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter, err := monitoring.NewSentry(cfg.SentryDSN, cfg.Environment)
	if err != nil {
		log.Warn("sentry init failed, monitoring disabled", zap.Error(err))
		reporter = monitoring.Nop()
	}

	var store database.InquiryStore
	var mongoClient *mongo.Client
	if cfg.PersistenceEnabled() {
		client, err := database.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Error("mongo unavailable, persistence disabled", zap.Error(err))
			reporter.CaptureException(err, map[string]string{"component": "persistence"})
		} else {
			mongoClient = client
			store = database.NewInquiryStore(database.OpenCollection(client, cfg.DatabaseName, cfg.InquiryCollection))
			log.Info("persistence enabled",
				zap.String("database", cfg.DatabaseName),
				zap.String("collection", cfg.InquiryCollection),
			)
		}
	} else {
		log.Info("MONGODB_URI not set, persistence disabled")
	}

	limiter, redisClient := newLimiter(ctx, cfg, log)

	var archiver utils.Archiver
	if cfg.ArchiveEnabled() {
		a, err := utils.NewArchiver(ctx, cfg.Archive)
		if err != nil {
			log.Warn("transcript archive disabled", zap.Error(err))
		} else {
			archiver = a
		}
	}

	svc := services.NewSubmissionService(
		store,
		line.NewClient(cfg.ChannelAccessToken, cfg.LineAPIBaseURL, cfg.LinePushTimeout),
		formatter.New(cfg.Location, cfg.DateLayout, cfg.DateTimeLayout),
		archiver,
		reporter,
		log,
		cfg.Location,
	)

	r, err := setupRouter(cfg, svc, limiter, reporter, store != nil, log)
	if err != nil {
		log.Fatal("router setup failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening",
			zap.String("port", cfg.Port),
			zap.String("health", "http://localhost:"+cfg.Port+"/"),
			zap.Bool("persistence", store != nil),
			zap.Bool("monitoring", reporter.Enabled()),
			zap.Bool("liff_auth", cfg.LIFFAuthEnabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("mongo disconnect", zap.Error(err))
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	reporter.Flush(2 * time.Second)
}

// newLimiter prefers Redis when REDIS_URL is set and reachable, and falls
// back to the in-process limiter otherwise.
func newLimiter(ctx context.Context, cfg *config.Config, log *zap.Logger) (ratelimit.Limiter, *redis.Client) {
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedis(ctx, cfg.RedisURL)
		if err == nil {
			log.Info("rate limiter using redis")
			return ratelimit.NewRedis(rdb, cfg.RateLimitMax, cfg.RateLimitWindow, nil), rdb
		}
		log.Warn("redis unavailable, using in-memory rate limiter", zap.Error(err))
	}

	mem := ratelimit.NewMemory(cfg.RateLimitMax, cfg.RateLimitWindow, nil)
	go mem.Run(ctx, sweepInterval)
	return mem, nil
}

func setupRouter(
	cfg *config.Config,
	svc services.SubmissionService,
	limiter ratelimit.Limiter,
	reporter monitoring.Reporter,
	persistenceEnabled bool,
	log *zap.Logger,
) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recovery(log, reporter))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/", controllers.Health(persistenceEnabled, reporter.Enabled()))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/liff-submit",
		middleware.RateLimit(limiter, log),
		middleware.RequireJSON(),
		middleware.BodyLimit(cfg.MaxBodyBytes),
		middleware.LIFFAuth(idTokenVerifier(cfg), log),
		controllers.SubmitInquiry(svc, cfg.RequestTimeout, log),
	)
	return r, nil
}

// idTokenVerifier is nil when LIFF_CHANNEL_ID is unset.
func idTokenVerifier(cfg *config.Config) *utils.IDTokenVerifier {
	if !cfg.LIFFAuthEnabled() {
		return nil
	}
	keys := utils.NewJWKS(cfg.LIFFJWKSURL, cfg.LinePushTimeout)
	return utils.NewIDTokenVerifier(cfg.LIFFChannelID, cfg.LIFFChannelSecret, keys, nil)
}

// corsConfig reflects any origin when origins is empty.
func corsConfig(origins []string) cors.Config {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return len(allowed) == 0 || allowed[origin]
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", "Retry-After", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
