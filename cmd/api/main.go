package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"vidshare.local/internal/app/vidshare"
	vscache "vidshare.local/internal/app/vidshare/cache"
	"vidshare.local/internal/app/vidshare/httpapi"
	"vidshare.local/internal/app/vidshare/notify"
	"vidshare.local/internal/app/vidshare/repo"
	"vidshare.local/internal/app/vidshare/stats"
	"vidshare.local/internal/app/vidshare/uploads"
	"vidshare.local/internal/platform/auth"
	platformcache "vidshare.local/internal/platform/cache"
	"vidshare.local/internal/platform/config"
	"vidshare.local/internal/platform/db"
	"vidshare.local/internal/platform/httpmiddleware"
	"vidshare.local/internal/platform/httpserver"
	"vidshare.local/internal/platform/metrics"
	"vidshare.local/internal/platform/migrate"
	"vidshare.local/internal/platform/ratelimit"
	"vidshare.local/internal/platform/trace"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cfg := config.Load()

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	slog.SetDefault(slog.New(h))

	// DB
	dbCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	dbPool, errDB := db.New(dbCtx, cfg.DBDSN)
	if errDB != nil {
		log.Fatal(errDB)
	}
	defer dbPool.Close()
	if err := dbPool.Ping(dbCtx); err != nil {
		log.Fatal(err)
	}
	slog.Info("database connected")

	migCtx, migCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer migCancel()
	if res, err := migrate.Up(migCtx, dbPool, migrate.Options{}); err != nil {
		log.Fatal(err)
	} else if len(res.AppliedFiles) > 0 {
		slog.Info("migrations applied", "files", res.AppliedFiles)
	}

	usersRepo := repo.NewUsersRepo(dbPool)
	videosRepo := repo.NewVideosRepo(dbPool)

	// Redis
	redisClient, errRedis := platformcache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if errRedis != nil {
		log.Fatal(errRedis)
	}
	defer redisClient.Close()

	var limiter *ratelimit.Limiter
	if cfg.RateLimitEnabled {
		limiter = ratelimit.NewLimiter(redisClient)
	} else {
		slog.Warn("RateLimit disabled by config", "RATELIMIT_ENABLED", false)
	}

	// Link cache: 100k entries, 16MB L1 in front of redis.
	localCache, errLocal := vscache.NewLocalCache(100000, 1<<24)
	if errLocal != nil {
		log.Fatal(errLocal)
	}
	linkCache := vscache.NewLinkCache(redisClient, localCache)
	defer linkCache.Close()

	// Bloom filter over share codes: expect 1M codes at 1% false positives.
	bloomFilter := vscache.NewBloomFilter(1_000_000, 0.01)

	linksRepo := repo.NewLinksRepo(dbPool, linkCache, bloomFilter)

	// Warm the filter from existing codes; on failure run without it rather
	// than veto codes that do exist.
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 10*time.Second)
	codes, errWarm := linksRepo.ListCodes(warmCtx)
	warmCancel()
	if errWarm != nil {
		slog.Error("bloom warmup failed, running without filter", "err", errWarm)
		linksRepo = repo.NewLinksRepo(dbPool, linkCache, nil)
	} else {
		for _, code := range codes {
			bloomFilter.Add(code)
		}
		slog.Info("bloom filter warmed", "codes", len(codes))
	}

	// Invitation queue + worker.
	inviteQueue := notify.NewQueue(redisClient, cfg.InviteQueueKey)

	// View stats collector (Channel by default, Kafka when configured).
	var collector stats.Collector
	var kafkaConsumer *stats.KafkaConsumer
	var channelConsumer *stats.Consumer
	if cfg.KafkaEnabled {
		slog.Info("collecting view stats via kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		collector = stats.NewKafkaCollector(cfg.KafkaBrokers, cfg.KafkaTopic)
		kafkaConsumer = stats.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, dbPool)
	} else {
		slog.Info("collecting view stats via channel")
		channelCollector := stats.NewChannelCollector(10000)
		collector = channelCollector
		channelConsumer = stats.NewConsumer(dbPool, channelCollector)
	}

	// JWT
	ts, jwtErr := auth.NewHS256Service(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if jwtErr != nil {
		log.Fatal(jwtErr)
	}

	var signer *uploads.Signer
	if cfg.ImageKitPublicKey != "" && cfg.ImageKitPrivateKey != "" {
		signer = uploads.NewSigner(cfg.ImageKitPublicKey, cfg.ImageKitPrivateKey)
	} else {
		slog.Warn("upload signing disabled, IMAGEKIT keys not set")
	}

	svc := vidshare.NewService(linksRepo, videosRepo, inviteQueue, cfg.BaseURL)

	metrics.Init()

	if cfg.TracingEnabled {
		shutdown := trace.InitTrace(cfg.OtlpGrpcEndpoint, cfg.OtlpServiceName)
		if shutdown == nil {
			slog.Error("trace init failed")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					slog.Error(err.Error())
				}
			}()
		}
	} else {
		slog.Warn("Tracing disabled by config", "TRACING_ENABLED", false)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), httpmiddleware.ReqID(), httpmiddleware.AccessLog(), httpmiddleware.Metrics(), httpmiddleware.TraceName())

	api := r.Group("/api/v1")

	httpapi.RegisterPublicRoutes(r, svc, collector, ts, limiter)
	httpapi.RegisterAPIRoutes(api, svc, videosRepo, usersRepo, signer, ts, limiter)

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	publicHandler := http.Handler(r)
	if cfg.TracingEnabled {
		publicHandler = otelhttp.NewHandler(r, "http")
	}
	publicSrv := httpserver.New(cfg, publicHandler)

	// Loopback/intranet only.
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminMux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		dbCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := dbPool.Ping(dbCtx); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("DB Ping Err"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("DB ready"))
	})

	adminMux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"service_name": cfg.ServiceName,
			"version":      version,
			"commit":       commit,
			"build_time":   buildTime,
			"go_version":   runtime.Version(),
		})
	})

	if cfg.PprofEnabled {
		adminMux.HandleFunc("/debug/pprof/", pprof.Index)
		adminMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		adminMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		adminMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		adminMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	adminSrv := &http.Server{
		Addr:              cfg.AdminAddr,
		Handler:           adminMux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errch := make(chan error, 2)

	go func() {
		errch <- httpserver.RunWithGracefulShutdownContext(publicSrv, cfg.ShutdownTimeout, stopCtx)
	}()
	go func() {
		errch <- httpserver.RunWithGracefulShutdownContext(adminSrv, cfg.ShutdownTimeout, stopCtx)
	}()

	if cfg.InviteWorkerEnabled {
		worker := notify.NewWorker(redisClient, cfg.InviteQueueKey, notify.LogSender{})
		go worker.Run(stopCtx)
	}

	if kafkaConsumer != nil {
		go kafkaConsumer.Run(stopCtx)
		defer kafkaConsumer.Close()
	}
	if channelConsumer != nil {
		go channelConsumer.Run(stopCtx)
	}
	defer collector.Close()

	err := <-errch
	if err != nil {
		stop()
		select {
		case <-errch:
		case <-time.After(cfg.ShutdownTimeout + time.Second):
		}
		log.Fatal(err)
	}

	stop()
	<-errch
}
