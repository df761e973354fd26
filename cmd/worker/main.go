package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/infra/config"
	"github.com/diaryTvideo-Team/DiaryTvideo/internal/infra/ffmpeg"
	"github.com/diaryTvideo-Team/DiaryTvideo/internal/infra/metrics"
	miniostorage "github.com/diaryTvideo-Team/DiaryTvideo/internal/infra/minio"
	openaiadapt "github.com/diaryTvideo-Team/DiaryTvideo/internal/infra/openai"
	"github.com/diaryTvideo-Team/DiaryTvideo/internal/infra/postgres"
	"github.com/diaryTvideo-Team/DiaryTvideo/internal/infra/rabbitmq"
	redistracker "github.com/diaryTvideo-Team/DiaryTvideo/internal/infra/redis"
	"github.com/diaryTvideo-Team/DiaryTvideo/internal/infra/tracing"
	"github.com/diaryTvideo-Team/DiaryTvideo/internal/infra/ws"
	"github.com/diaryTvideo-Team/DiaryTvideo/internal/usecase"
	"github.com/diaryTvideo-Team/DiaryTvideo/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting diary video service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	// Object storage
	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:  cfg.MinIOEndpoint,
		AccessKey: cfg.MinIOAccessKey,
		SecretKey: cfg.MinIOSecretKey,
		UseSSL:    cfg.MinIOUseSSL,
		Bucket:    cfg.MinIOBucket,
		Region:    cfg.MinIORegion,
	})
	fatalOnErr(err, "create minio storage")
	fatalOnErr(storage.EnsureBucket(ctx), "ensure minio bucket")

	// Job tracker (per-diary locks + terminal records)
	redisOpts, err := goredis.ParseURL(cfg.RedisURL)
	fatalOnErr(err, "parse redis url")
	redisClient := goredis.NewClient(redisOpts)
	defer redisClient.Close()
	fatalOnErr(redisClient.Ping(ctx).Err(), "connect to redis")

	tracker := redistracker.NewJobTracker(
		redisClient,
		time.Duration(cfg.JobLockMinutes)*time.Minute,
		log,
	)

	// AI adapters
	aiClient := openai.NewClient(cfg.OpenAIAPIKey)
	splitter := openaiadapt.NewSceneSplitter(aiClient, log)
	speech := openaiadapt.NewSpeechSynthesizer(aiClient, log)
	images := openaiadapt.NewImageGenerator(aiClient, log)
	transcriber := openaiadapt.NewTranscriber(aiClient, log)
	composer := ffmpeg.NewComposer(log)

	repo := postgres.NewDiaryRepository(pool)

	// Progress broadcaster
	hub := ws.NewHub(log)
	wsSrv := ws.Start(ctx, ws.NewServer(hub, cfg.JWTAccessSecret, log), cfg.WebSocketPort, log)

	// Orchestrator
	uc := usecase.NewGenerateVideoUseCase(
		repo, splitter, speech, images,
		transcriber, composer, storage,
		hub, tracker,
		log, cfg.TempDir,
	)

	// Consumer (job loop)
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:           cfg.RabbitMQURL,
		Queue:         cfg.RabbitMQQueue,
		Exchange:      cfg.RabbitMQExchange,
		DLQ:           cfg.RabbitMQDLQ,
		Prefetch:      cfg.RabbitMQPrefetch,
		MaxDeliveries: cfg.MaxDeliveries,
		BaseDelayMs:   cfg.RetryBaseDelayMs,
	}, uc.Execute, log)
	fatalOnErr(err, "create consumer")

	// Metrics server with readiness over the worker's dependencies
	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, map[string]metrics.HealthCheck{
		"postgres": pool.Ping,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		"rabbitmq": func(context.Context) error { return consumer.Ready() },
	}, log)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("diary video service started, consuming jobs")

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)
	wsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("diary video service stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
