package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Brianleach11/popreel/internal/client"
	"github.com/Brianleach11/popreel/internal/config"
	"github.com/Brianleach11/popreel/internal/db"
	"github.com/Brianleach11/popreel/internal/handler"
	"github.com/Brianleach11/popreel/internal/middleware"
	"github.com/Brianleach11/popreel/internal/repository"
	"github.com/Brianleach11/popreel/internal/router"
	"github.com/Brianleach11/popreel/internal/service"
	"github.com/Brianleach11/popreel/pkg/clock"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "popreel-api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()
	handler.InitMetrics(pool)

	// Redis and NATS are optional; a nil client degrades to no-ops.
	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()
	publisher := client.NewPublisher(cfg.NATSURL)
	defer publisher.Close()

	recommender := client.NewRecommenderClient(cfg.RecommenderURL, cfg.RecommenderTimeout)
	annotator := client.NewAnnotatorClient(cfg.AnnotatorURL, cfg.IngestTimeout)
	embedder := client.NewEmbedderClient(cfg.EmbedderURL, cfg.EmbeddingDim, cfg.IngestTimeout)
	signer := client.NewSignerClient(cfg.SignerURL, cfg.SignerTimeout)

	videoRepo := repository.NewVideoRepo(pool)
	interactionRepo := repository.NewInteractionRepo(pool)
	likeRepo := repository.NewLikeRepo(pool)
	userRepo := repository.NewUserRepo(pool)

	clk := clock.Real{}
	scoringSvc := service.NewScoringService(clk)
	analyticsSvc := service.NewAnalyticsService(videoRepo, interactionRepo, scoringSvc, publisher, clk)
	sessions := service.NewSessionTracker(analyticsSvc, clk)
	trendingSvc := service.NewTrendingService(videoRepo, interactionRepo, clk)
	ingestSvc := service.NewIngestService(videoRepo, annotator, embedder, publisher)
	feedSvc := service.NewFeedService(videoRepo, likeRepo, userRepo, recommender, signer, cache)
	videoSvc := service.NewVideoService(videoRepo, likeRepo, cache)

	worker := service.NewTrendingWorker(pool, trendingSvc, interactionRepo, cache, clk, cfg.TrendingInterval)
	go worker.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      "PopReel API",
		ServerHeader: "PopReel",
	})

	router.Setup(app, &router.Handlers{
		Feed:      handler.NewFeedHandler(feedSvc),
		Video:     handler.NewVideoHandler(ingestSvc, videoSvc, feedSvc),
		Analytics: handler.NewAnalyticsHandler(analyticsSvc, sessions),
		Stats:     handler.NewStatsHandler(videoSvc),
		Health:    handler.NewHealthHandler(pool, cache.Client(), publisher.Conn()),
	}, cfg.CORSOrigins)

	go func() {
		log.Printf("PopReel backend starting on :%s (env=%s)", cfg.Port, cfg.Environment)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
