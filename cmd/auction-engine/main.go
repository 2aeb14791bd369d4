package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"

	"auction-engine/internal/concurrency"
	"auction-engine/internal/config"
	"auction-engine/internal/domain"
	"auction-engine/internal/infrastructure/mysql"
	"auction-engine/internal/infrastructure/redis"
	"auction-engine/internal/services"
	"auction-engine/pkg/logger"
)

func main() {
	log := logger.New()
	log.Info("Starting auction engine")

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("Failed to open MySQL", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}()

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping MySQL", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to MySQL")

	auctionRepo := mysql.NewAuctionRepository(db)
	bidRepo := mysql.NewBidRepository(db)
	jobRepo := mysql.NewSchedulerRepository(db)

	events := redis.NewEventPublisher(rdb)
	locker := redis.NewLeaseLocker(rdb)
	leader := redis.NewLeaderElection(rdb, cfg.Leader.TTL, log)

	floor, err := domain.NewMoney(cfg.Auction.PriceFloor)
	if err != nil {
		log.Error("Invalid price floor", "error", err)
		os.Exit(1)
	}

	auctioneer := services.NewAuctioneer(auctionRepo, bidRepo, events, floor, log)
	scheduler := services.NewCronScheduler(jobRepo, auctioneer, leader, cfg.Instance.ID, log)
	auctioneer.SetScheduler(scheduler)

	deps := concurrency.Deps{
		Auctions:        auctionRepo,
		Events:          events,
		Log:             log,
		Extender:        auctioneer,
		ExtensionWindow: cfg.Auction.ExtensionWindow,
	}

	strategies := []concurrency.Strategy{
		concurrency.Instrument(concurrency.NewMutexStrategy(deps), log),
		concurrency.Instrument(concurrency.NewTryLockStrategy(deps, cfg.Strategy.TryLockTimeout), log),
		concurrency.Instrument(concurrency.NewSemaphoreStrategy(deps, cfg.Strategy.SemaphoreTimeout), log),
		concurrency.Instrument(concurrency.NewOptimisticStrategy(deps), log),
		concurrency.Instrument(concurrency.NewPessimisticStrategy(deps), log),
		concurrency.Instrument(
			concurrency.NewDistributedStrategy(deps, locker, cfg.Strategy.LockLease, cfg.Strategy.LockWait), log),
	}

	defaultKind, err := concurrency.ParseKind(cfg.Strategy.Default)
	if err != nil {
		log.Error("Invalid default strategy", "name", cfg.Strategy.Default, "error", err)
		os.Exit(1)
	}

	registry, err := concurrency.NewRegistry(defaultKind, strategies)
	if err != nil {
		log.Error("Failed to build strategy registry", "error", err)
		os.Exit(1)
	}
	log.Info("Strategy registry ready",
		"default", registry.Current().String(), "registered", len(registry.Kinds()))

	// The embedding application dispatches bids through registry.Get();
	// this process runs the transition scheduler and leadership loop.
	if err := scheduler.Start(context.Background()); err != nil {
		log.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	go func() {
		for {
			became, err := leader.BecomeLeader(context.Background(), cfg.Instance.ID)
			if err != nil {
				log.Error("Failed to attempt leadership", "error", err)
				time.Sleep(5 * time.Second)
				continue
			}
			if became {
				log.Info("Became scheduler leader", "instance_id", cfg.Instance.ID)
			}
			time.Sleep(10 * time.Second)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down auction engine")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := scheduler.Stop(); err != nil {
		log.Error("Failed to stop scheduler", "error", err)
	}
	if err := leader.ReleaseLeadership(shutdownCtx, cfg.Instance.ID); err != nil {
		log.Error("Failed to release leadership", "error", err)
	}

	log.Info("Auction engine stopped")
}
