package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Rushigaming001/askify-sketch/internal/broadcast"
	"github.com/Rushigaming001/askify-sketch/internal/config"
	"github.com/Rushigaming001/askify-sketch/internal/game"
	"github.com/Rushigaming001/askify-sketch/internal/gateway"
	"github.com/Rushigaming001/askify-sketch/internal/store"
	"github.com/Rushigaming001/askify-sketch/internal/tasks"
	"github.com/Rushigaming001/askify-sketch/internal/word"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	log := logger.WithField("service", "sketch")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		st      game.Store
		cleaner tasks.Cleaner
	)
	if cfg.MySQLDSN != "" {
		db, err := store.Open(cfg.MySQLDSN)
		if err != nil {
			log.WithError(err).Fatal("mysql connect")
		}
		log.Info("mysql connected")
		st, cleaner = db, db
	} else {
		mem := store.NewMemory()
		log.Info("running on in-memory store")
		st, cleaner = mem, mem
	}

	hub := broadcast.NewHub()
	var bus game.Broadcaster = hub

	var onFinished func(roomID string)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Fatal("redis connect")
		}
		log.Info("redis connected")
		bus = broadcast.NewRedisBridge(ctx, rdb, hub, "", log)

		redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		enq := tasks.NewEnqueuer(redisOpt, log)
		defer enq.Close()
		onFinished = enq.EnqueueRoomCleanup

		worker := tasks.NewWorker(redisOpt, cleaner, log)
		go func() {
			if err := worker.Start(); err != nil {
				log.WithError(err).Error("worker stopped")
			}
		}()
		defer worker.Shutdown()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	bank := word.Default(rng)
	if cfg.WordsFile != "" {
		var err error
		bank, err = word.NewFromFile(cfg.WordsFile, rng)
		if err != nil {
			log.WithError(err).Fatal("load word list")
		}
	}

	manager := game.NewManager(game.Config{
		Store:      st,
		Bus:        bus,
		Words:      bank,
		Log:        log,
		Rand:       rng,
		OnFinished: onFinished,
	})

	issuer := gateway.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	gw := gateway.New(manager, st, bus, issuer, log)

	app := fiber.New()
	app.Use(cors.New())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	gw.Register(app)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Error("listen")
		os.Exit(1)
	}
}
