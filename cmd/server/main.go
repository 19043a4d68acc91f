package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/instant-messaging/internal/auth"
	"github.com/iliyamo/instant-messaging/internal/config"
	"github.com/iliyamo/instant-messaging/internal/database"
	"github.com/iliyamo/instant-messaging/internal/handler"
	"github.com/iliyamo/instant-messaging/internal/middleware"
	"github.com/iliyamo/instant-messaging/internal/queue"
	"github.com/iliyamo/instant-messaging/internal/repository"
	"github.com/iliyamo/instant-messaging/internal/repository/memory"
	"github.com/iliyamo/instant-messaging/internal/repository/mysql"
	"github.com/iliyamo/instant-messaging/internal/router"
	"github.com/iliyamo/instant-messaging/internal/service"
)

func main() {
	cfg := config.Load()

	domain, err := auth.NewDomain(auth.Config{
		TokenSizeBytes:   cfg.TokenSizeBytes,
		TokenTTL:         cfg.TokenTTL,
		TokenRollingTTL:  cfg.TokenRollingTTL,
		MaxTokensPerUser: cfg.MaxTokensPerUser,
		BcryptCost:       cfg.BcryptCost,
	})
	if err != nil {
		log.Fatalf("invalid auth configuration: %v", err)
	}

	var trx repository.Manager
	if cfg.UseDatabase() {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()
		trx = mysql.NewManager(db)
	} else {
		log.Printf("DB_HOST not set, using in-memory store")
		trx = memory.NewManager(memory.NewStore())
	}

	users := service.NewUserService(trx, domain, nil)
	events := service.NewEventService(trx, cfg.KeepAliveInterval)
	defer events.Close()
	channels := service.NewChannelService(trx, nil)
	invitations := service.NewInvitationService(trx, nil)

	var mq service.MessageQueue
	if cfg.BrokerURL != "" {
		mq = queue.NewPublisher(cfg.BrokerURL)
		go func() {
			if err := queue.StartMessageConsumer(cfg.BrokerURL); err != nil {
				log.Printf("message consumer stopped: %v", err)
			}
		}()
	}
	messages := service.NewMessageService(trx, events, mq)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}
	rateMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	authMW := middleware.TokenAuth(users)

	router.Register(e, router.Handlers{
		Auth:        handler.NewAuthHandler(users),
		Channels:    handler.NewChannelHandler(channels),
		Invitations: handler.NewInvitationHandler(invitations),
		Messages:    handler.NewMessageHandler(messages),
		Events:      handler.NewEventsHandler(events, channels),
	}, authMW, rateMW)

	go func() {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM; open SSE streams get a
	// short grace period to drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
