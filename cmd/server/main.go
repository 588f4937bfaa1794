package main

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"roomdesk/internal/cleanup"
	"roomdesk/internal/config"
	"roomdesk/internal/database"
	"roomdesk/internal/handler"
	"roomdesk/internal/queue"
	"roomdesk/internal/repository"
	"roomdesk/internal/router"
	"roomdesk/internal/service"
	"roomdesk/internal/student"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Env == "dev" {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	// Redis is optional: without it the response cache and rate limiter
	// become pass-throughs and group lookups skip their cache.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, cache and rate limiting disabled")
	}

	buildingRepo := repository.NewBuildingRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	bookingRepo := repository.NewBookingRepo(db)

	groups := student.NewClient(cfg.GroupServiceURL, rdb, log)
	policy := service.BookingPolicy{
		MaxSpanDays:   cfg.MaxSpanDays,
		EarliestStart: cfg.EarliestStart,
		LatestEnd:     cfg.LatestEnd,
	}

	events := service.NewEventPublisher(log)
	bookingSvc := service.NewBookingService(policy, roomRepo, bookingRepo, groups, events, log)
	roomSvc := service.NewRoomService(roomRepo, buildingRepo, bookingRepo, log)
	buildingSvc := service.NewBuildingService(buildingRepo, roomRepo, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleanup.New(bookingRepo, cfg.CleanInterval, log).Run(ctx)
	go queue.StartAuditConsumer(log)

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterBookings(e, handler.NewBookingHandler(bookingSvc), config.LoadRateLimitConfig(), rdb)
	router.RegisterBrowse(e, handler.NewRoomHandler(roomSvc), handler.NewBuildingHandler(buildingSvc), config.LoadCacheConfig(), rdb)
	router.RegisterAdmin(e, handler.NewRoomHandler(roomSvc), handler.NewBuildingHandler(buildingSvc), cfg.AdminTokenSecret)

	addr := ":" + cfg.Port
	log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
