package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/skyhigh/airline-checkin/internal/cache"
	"github.com/skyhigh/airline-checkin/internal/config"
	"github.com/skyhigh/airline-checkin/internal/database"
	"github.com/skyhigh/airline-checkin/internal/handler"
	"github.com/skyhigh/airline-checkin/internal/lock"
	"github.com/skyhigh/airline-checkin/internal/logger"
	"github.com/skyhigh/airline-checkin/internal/metrics"
	appmw "github.com/skyhigh/airline-checkin/internal/middleware"
	"github.com/skyhigh/airline-checkin/internal/queue"
	"github.com/skyhigh/airline-checkin/internal/repository"
	"github.com/skyhigh/airline-checkin/internal/router"
	"github.com/skyhigh/airline-checkin/internal/service"
	"github.com/skyhigh/airline-checkin/internal/worker"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Set(logger.NewLogger(cfg.Env))
	defer func() { _ = logger.Sync() }()

	metrics.Init()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}
	if err := database.SeedDemoData(context.Background(), db); err != nil {
		logger.Warn("demo data seeding failed", zap.Error(err))
	}

	// Redis backs the advisory seat lock, the seat map cache and the
	// rate limiter. Without it the service still runs: the version
	// guard alone arbitrates seats, and caching/limiting switch off.
	rdb := config.NewRedisClient()
	var seatLocker lock.SeatLocker
	if rdb != nil {
		seatLocker = lock.NewRedisSeatLock(rdb)
		logger.Info("redis connected")
	} else {
		seatLocker = lock.NewMemorySeatLock()
		logger.Warn("redis unavailable, using in-process seat locks")
	}
	seatMapCache := cache.NewSeatMapCache(rdb, cfg.SeatMapCacheTTL)

	flightRepo := repository.NewFlightRepo(db)
	passengerRepo := repository.NewPassengerRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	checkInRepo := repository.NewCheckInRepo(db)
	auditRepo := repository.NewSeatAuditRepo(db)
	passRepo := repository.NewBoardingPassRepo(db)
	tokenRepo := repository.NewRefreshTokenRepo(db)

	seatSvc := service.NewSeatService(
		seatRepo, flightRepo, checkInRepo, bookingRepo, auditRepo,
		seatLocker, seatMapCache,
		cfg.SeatHoldDuration(), cfg.SessionTimeout(),
	)
	weightSvc := service.NewWeightService(cfg.MaxBaggageWeightKg, cfg.ExcessBaggageFeePerKg)
	paymentSvc := service.NewPaymentService()
	passSvc := service.NewBoardingPassService(
		passRepo, checkInRepo, bookingRepo, passengerRepo, flightRepo, seatRepo,
	)
	checkInSvc := service.NewCheckInService(
		checkInRepo, bookingRepo, flightRepo, passengerRepo, seatRepo,
		seatSvc, weightSvc, paymentSvc, passSvc,
		seatLocker, queue.PublishCheckInCompleted,
		cfg.SessionTimeout(), cfg.CheckInWindowOpensHours, cfg.CheckInWindowClosesHours,
	)
	authSvc := service.NewAuthService(
		bookingRepo, passengerRepo, flightRepo, tokenRepo,
		cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays,
		cfg.CheckInWindowOpensHours, cfg.CheckInWindowClosesHours,
	)

	// Background reconcilers sweep what clients abandon.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	holdReconciler := worker.NewHoldReconciler(seatSvc, cfg.HoldReconcileInterval, 100)
	sessionReconciler := worker.NewSessionReconciler(checkInSvc, cfg.SessionReconcileInterval, 100)
	go holdReconciler.Start(workerCtx)
	go sessionReconciler.Start(workerCtx)

	go func() {
		if err := queue.StartCheckInConsumer(); err != nil {
			logger.Warn("check-in event consumer stopped", zap.Error(err))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(appmw.RequestLogger())
	e.Use(appmw.Prometheus(metrics.Get()))

	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Flights:      handler.NewFlightHandler(checkInSvc, seatSvc),
		Seats:        handler.NewSeatHandler(seatSvc),
		CheckIns:     handler.NewCheckInHandler(checkInSvc),
		BoardingPass: handler.NewBoardingPassHandler(passSvc),
	}, db, rdb, cfg.JWTSecret, config.LoadRateLimitConfig())

	go func() {
		addr := ":" + cfg.Port
		logger.Info("server listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server start failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	stopWorkers()
	holdReconciler.Stop()
	sessionReconciler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
