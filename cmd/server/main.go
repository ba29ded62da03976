package main // Entry point package

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os/signal"
    "syscall"
    "time"

    "github.com/labstack/echo/v4" // Echo web framework
    echoMw "github.com/labstack/echo/v4/middleware"
    "go.uber.org/zap"

    "github.com/iliyamo/tourbook/internal/config"
    "github.com/iliyamo/tourbook/internal/database"
    "github.com/iliyamo/tourbook/internal/handler"
    "github.com/iliyamo/tourbook/internal/lock"
    "github.com/iliyamo/tourbook/internal/logger"
    "github.com/iliyamo/tourbook/internal/middleware"
    "github.com/iliyamo/tourbook/internal/queue"
    "github.com/iliyamo/tourbook/internal/repository"
    "github.com/iliyamo/tourbook/internal/router"
    "github.com/iliyamo/tourbook/internal/service"
)

func main() {
    started := time.Now()
    cfg := config.Load() // Load environment config

    zl, err := logger.New(cfg.IsDev(), cfg.LogLevel)
    if err != nil {
        log.Fatal(err)
    }
    defer func() { _ = zl.Sync() }()

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        zl.Fatal("open database", zap.Error(err))
    }
    defer db.Close()
    if err := database.Migrate(ctx, db); err != nil {
        zl.Fatal("migrate schema", zap.Error(err))
    }

    // Bookings are serialised per tour through Redis so several API
    // instances can share one database; without Redis the lock is local.
    var locker lock.Locker
    if rdb := config.NewRedisClient(); rdb != nil {
        defer rdb.Close()
        locker = lock.NewRedisLocker(rdb, "lock:", cfg.LockTTL, cfg.LockWait)
        zl.Info("booking lock backed by redis")
    } else {
        locker = lock.NewLocalLocker(cfg.LockWait)
        zl.Warn("redis unavailable, booking lock is process local")
    }

    var events service.EventPublisher
    if cfg.RabbitURL != "" {
        pub, err := queue.NewPublisher(cfg.RabbitURL, zl)
        if err != nil {
            zl.Warn("rabbitmq unavailable, events disabled", zap.Error(err))
        } else {
            defer pub.Close()
            events = pub
        }
    }

    users := repository.NewUserRepo(db)
    tours := repository.NewTourRepo(db)
    bookings := repository.NewBookingRepo(db)
    comments := repository.NewCommentRepo(db)

    authSvc := service.NewAuthService(users, tours, service.AuthConfig{
        Secret:          cfg.JWTSecret,
        TokenTTL:        cfg.TokenTTL,
        BcryptCost:      cfg.BcryptCost,
        AllowRoleSignup: cfg.AllowRoleSignup,
    }, zl)
    catalogSvc := service.NewCatalogService(tours, bookings, comments, events, zl)
    bookingSvc := service.NewBookingService(service.BookingDeps{
        Bookings:        bookings,
        Tours:           tours,
        Users:           users,
        Locker:          locker,
        Events:          events,
        Log:             zl,
        EnforceCapacity: cfg.EnforceCapacity,
    })
    reviewSvc := service.NewReviewService(comments, tours, users, zl)

    e := echo.New() // Create Echo instance
    e.HideBanner = true
    e.HTTPErrorHandler = middleware.ErrorHandler(zl)
    e.Use(echoMw.RequestID())
    e.Use(middleware.RequestLogger(zl))
    e.Use(echoMw.Recover())
    e.Use(echoMw.CORS())
    e.Use(echoMw.BodyLimit("1M"))

    router.Register(e, router.Handlers{
        Auth:     handler.NewAuthHandler(authSvc, cfg.RequestTimeout),
        Tours:    handler.NewTourHandler(catalogSvc, cfg.RequestTimeout),
        Bookings: handler.NewBookingHandler(bookingSvc, cfg.RequestTimeout),
        Comments: handler.NewCommentHandler(reviewSvc, cfg.RequestTimeout),
        System:   handler.NewSystemHandler(started),
        Tokens:   authSvc,
    })

    addr := ":" + cfg.Port // Address string with port
    go func() {
        zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            zl.Error("server stopped", zap.Error(err))
            stop()
        }
    }()

    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        zl.Error("shutdown", zap.Error(err))
    }
    zl.Info("server exited")
}
