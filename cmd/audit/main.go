package main

import (
    "context"
    "log"
    "os/signal"
    "syscall"

    "go.uber.org/zap"

    "github.com/iliyamo/tourbook/internal/config"
    "github.com/iliyamo/tourbook/internal/logger"
    "github.com/iliyamo/tourbook/internal/queue"
)

// The audit worker reads every domain event from the broker and appends it
// to AUDIT_LOG_PATH.  Operational messages go to stderr.
func main() {
    cfg := config.LoadAudit()

    zl, err := logger.New(cfg.IsDev(), cfg.LogLevel)
    if err != nil {
        log.Fatal(err)
    }
    defer func() { _ = zl.Sync() }()

    audit, err := logger.NewFile(cfg.AuditLogPath)
    if err != nil {
        zl.Fatal("open audit log", zap.Error(err))
    }
    defer func() { _ = audit.Sync() }()

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    c := &queue.AuditConsumer{URL: cfg.RabbitURL, Audit: audit, Log: zl}
    zl.Info("audit consumer starting", zap.String("file", cfg.AuditLogPath))
    if err := c.Run(ctx); err != nil && ctx.Err() == nil {
        zl.Fatal("audit consumer", zap.Error(err))
    }
    zl.Info("audit consumer stopped")
}
