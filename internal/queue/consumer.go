package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// AuditQueueName is bound to every routing key on the events exchange.
const AuditQueueName = "tourbook.audit"

// AuditConsumer reads every domain event and appends one line per event to
// the audit log.  Messages that cannot be decoded are rejected without
// requeueing so a poison message cannot stall the queue.
type AuditConsumer struct {
    URL   string
    Audit *zap.Logger // destination of audit lines, usually file backed
    Log   *zap.Logger // operational logs of the consumer itself
}

// Run connects to RabbitMQ and consumes until ctx is cancelled, redialling
// with exponential backoff (capped at 30s) whenever the broker goes away.
func (a *AuditConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(a.URL)
        if err != nil {
            a.Log.Warn("audit consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = a.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        a.Log.Warn("audit consumer: consume loop ended, reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (a *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        a.Log.Warn("audit consumer: set QoS failed", zap.Error(err))
    }
    if err := declareExchange(ch); err != nil {
        return err
    }
    if _, err := ch.QueueDeclare(AuditQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    if err := ch.QueueBind(AuditQueueName, "#", ExchangeName, false, nil); err != nil {
        return fmt.Errorf("queue bind: %w", err)
    }
    msgs, err := ch.Consume(AuditQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }
    a.Log.Info("audit consumer: consuming", zap.String("queue", AuditQueueName))

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := a.Handle(d.RoutingKey, d.Body); err != nil {
                a.Log.Error("audit consumer: handle message failed",
                    zap.String("routing_key", d.RoutingKey), zap.Error(err))
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle decodes one event and writes its audit line.
func (a *AuditConsumer) Handle(routingKey string, body []byte) error {
    switch routingKey {
    case KeyBookingCreated:
        var ev BookingCreatedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal: %w", err)
        }
        a.Audit.Info("booking created",
            zap.String("booking_id", ev.BookingID),
            zap.String("user_id", ev.UserID),
            zap.String("tour_id", ev.TourID),
            zap.String("tour", ev.TourName),
            zap.Int("head_count", ev.HeadCount),
            zap.Float64("total_price", ev.TotalPrice),
            zap.Time("at", ev.BookedAt))
    case KeyBookingCancelled:
        var ev BookingCancelledEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal: %w", err)
        }
        a.Audit.Info("booking cancelled",
            zap.String("booking_id", ev.BookingID),
            zap.String("user_id", ev.UserID),
            zap.String("tour_id", ev.TourID),
            zap.Int("head_count", ev.HeadCount),
            zap.String("cancelled_by", ev.CancelledBy),
            zap.Time("at", ev.CancelledAt))
    case KeyTourDeleted:
        var ev TourDeletedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal: %w", err)
        }
        a.Audit.Info("tour deleted",
            zap.String("tour_id", ev.TourID),
            zap.String("tour", ev.TourName),
            zap.String("deleted_by", ev.DeletedBy),
            zap.Time("at", ev.DeletedAt))
    default:
        if !json.Valid(body) {
            return errors.New("unmarshal: invalid json")
        }
        a.Audit.Info("unknown event", zap.String("routing_key", routingKey), zap.ByteString("body", body))
    }
    return nil
}
