package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Publisher sends domain events to the tourbook.events exchange.  It keeps
// one connection and channel open and redials lazily when the broker
// dropped them.  A Publisher is safe for concurrent use.
type Publisher struct {
    url string
    log *zap.Logger

    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

// NewPublisher dials the broker and declares the exchange.  The error is
// returned so the caller can decide to run without events.
func NewPublisher(url string, log *zap.Logger) (*Publisher, error) {
    p := &Publisher{url: url, log: log}
    if err := p.connect(); err != nil {
        return nil, err
    }
    return p, nil
}

func (p *Publisher) connect() error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        return fmt.Errorf("dial broker: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return fmt.Errorf("channel open: %w", err)
    }
    if err := declareExchange(ch); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return err
    }
    p.conn, p.ch = conn, ch
    return nil
}

// declareExchange is idempotent; durable so bindings survive broker restarts.
func declareExchange(ch *amqp.Channel) error {
    if err := ch.ExchangeDeclare(
        ExchangeName, // name
        "topic",      // kind
        true,         // durable
        false,        // autoDelete
        false,        // internal
        false,        // noWait
        nil,          // args
    ); err != nil {
        return fmt.Errorf("exchange declare: %w", err)
    }
    return nil
}

// Publish marshals payload to JSON and sends it as a persistent message
// with the given routing key.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
    body, err := json.Marshal(payload)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }
    msg := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Type:         routingKey,
        Body:         body,
    }

    p.mu.Lock()
    defer p.mu.Unlock()
    if p.ch == nil || p.ch.IsClosed() {
        p.closeLocked()
        if err := p.connect(); err != nil {
            return err
        }
    }
    if err := p.ch.PublishWithContext(ctx, ExchangeName, routingKey, false, false, msg); err != nil {
        return fmt.Errorf("publish %s: %w", routingKey, err)
    }
    p.log.Debug("event published", zap.String("routing_key", routingKey), zap.Int("bytes", len(body)))
    return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.closeLocked()
    return nil
}

func (p *Publisher) closeLocked() {
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        _ = p.conn.Close()
        p.conn = nil
    }
}
