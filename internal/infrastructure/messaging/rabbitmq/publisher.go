package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/metrics"
)

const (
	DefaultExchange = "city.events"
	exchangeKind    = "topic"

	// confirmWait bounds how long a publish waits for the broker ack.
	confirmWait = 150 * time.Millisecond
)

var (
	ErrNoRoutingKey = errors.New("rabbitmq: missing routing key")
	ErrNack         = errors.New("rabbitmq: broker nacked publish")
	ErrNotConnected = errors.New("rabbitmq: not connected")
)

// Publisher sends explore domain events as persistent JSON messages to a
// durable topic exchange. Publishing is not mandatory since a feed refresh
// may have no subscriber yet.
type Publisher struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher dials once so a bad URL fails at startup.
func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &Publisher{url: url, exchange: exchange}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.dialLocked(); err != nil {
		return nil, err
	}
	return p, nil
}

// dialLocked opens a confirm-mode channel and declares the exchange.
func (p *Publisher) dialLocked() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err == nil {
		err = ch.ExchangeDeclare(p.exchange, exchangeKind, true, false, false, false, nil)
	}
	if err == nil {
		err = ch.Confirm(false)
	}
	if err != nil {
		if ch != nil {
			_ = ch.Close()
		}
		_ = conn.Close()
		return err
	}

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) connectedLocked() bool {
	return p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed()
}

// Ping reports whether the broker connection is currently open.
func (p *Publisher) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connectedLocked() {
		return ErrNotConnected
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil {
		errs = append(errs, ignoreClosed(p.ch.Close()))
		p.ch = nil
	}
	if p.conn != nil {
		errs = append(errs, ignoreClosed(p.conn.Close()))
		p.conn = nil
	}
	return errors.Join(errs...)
}

func ignoreClosed(err error) error {
	if errors.Is(err, amqp.ErrClosed) {
		return nil
	}
	return err
}

// PublishEvent JSON-encodes payload under routingKey. A dropped connection is
// re-dialed once before giving up.
func (p *Publisher) PublishEvent(ctx context.Context, routingKey string, payload any) (err error) {
	if routingKey == "" {
		return ErrNoRoutingKey
	}
	outcome := "error"
	defer func() {
		metrics.EventsPublished.WithLabelValues(routingKey, outcome).Inc()
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		MessageId:    messageIDOf(payload),
		Type:         routingKey,
		AppId:        "explore-service",
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.connectedLocked() {
		zlog.Warn().Str("exchange", p.exchange).Msg("rabbit connection lost, redialing")
		if err := p.dialLocked(); err != nil {
			return errors.Join(ErrNotConnected, err)
		}
	}

	dc, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, routingKey, false, false, msg)
	if err != nil {
		return err
	}
	outcome, err = awaitConfirm(ctx, dc.Done(), dc.Acked, confirmWait)
	return err
}

// awaitConfirm waits for the confirmation of one delivery tag. A confirmation
// still pending after wait is reported as "unconfirmed" without an error; the
// next scheduled refresh republishes.
func awaitConfirm(ctx context.Context, done <-chan struct{}, acked func() bool, wait time.Duration) (string, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-done:
		if !acked() {
			return "nack", ErrNack
		}
		return "ok", nil
	case <-timer.C:
		return "unconfirmed", nil
	case <-ctx.Done():
		return "error", ctx.Err()
	}
}

// messageIDOf reuses the envelope id so consumers can dedupe; other payloads get a fresh one.
func messageIDOf(payload any) string {
	if m, ok := payload.(interface{ ID() string }); ok && m.ID() != "" {
		return m.ID()
	}
	return uuid.NewString()
}
