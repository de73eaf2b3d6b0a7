package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/Philos250/TransactiTrack/internal/model"
)

// ErrMissingURL is returned when no broker URL is configured.
var ErrMissingURL = errors.New("amqp url is required")

// Config configures the AMQP publisher.
type Config struct {
	URL            string
	Exchange       string
	RoutingPrefix  string
	PublishTimeout time.Duration
	// DialAttempts bounds the connection retries made by NewPublisher.
	DialAttempts uint64
}

// DefaultConfig returns the publisher defaults.
func DefaultConfig() Config {
	return Config{
		Exchange:       "transactitrack.events",
		RoutingPrefix:  "ledger",
		PublishTimeout: 5 * time.Second,
		DialAttempts:   5,
	}
}

// channel is the subset of *amqp091.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends ledger events to a durable topic exchange.
type Publisher struct {
	conn    *amqp091.Connection
	channel channel
	logger  *slog.Logger
	config  Config
	mu      sync.Mutex
}

// NewPublisher dials the broker, retrying with exponential backoff, and
// declares the exchange.
func NewPublisher(ctx context.Context, config Config) (*Publisher, error) {
	if config.URL == "" {
		return nil, ErrMissingURL
	}
	config = withDefaults(config)

	var conn *amqp091.Connection
	dial := func() error {
		c, err := amqp091.Dial(config.URL)
		if err != nil {
			return fmt.Errorf("dial AMQP: %w", err)
		}
		conn = c
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), config.DialAttempts),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		slog.WarnContext(ctx, "AMQP dial failed, retrying", "error", err, "wait", wait)
	}
	if err := backoff.RetryNotify(dial, policy, notify); err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		config.Exchange, // name
		"topic",         // type
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	slog.InfoContext(ctx, "Connected to AMQP broker", "exchange", config.Exchange)

	return &Publisher{
		conn:    conn,
		channel: ch,
		logger:  slog.Default(),
		config:  config,
	}, nil
}

func newPublisherWithChannel(ch channel, config Config, logger *slog.Logger) *Publisher {
	return &Publisher{
		channel: ch,
		logger:  logger,
		config:  withDefaults(config),
	}
}

func withDefaults(config Config) Config {
	defaults := DefaultConfig()
	if config.Exchange == "" {
		config.Exchange = defaults.Exchange
	}
	if config.PublishTimeout <= 0 {
		config.PublishTimeout = defaults.PublishTimeout
	}
	if config.DialAttempts == 0 {
		config.DialAttempts = defaults.DialAttempts
	}
	return config
}

// Publish sends one event and reports any failure.
func (p *Publisher) Publish(ctx context.Context, event model.Event) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
	defer cancel()

	key := RoutingKey(p.config.RoutingPrefix, event.Kind)

	// amqp091 channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(
		ctx,
		p.config.Exchange, // exchange
		key,               // routing key
		false,             // mandatory
		false,             // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	p.logger.DebugContext(ctx, "Published ledger event",
		"kind", event.Kind,
		"id", event.ID,
		"routing_key", key)
	return nil
}

// Notify implements service.Notifier. Failures are logged, never returned,
// so a broker outage cannot fail a ledger write.
func (p *Publisher) Notify(ctx context.Context, event model.Event) {
	if err := p.Publish(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", event.Kind,
			"id", event.ID,
			"error", err)
	}
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
