package queue

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/05Ashutosh/food-recipe/internal/logging"
	"github.com/05Ashutosh/food-recipe/internal/metrics"
)

// Publisher sends SocialEvents to a durable queue on the default exchange.
// Each publish dials its own connection; follow traffic is low and this
// keeps the publisher free of reconnect state.
type Publisher struct {
	url   string
	queue string
	dial  func(url string) (amqpConnection, error)
}

type amqpConnection interface {
	Channel() (*amqp.Channel, error)
	Close() error
}

// NewPublisher returns a Publisher for the given broker URL and queue.
func NewPublisher(url, queue string) *Publisher {
	return &Publisher{
		url:   url,
		queue: queue,
		dial: func(url string) (amqpConnection, error) {
			return amqp.Dial(url)
		},
	}
}

// PublishSocial publishes ev as a persistent JSON message. Errors are
// logged and returned so callers may ignore them.
func (p *Publisher) PublishSocial(ctx context.Context, ev SocialEvent) (err error) {
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			logging.Warn().Err(err).Str("queue", p.queue).Str("type", ev.Type).Msg("publish social event")
		}
		metrics.SocialEventsPublished.WithLabelValues(result).Inc()
	}()

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	conn, err := p.dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
