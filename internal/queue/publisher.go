package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultDialTimeout bounds connecting and the AMQP handshake, so a broker
// outage cannot hold up the sale response for long.
const DefaultDialTimeout = 3 * time.Second

// Publisher sends sale notifications to RabbitMQ.  Each publish dials its
// own connection: sales are rare and this keeps broker outages from
// leaving a dead connection behind.
type Publisher struct {
	url         string
	dialTimeout time.Duration
	logger      echo.Logger
}

// NewPublisher returns a publisher for the broker at url.  A non-positive
// dialTimeout means DefaultDialTimeout.
func NewPublisher(url string, dialTimeout time.Duration, logger echo.Logger) *Publisher {
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	return &Publisher{url: url, dialTimeout: dialTimeout, logger: logger}
}

func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
	timeout := p.dialTimeout
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < timeout {
		timeout = time.Until(dl)
	}
	if timeout <= 0 {
		return nil, ctx.Err()
	}
	return amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// PublishSaleConfirmed publishes ev to the sale.confirmed queue as a
// persistent JSON message.  Errors are logged and returned; callers are
// expected to carry on regardless.
func (p *Publisher) PublishSaleConfirmed(ctx context.Context, ev SaleConfirmedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal sale event: %w", err)
	}

	conn, err := p.dial(ctx)
	if err != nil {
		p.logger.Warnf("[rabbitmq] dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warnf("[rabbitmq] channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch); err != nil {
		p.logger.Warnf("[rabbitmq] queue declare failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.MessageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", SaleConfirmedQueue, false, false, pub); err != nil {
		p.logger.Warnf("[rabbitmq] publish failed: %v", err)
		return err
	}
	p.logger.Debugf("[rabbitmq] published sale message=%s", ev.MessageID)
	return nil
}

// declare makes sure the durable queue exists.  It is idempotent.
func declare(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(SaleConfirmedQueue, true, false, false, false, nil)
	return err
}
