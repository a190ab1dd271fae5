package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/event-seat-booking/internal/repository"
)

// SalesLog is the audit file the consumer appends to, relative to its
// directory.
const SalesLog = "sales.log"

// SaleStore persists confirmed sales.  *repository.SaleRepo implements it.
type SaleStore interface {
	Record(ctx context.Context, sale *repository.SaleRecord, seats []repository.SaleSeatRecord) (bool, error)
}

// Consumer records every sale.confirmed message in the sale store, when
// one is configured, and appends it to an audit log.
type Consumer struct {
	url    string
	dir    string
	store  SaleStore
	logger echo.Logger
}

// NewConsumer returns a consumer writing to dir/sales.log.  store may be
// nil, in which case only the audit log is written.
func NewConsumer(url, dir string, store SaleStore, logger echo.Logger) *Consumer {
	if dir == "" {
		dir = "logs"
	}
	return &Consumer{url: url, dir: dir, store: store, logger: logger}
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential backoff when the connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warnf("[sale-consumer] dial failed: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warnf("[sale-consumer] consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.logger.Warnf("[sale-consumer] set QoS failed: %v", err)
	}
	if err := declare(ch); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, SaleConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.Handle(ctx, d.Body); err != nil {
			c.logger.Errorf("[sale-consumer] handle message failed: %v", err)
			// reject without requeue to avoid tight redelivery loops
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// Handle decodes one message, stores it and appends it to the audit log.
// A message already stored is acknowledged without a second audit line.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var ev SaleConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if c.store != nil {
		sale, seats, err := toRecords(ev)
		if err != nil {
			return err
		}
		inserted, err := c.store.Record(ctx, sale, seats)
		if err != nil {
			return fmt.Errorf("record sale %s: %w", ev.MessageID, err)
		}
		if !inserted {
			c.logger.Debugf("[sale-consumer] duplicate message %s skipped", ev.MessageID)
			return nil
		}
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.dir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.dir, SalesLog), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatSale(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatSale renders one audit line, newline included.
func FormatSale(ev SaleConfirmedEvent) string {
	seats := make([]string, 0, len(ev.Seats))
	for _, s := range ev.Seats {
		seats = append(seats, fmt.Sprintf("%s-%d:%s %s", s.Row, s.Number, s.FirstName, s.LastName))
	}
	remote := "-"
	if ev.RemoteSaleID != nil {
		remote = fmt.Sprint(*ev.RemoteSaleID)
	}
	return fmt.Sprintf("[%s] Sale confirmed | message_id=%s | principal=%s | event_id=%d | catalog_event_id=%d | event=%q | remote_sale_id=%s | seats=[%s]\n",
		ev.ConfirmedAt, ev.MessageID, ev.Principal, ev.EventID, ev.CatalogEventID, ev.EventTitle, remote, strings.Join(seats, ","))
}

func toRecords(ev SaleConfirmedEvent) (*repository.SaleRecord, []repository.SaleSeatRecord, error) {
	at, err := time.Parse(time.RFC3339, ev.ConfirmedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("confirmed_at: %w", err)
	}
	seats := make([]repository.SaleSeatRecord, 0, len(ev.Seats))
	for _, s := range ev.Seats {
		seats = append(seats, repository.SaleSeatRecord{
			Row: s.Row, Number: s.Number, FirstName: s.FirstName, LastName: s.LastName,
		})
	}
	return &repository.SaleRecord{
		MessageID:      ev.MessageID,
		Principal:      ev.Principal,
		EventID:        ev.EventID,
		CatalogEventID: ev.CatalogEventID,
		RemoteSaleID:   ev.RemoteSaleID,
		ConfirmedAt:    at,
	}, seats, nil
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
