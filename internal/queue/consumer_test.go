package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-booking/internal/repository"
)

type memSales struct {
	seen  map[string]bool
	seats []repository.SaleSeatRecord
	err   error
}

func (m *memSales) Record(_ context.Context, sale *repository.SaleRecord, seats []repository.SaleSeatRecord) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	if m.seen[sale.MessageID] {
		return false, nil
	}
	m.seen[sale.MessageID] = true
	m.seats = append(m.seats, seats...)
	return true, nil
}

func quietLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

func sampleSale() SaleConfirmedEvent {
	id := int64(12345)
	return SaleConfirmedEvent{
		MessageID:      "6f1c0b7e-0000-4000-8000-000000000001",
		Principal:      "42",
		EventID:        1,
		CatalogEventID: 501,
		EventTitle:     "Concierto",
		RemoteSaleID:   &id,
		Seats:          []SoldSeat{{Row: "B", Number: 3, FirstName: "Juan", LastName: "Pérez"}},
		ConfirmedAt:    "2026-03-01T18:00:00Z",
	}
}

func TestFormatSale(t *testing.T) {
	line := FormatSale(sampleSale())

	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Contains(t, line, "remote_sale_id=12345")
	assert.Contains(t, line, `event="Concierto"`)
	assert.Contains(t, line, "seats=[B-3:Juan Pérez]")
}

func TestFormatSale_WithoutRemoteID(t *testing.T) {
	ev := sampleSale()
	ev.RemoteSaleID = nil
	assert.Contains(t, FormatSale(ev), "remote_sale_id=-")
}

func TestConsumerHandle_AppendsLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	c := NewConsumer("amqp://unused", dir, nil, quietLogger())

	body, err := json.Marshal(sampleSale())
	require.NoError(t, err)
	require.NoError(t, c.Handle(context.Background(), body))
	require.NoError(t, c.Handle(context.Background(), body))

	raw, err := os.ReadFile(filepath.Join(dir, SalesLog))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Len(t, lines, 2)
}

func TestConsumerHandle_StoresOnceAndLogsOnce(t *testing.T) {
	dir := t.TempDir()
	store := &memSales{}
	c := NewConsumer("amqp://unused", dir, store, quietLogger())

	body, err := json.Marshal(sampleSale())
	require.NoError(t, err)
	require.NoError(t, c.Handle(context.Background(), body))
	require.NoError(t, c.Handle(context.Background(), body))

	require.Len(t, store.seats, 1)
	assert.Equal(t, repository.SaleSeatRecord{Row: "B", Number: 3, FirstName: "Juan", LastName: "Pérez"}, store.seats[0])

	raw, err := os.ReadFile(filepath.Join(dir, SalesLog))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(raw), "Sale confirmed"))
}

func TestConsumerHandle_StoreFailureSkipsAuditLine(t *testing.T) {
	dir := t.TempDir()
	c := NewConsumer("amqp://unused", dir, &memSales{err: errors.New("db down")}, quietLogger())

	body, err := json.Marshal(sampleSale())
	require.NoError(t, err)
	assert.ErrorContains(t, c.Handle(context.Background(), body), "db down")

	_, err = os.Stat(filepath.Join(dir, SalesLog))
	assert.True(t, os.IsNotExist(err))
}

func TestConsumerHandle_RejectsBadTimestamp(t *testing.T) {
	ev := sampleSale()
	ev.ConfirmedAt = "yesterday"
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	c := NewConsumer("amqp://unused", t.TempDir(), &memSales{}, quietLogger())
	assert.ErrorContains(t, c.Handle(context.Background(), body), "confirmed_at")
}

func TestConsumerHandle_RejectsGarbage(t *testing.T) {
	c := NewConsumer("amqp://unused", t.TempDir(), nil, quietLogger())
	assert.Error(t, c.Handle(context.Background(), []byte("{not json")))
}
