package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

const (
	seatMapPath = "/api/asientos/evento/%d"
	lockPath    = "/api/asientos/bloquear"
	salePath    = "/api/ventas/confirmar"

	maxResponseBytes = 4 << 20
	defaultTimeout   = 10 * time.Second
)

// Client talks to the inventory service over HTTP/JSON.  Every call is
// bounded by the configured timeout.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewClient returns a Client rooted at baseURL (e.g. http://localhost:8081).
// A non-positive timeout selects the ten second default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// FetchSeatMap loads the seat map of an event.  A 404, a 204, an empty body
// or an empty seat list without an event id are all reported as a cold map.
func (c *Client) FetchSeatMap(ctx context.Context, eventID int64) (model.SeatMap, error) {
	const op = "fetch seat map"
	cold := model.SeatMap{EventID: eventID}

	code, body, err := c.do(ctx, op, http.MethodGet, fmt.Sprintf(seatMapPath, eventID), nil)
	if err != nil {
		return model.SeatMap{}, err
	}
	if code == http.StatusNotFound || code == http.StatusNoContent {
		return cold, nil
	}
	if !success(code) {
		return model.SeatMap{}, &StatusError{Op: op, Code: code}
	}
	if emptyBody(body) {
		return cold, nil
	}

	var wire seatMapResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return model.SeatMap{}, fmt.Errorf("%w: decode seat map: %v", ErrProtocol, err)
	}
	m := wire.toModel()
	if m.Cold() && wire.EventoID == 0 {
		return cold, nil
	}
	if wire.EventoID != eventID {
		return model.SeatMap{}, fmt.Errorf("%w: requested %d, got %d", ErrEventMismatch, eventID, wire.EventoID)
	}
	return m, nil
}

// LockSeats asks the inventory service to lock exactly the given seats.
// Row labels are converted to the numeric rows the remote protocol
// expects; an unencodable row fails the call with model.ErrInvalidRow
// before anything is sent.
func (c *Client) LockSeats(ctx context.Context, eventID int64, seats []model.SeatRef) (model.LockOutcome, error) {
	const op = "lock seats"

	req := lockRequest{EventoID: eventID, Asientos: make([]lockSeat, 0, len(seats))}
	for _, s := range seats {
		row, ok := model.RowToInteger(s.Row)
		if !ok {
			return model.LockOutcome{}, fmt.Errorf("inventory %s: %w: %q", op, model.ErrInvalidRow, s.Row)
		}
		req.Asientos = append(req.Asientos, lockSeat{Fila: row, Columna: s.Number})
	}

	code, body, err := c.do(ctx, op, http.MethodPost, lockPath, req)
	if err != nil {
		return model.LockOutcome{}, err
	}
	// Rejections usually come back as 4xx with a regular lock body.
	var wire lockResponse
	if !emptyBody(body) && json.Unmarshal(body, &wire) == nil && (wire.Exitoso != nil || wire.Mensaje != "") {
		return wire.toModel(), nil
	}
	if !success(code) {
		return model.LockOutcome{}, &StatusError{Op: op, Code: code}
	}
	return model.LockOutcome{}, fmt.Errorf("%w: undecodable lock response", ErrProtocol)
}

// ConfirmSale confirms the sale of the given seats with their passengers.
// The call is made exactly once; callers must not retry it blindly.
func (c *Client) ConfirmSale(ctx context.Context, catalogEventID int64, seats []model.SelectedSeat) (model.SaleOutcome, error) {
	const op = "confirm sale"

	req := saleRequest{EventoID: catalogEventID, Asientos: make([]saleSeat, 0, len(seats))}
	for _, s := range seats {
		req.Asientos = append(req.Asientos, saleSeat{
			Fila:            s.Row,
			Numero:          s.Number,
			NombrePersona:   deref(s.FirstName),
			ApellidoPersona: deref(s.LastName),
		})
	}

	code, body, err := c.do(ctx, op, http.MethodPost, salePath, req)
	if err != nil {
		return model.SaleOutcome{}, err
	}
	var wire saleResponse
	if !emptyBody(body) && json.Unmarshal(body, &wire) == nil && wire.Resultado != "" {
		return wire.toModel(), nil
	}
	if !success(code) {
		return model.SaleOutcome{}, &StatusError{Op: op, Code: code}
	}
	return model.SaleOutcome{}, fmt.Errorf("%w: undecodable sale response", ErrProtocol)
}

// do performs one bounded round trip and returns the status and body.
// Connectivity failures, timeouts and gateway statuses (502/503/504) are
// reported as *TransportError.
func (c *Client) do(ctx context.Context, op, method, path string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("inventory %s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("inventory %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return resp.StatusCode, nil, &TransportError{Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return resp.StatusCode, body, nil
}

func success(code int) bool { return code >= 200 && code < 300 }

func emptyBody(b []byte) bool {
	t := bytes.TrimSpace(b)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
