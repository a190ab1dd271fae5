package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRow is returned when a row label is neither a single letter
// A–Z nor a numeral string.
var ErrInvalidRow = errors.New("invalid row encoding")

// SeatState is the occupancy of a seat as reported by the inventory service.
type SeatState string

const (
	SeatFree     SeatState = "FREE"
	SeatSelected SeatState = "SELECTED"
	SeatLocked   SeatState = "LOCKED"
	SeatSold     SeatState = "SOLD"
)

// Seat is one entry of a seat map.  Row is textual because venues label
// rows either with letters or numbers.
type Seat struct {
	Row    string    `json:"row"`
	Column int       `json:"number"`
	State  SeatState `json:"state"`
}

// Ref returns the coordinates of the seat.
func (s Seat) Ref() SeatRef { return SeatRef{Row: s.Row, Number: s.Column} }

// SeatMap is the seat layout of one event.  An empty map means the
// inventory service has not materialised the event yet.
type SeatMap struct {
	EventID int64  `json:"event_id"`
	Seats   []Seat `json:"seats"`
}

// Cold reports whether the inventory service returned no seats.
func (m SeatMap) Cold() bool { return len(m.Seats) == 0 }

// SeatRef identifies a seat by row label and seat number.
type SeatRef struct {
	Row    string `json:"row"`
	Number int    `json:"number"`
}

// Key returns the "row-number" key used to attach passenger names.
func (r SeatRef) Key() string { return SeatKey(r.Row, r.Number) }

// Validate checks that the row is encodable and the number is positive.
func (r SeatRef) Validate() error {
	if _, ok := RowToInteger(r.Row); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRow, r.Row)
	}
	if r.Number <= 0 {
		return fmt.Errorf("invalid seat number %d", r.Number)
	}
	return nil
}

// SeatKey builds the "row-number" key for a seat.
func SeatKey(row string, number int) string {
	return strings.TrimSpace(row) + "-" + strconv.Itoa(number)
}

// RowToInteger converts a row label to the numeric row expected by the
// inventory protocol.  A single letter maps A=1 … Z=26 (case-insensitive),
// numeral strings are parsed as-is.  Anything else reports false.
func RowToInteger(row string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(row))
	if s == "" {
		return 0, false
	}
	if len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z' {
		return int(s[0]-'A') + 1, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
