package model

import (
	"errors"
	"time"
)

// ErrEventNotFound is returned by catalog lookups for unknown events.
var ErrEventNotFound = errors.New("event not found")

// Event is the catalog entry for a scheduled event.  The catalog is owned
// by another subsystem; this service only reads it.
//
// Fields:
//  ID             – local identity (events.id).
//  CatalogEventID – identity known to the inventory service (nullable).
//  Title          – display title.
//  StartsAt       – when the event begins (UTC).
//  Cancelled      – whether the event was cancelled.
//  RowCount       – configured seat rows (nullable).
//  ColumnCount    – configured seats per row (nullable).
type Event struct {
	ID             int64     `json:"id"`
	CatalogEventID *int64    `json:"catalog_event_id,omitempty"`
	Title          string    `json:"title"`
	StartsAt       time.Time `json:"starts_at"`
	Cancelled      bool      `json:"cancelled"`
	RowCount       *int      `json:"row_count,omitempty"`
	ColumnCount    *int      `json:"column_count,omitempty"`
}

// Active reports whether the event can still be sold at the given instant.
func (e Event) Active(now time.Time) bool {
	return !e.Cancelled && e.StartsAt.After(now)
}

// RemoteID returns the identity used when talking to the inventory
// service.  Events without a catalog identity fall back to the local one.
func (e Event) RemoteID() int64 {
	if e.CatalogEventID != nil {
		return *e.CatalogEventID
	}
	return e.ID
}

// Bounds returns the configured seat grid, substituting the provided
// defaults for missing or non-positive dimensions.
func (e Event) Bounds(defRows, defCols int) (rows, cols int) {
	rows, cols = defRows, defCols
	if e.RowCount != nil && *e.RowCount > 0 {
		rows = *e.RowCount
	}
	if e.ColumnCount != nil && *e.ColumnCount > 0 {
		cols = *e.ColumnCount
	}
	return rows, cols
}
