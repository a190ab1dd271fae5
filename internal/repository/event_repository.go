// Package repository contains the MySQL data access logic.  The event
// catalog is maintained by another subsystem and is only read here:
//
//	events(id, catalog_event_id NULL, title, starts_at DATETIME, cancelled,
//	       row_count NULL, column_count NULL)
//
// Confirmed sales are written by the sale consumer into sales and
// sale_seats (see SaleRepo).
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

const eventColumns = `id, catalog_event_id, title, starts_at, cancelled, row_count, column_count`

// EventRepo reads events from MySQL.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// GetByID retrieves an event by its local id.  Unknown ids yield an error
// wrapping model.ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id int64) (model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	ev, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Event{}, fmt.Errorf("event %d: %w", id, model.ErrEventNotFound)
		}
		return model.Event{}, err
	}
	return ev, nil
}

// ListActive returns events that are not cancelled and start after now,
// earliest first.  An empty catalog yields an empty slice.
func (r *EventRepo) ListActive(ctx context.Context, now time.Time) ([]model.Event, error) {
	const q = `SELECT ` + eventColumns + `
               FROM events
               WHERE cancelled = 0 AND starts_at > ?
               ORDER BY starts_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (model.Event, error) {
	var (
		ev             model.Event
		catalogID      sql.NullInt64
		rowCnt, colCnt sql.NullInt32
	)
	if err := s.Scan(&ev.ID, &catalogID, &ev.Title, &ev.StartsAt, &ev.Cancelled, &rowCnt, &colCnt); err != nil {
		return model.Event{}, err
	}
	if catalogID.Valid {
		v := catalogID.Int64
		ev.CatalogEventID = &v
	}
	if rowCnt.Valid {
		v := int(rowCnt.Int32)
		ev.RowCount = &v
	}
	if colCnt.Valid {
		v := int(colCnt.Int32)
		ev.ColumnCount = &v
	}
	ev.StartsAt = ev.StartsAt.UTC()
	return ev, nil
}
