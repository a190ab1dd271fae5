package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// SaleRepo stores confirmed sales.  Rows are keyed by the message id of
// the sale.confirmed notification so redelivered messages are recorded
// once:
//
//	sales(id, message_id UNIQUE, principal, event_id, catalog_event_id,
//	      remote_sale_id NULL, confirmed_at DATETIME)
//	sale_seats(sale_id, seat_row, seat_number, first_name, last_name)
type SaleRepo struct {
	db *sql.DB
}

// NewSaleRepo returns a new SaleRepo bound to the given database.
func NewSaleRepo(db *sql.DB) *SaleRepo { return &SaleRepo{db: db} }

// SaleRecord mirrors the sales table.
type SaleRecord struct {
	ID             int64
	MessageID      string
	Principal      string
	EventID        int64
	CatalogEventID int64
	RemoteSaleID   *int64
	ConfirmedAt    time.Time
}

// SaleSeatRecord mirrors the sale_seats table.
type SaleSeatRecord struct {
	Row       string
	Number    int
	FirstName string
	LastName  string
}

// ErrEmptySale is returned when a sale without seats is recorded.
var ErrEmptySale = errors.New("sale has no seats")

// Record inserts the sale and its seats in one transaction and fills in
// sale.ID.  It reports false, without error, when a sale with the same
// message id was already stored.
func (r *SaleRepo) Record(ctx context.Context, sale *SaleRecord, seats []SaleSeatRecord) (bool, error) {
	if len(seats) == 0 {
		return false, ErrEmptySale
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	inserted, err := r.createTx(ctx, tx, sale)
	if err != nil || !inserted {
		return false, err
	}
	if err := r.createSeatsBulkTx(ctx, tx, sale.ID, seats); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *SaleRepo) createTx(ctx context.Context, tx *sql.Tx, sale *SaleRecord) (bool, error) {
	const q = `INSERT IGNORE INTO sales (message_id, principal, event_id, catalog_event_id, remote_sale_id, confirmed_at)
               VALUES (?, ?, ?, ?, ?, ?)`
	var remote sql.NullInt64
	if sale.RemoteSaleID != nil {
		remote = sql.NullInt64{Int64: *sale.RemoteSaleID, Valid: true}
	}
	res, err := tx.ExecContext(ctx, q, sale.MessageID, sale.Principal, sale.EventID, sale.CatalogEventID, remote, sale.ConfirmedAt.UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, err
	}
	sale.ID = id
	return true, nil
}

// createSeatsBulkTx inserts every seat in a single statement.
func (r *SaleRepo) createSeatsBulkTx(ctx context.Context, tx *sql.Tx, saleID int64, seats []SaleSeatRecord) error {
	var b strings.Builder
	b.WriteString(`INSERT INTO sale_seats (sale_id, seat_row, seat_number, first_name, last_name) VALUES `)
	args := make([]any, 0, len(seats)*5)
	for i, s := range seats {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, saleID, s.Row, s.Number, s.FirstName, s.LastName)
	}
	_, err := tx.ExecContext(ctx, b.String(), args...)
	return err
}
