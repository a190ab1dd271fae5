// Package queue carries sale notifications over RabbitMQ: the payload
// published after a confirmed sale, the publisher and the audit consumer.
package queue

// SaleConfirmedQueue is the durable queue sale notifications go to.
const SaleConfirmedQueue = "sale.confirmed"

// SaleConfirmedEvent is published when the inventory service accepts a
// sale.  It carries enough for downstream consumers to log, notify or run
// analytics without calling back into this service.
type SaleConfirmedEvent struct {
	MessageID      string     `json:"message_id"`
	Principal      string     `json:"principal"`
	EventID        int64      `json:"event_id"`
	CatalogEventID int64      `json:"catalog_event_id"`
	EventTitle     string     `json:"event_title"`
	RemoteSaleID   *int64     `json:"remote_sale_id,omitempty"`
	Seats          []SoldSeat `json:"seats"`
	ConfirmedAt    string     `json:"confirmed_at"`
}

// SoldSeat is one seat of a confirmed sale.
type SoldSeat struct {
	Row       string `json:"row"`
	Number    int    `json:"number"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
