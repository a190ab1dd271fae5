package model

// LockOutcome is the inventory service's answer to a lock request.  The
// remote side may grant only part of the request.
type LockOutcome struct {
	Succeeded        bool      `json:"succeeded"`
	Message          string    `json:"message"`
	LockedSeats      []SeatRef `json:"locked_seats"`
	UnavailableSeats []SeatRef `json:"unavailable_seats"`
}

// SaleResult is the final state of a sale confirmation.
type SaleResult string

const (
	SaleSuccess SaleResult = "SUCCESS"
	SaleFailure SaleResult = "FAILURE"
)

// SaleOutcome is the inventory service's answer to a sale confirmation.
type SaleOutcome struct {
	Result       SaleResult `json:"result"`
	Message      string     `json:"message"`
	RemoteSaleID *int64     `json:"remote_sale_id,omitempty"`
}

// Succeeded reports whether the sale went through.
func (o SaleOutcome) Succeeded() bool { return o.Result == SaleSuccess }
