package inventory

import "github.com/iliyamo/event-seat-booking/internal/model"

// Wire types mirror the inventory service's JSON contract.

type seatMapResponse struct {
	EventoID int64          `json:"eventoId"`
	Asientos []seatMapEntry `json:"asientos"`
}

type seatMapEntry struct {
	Fila         string `json:"fila"`
	Numero       *int   `json:"numero"`
	Estado       string `json:"estado"`
	Seleccionado bool   `json:"seleccionado"`
}

type lockRequest struct {
	EventoID int64      `json:"eventoId"`
	Asientos []lockSeat `json:"asientos"`
}

type lockSeat struct {
	Fila    int `json:"fila"`
	Columna int `json:"columna"`
}

type lockResponse struct {
	Exitoso               *bool         `json:"exitoso"`
	Mensaje               string        `json:"mensaje"`
	AsientosBloqueados    []seatRefWire `json:"asientosBloqueados"`
	AsientosNoDisponibles []seatRefWire `json:"asientosNoDisponibles"`
}

type seatRefWire struct {
	Fila   string `json:"fila"`
	Numero int    `json:"numero"`
}

type saleRequest struct {
	EventoID int64      `json:"eventoId"`
	Asientos []saleSeat `json:"asientos"`
}

type saleSeat struct {
	Fila            string `json:"fila"`
	Numero          int    `json:"numero"`
	NombrePersona   string `json:"nombrePersona"`
	ApellidoPersona string `json:"apellidoPersona"`
}

type saleResponse struct {
	Resultado      string `json:"resultado"`
	Mensaje        string `json:"mensaje"`
	VentaIDCatedra *int64 `json:"ventaIdCatedra"`
}

const remoteSaleSuccess = "EXITOSA"

func seatState(estado string, selected bool) model.SeatState {
	switch estado {
	case "LIBRE":
		if selected {
			return model.SeatSelected
		}
		return model.SeatFree
	case "BLOQUEADO":
		return model.SeatLocked
	default: // OCUPADO, VENDIDO and anything unknown
		return model.SeatSold
	}
}

func (r seatMapResponse) toModel() model.SeatMap {
	m := model.SeatMap{EventID: r.EventoID, Seats: make([]model.Seat, 0, len(r.Asientos))}
	for _, a := range r.Asientos {
		if a.Fila == "" || a.Numero == nil {
			continue
		}
		m.Seats = append(m.Seats, model.Seat{Row: a.Fila, Column: *a.Numero, State: seatState(a.Estado, a.Seleccionado)})
	}
	return m
}

func (r lockResponse) toModel() model.LockOutcome {
	out := model.LockOutcome{
		Succeeded:        r.Exitoso != nil && *r.Exitoso,
		Message:          r.Mensaje,
		LockedSeats:      make([]model.SeatRef, 0, len(r.AsientosBloqueados)),
		UnavailableSeats: make([]model.SeatRef, 0, len(r.AsientosNoDisponibles)),
	}
	for _, s := range r.AsientosBloqueados {
		out.LockedSeats = append(out.LockedSeats, model.SeatRef{Row: s.Fila, Number: s.Numero})
	}
	for _, s := range r.AsientosNoDisponibles {
		out.UnavailableSeats = append(out.UnavailableSeats, model.SeatRef{Row: s.Fila, Number: s.Numero})
	}
	return out
}

func (r saleResponse) toModel() model.SaleOutcome {
	out := model.SaleOutcome{Result: model.SaleFailure, Message: r.Mensaje, RemoteSaleID: r.VentaIDCatedra}
	if r.Resultado == remoteSaleSuccess {
		out.Result = model.SaleSuccess
	}
	return out
}
