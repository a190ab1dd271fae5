package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// seatInput is one element of the PUT /v1/session/seats body.
type seatInput struct {
	Row    string `json:"row" validate:"required,max=3"`
	Number int    `json:"number" validate:"gt=0"`
}

// nameInput is one value of the PUT /v1/session/names body.
type nameInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

func (in seatInput) ref() model.SeatRef { return model.SeatRef{Row: in.Row, Number: in.Number} }

func (in nameInput) name() model.PassengerName {
	return model.PassengerName{FirstName: in.FirstName, LastName: in.LastName}
}

// describe turns validator output into a short client message.
func describe(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
