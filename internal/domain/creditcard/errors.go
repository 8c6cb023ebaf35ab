package creditcard

import "errors"

var (
	ErrInvalidInput = errors.New("invalid card input")
	// ErrCardNotFound covers both a missing card and a card owned by someone
	// else, so the API never reveals whether a foreign card exists.
	ErrCardNotFound  = errors.New("credit card not found")
	ErrNotHouseOwner = errors.New("only house owners can manage credit cards")
	ErrInactiveUser  = errors.New("user is inactive")
	ErrCardInUse     = errors.New("credit card has open invoices")
)
