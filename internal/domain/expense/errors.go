package expense

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid expense input")
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrExpensePaid          = errors.New("expense is already paid")
	ErrNoParticipants       = errors.New("expense has no participants")
	ErrShareSumMismatch     = errors.New("sum of participant shares must equal the expense total")
	ErrDuplicateParticipant = errors.New("duplicate participant")
	ErrParticipantNotMember = errors.New("participant is not a member of the expense's house")
	ErrCardRequired         = errors.New("credit card is required when payment method is credit")
)
