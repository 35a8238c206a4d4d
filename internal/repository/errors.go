package repository

import "errors"

var (
	// ErrConflict is returned by Insert when the memory id already exists.
	ErrConflict = errors.New("memory id already exists")

	// ErrAlreadyPurchased is returned by MarkPaid when the memory has
	// already moved to paid. Payment status is monotonic; the row is never
	// moved back.
	ErrAlreadyPurchased = errors.New("memory already purchased")

	// ErrInvalidTransition is returned when a write would move a memory to
	// a state the pending -> paid machine does not allow.
	ErrInvalidTransition = errors.New("invalid payment state transition")
)
