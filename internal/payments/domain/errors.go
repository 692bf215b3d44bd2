package payments

import "errors"

// ErrNotFound is returned when a payment does not exist.
var ErrNotFound = errors.New("payments: not found")

// ErrBadAmount is returned when a submitted amount is not positive.
var ErrBadAmount = errors.New("payments: amount must be positive")

// ErrBadMethod is returned for an unknown payment method.
var ErrBadMethod = errors.New("payments: unknown method")

// ErrAlreadySettled is returned when mutating a payment that already
// reached a terminal status.
var ErrAlreadySettled = errors.New("payments: payment already settled")
