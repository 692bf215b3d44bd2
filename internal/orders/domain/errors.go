package orders

import "errors"

// ErrNotFound is returned when an order does not exist.
var ErrNotFound = errors.New("orders: not found")

// ErrBadTransition is returned for a disallowed status change.
var ErrBadTransition = errors.New("orders: invalid status transition")

// ErrCompletedImmutable is returned when totals of a completed order
// would be mutated.
var ErrCompletedImmutable = errors.New("orders: completed order totals are immutable")
