package orders

import "errors"

var (
	// ErrValidation marks caller input that is incomplete or malformed. It is
	// detected before any statement reaches the database.
	ErrValidation = errors.New("invalid order request")

	// ErrInconsistent marks unexpected storage state, such as a menu item that
	// disappeared while the order was being placed.
	ErrInconsistent = errors.New("inconsistent storage state")
)
