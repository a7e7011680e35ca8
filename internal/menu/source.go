package menu

import (
	"context"
	"time"
)

// Source fetches the menu of one dining hall.
//
// Implementations keep a private cache of raw responses that lives as long as the
// instance does, they are not safe for concurrent use.
type Source interface {
	// ID is the stable short identifier of the hall, used for configuration keys.
	ID() string
	// Name is the display name of the hall.
	Name() string
	// GetMenu returns the menu served on the calendar date of day. Failures are
	// classified with ErrNotAvailable or ErrMalformed.
	GetMenu(ctx context.Context, day time.Time) (Menu, error)
}
