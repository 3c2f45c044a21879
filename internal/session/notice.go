package session

import (
	"errors"

	"github.com/robalobadob/wordle-helper/internal/tracker"
)

// Notice is a recoverable refusal shown to the player as a blocking message.
type Notice struct {
	Code    string // position_conflict | exclusion_conflict | row_capacity | cell_occupied
	Message string
	Err     error
}

func (n *Notice) Error() string { return n.Message }

func (n *Notice) Unwrap() error { return n.Err }

// asNotice turns the tracker refusals a player should see into a *Notice.
// Anything else is returned unchanged.
func asNotice(err error) error {
	var ce *tracker.ConflictError
	switch {
	case errors.As(err, &ce) && errors.Is(err, tracker.ErrPositionConflict):
		return &Notice{Code: "position_conflict", Message: ce.Error(), Err: err}
	case errors.As(err, &ce):
		return &Notice{Code: "exclusion_conflict", Message: ce.Error(), Err: err}
	case errors.Is(err, tracker.ErrRowCapacityExceeded):
		return &Notice{Code: "row_capacity", Message: "Maximum number of rows reached!", Err: err}
	case errors.Is(err, tracker.ErrCellOccupied):
		return &Notice{Code: "cell_occupied", Message: "That box already has a letter", Err: err}
	}
	return err
}
