package roster

import (
	"errors"
	"fmt"
)

// Validation failures. Operations returning one of these made no change.
var (
	ErrPartyFull           = errors.New("party is full")
	ErrPartyEmpty          = errors.New("party is empty")
	ErrNotOnBench          = errors.New("creature is not on the bench")
	ErrNotInParty          = errors.New("creature is not in the party")
	ErrAlreadyActive       = errors.New("creature is already active")
	ErrFainted             = errors.New("creature has fainted")
	ErrItemAlreadyEquipped = errors.New("item is already equipped")
	ErrSlotOccupied        = errors.New("creature already has an item equipped")
	ErrItemNotEquipped     = errors.New("item is not equipped on that creature")
	ErrUnknownItem         = errors.New("item is not owned")
	ErrDuplicateItem       = errors.New("item is already owned")
	ErrDuplicateCreature   = errors.New("creature is already in the roster")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrNotPlayerOwned      = errors.New("creature is not player owned")
	ErrUnknownTemplate     = errors.New("unknown creature template")
	ErrUnknownWild         = errors.New("no such wild creature")
	ErrCaptureFailed       = errors.New("capture failed")
)

// InvariantError reports corrupt or inconsistent state detected by Op, such
// as a record whose template cannot be resolved. The operation was aborted
// before any mutation.
type InvariantError struct {
	Op  string
	Err error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("roster %s: invariant violated: %v", e.Op, e.Err)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}
