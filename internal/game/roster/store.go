package roster

import (
	"context"
	"errors"
)

// ErrNoSave is returned by Store.Load when the owner has no saved roster.
var ErrNoSave = errors.New("no saved roster")

// Store persists roster State per owner.
type Store interface {
	// Save replaces the owner's saved state.
	Save(ctx context.Context, owner string, s *State) error
	// Load returns the owner's saved state or ErrNoSave.
	Load(ctx context.Context, owner string) (*State, error)
}
