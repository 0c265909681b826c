package room

import "errors"

// Error taxonomy for room-manager and relay operations, declared as
// comparable sentinel errors since the relay layer needs to switch on
// error identity to pick an ack payload.
var (
	ErrInvalidName  = errors.New("invalid roomId")
	ErrNotFound     = errors.New("room not found")
	ErrConflict     = errors.New("room already exists")
	ErrCapacity     = errors.New("room full")
	ErrUnauthorized = errors.New("unauthorized")
	ErrReadyGate    = errors.New("not all players are ready")
)
