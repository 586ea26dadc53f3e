package service

import "errors"

// Business errors surfaced by the service layer. The exact message strings
// travel to clients in socket "error" payloads, so they are part of the wire
// contract and must not change casually.
var (
	// ErrRoomNotFound: the target room does not exist or is inactive.
	ErrRoomNotFound = errors.New("Room not found")
	// ErrRoomFull: the room is at capacity at join time.
	ErrRoomFull = errors.New("Room is full")
	// ErrNotInRoom: the actor attempted a member-only action without an
	// active membership.
	ErrNotInRoom = errors.New("User not in room")
	// ErrPetNotFound: the target pet does not exist.
	ErrPetNotFound = errors.New("Pet not found")
	// ErrNotYourPet: the actor attempted to mutate a pet it does not own.
	ErrNotYourPet = errors.New("Not your pet")
	// ErrValidation wraps malformed input (bad pet type, missing drawing).
	ErrValidation = errors.New("Validation failed")
	// ErrAuthenticationFailed: missing or invalid credential.
	ErrAuthenticationFailed = errors.New("Authentication failed")
	// ErrTransient: the durable store is unavailable; the caller may retry.
	ErrTransient = errors.New("Temporary server error")
)
