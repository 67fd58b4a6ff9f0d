package dao

import "errors"

// Sentinel errors shared by all stores; match them with errors.Is.
var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID indicates an empty or otherwise invalid key.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when a nil entity is persisted.
	ErrNilEntity = errors.New("dao: nil entity")

	// ErrExists is returned by Create when the key is already taken.
	ErrExists = errors.New("dao: already exists")

	// ErrAlreadyDecided is returned when a terminal submission is transitioned again.
	ErrAlreadyDecided = errors.New("dao: already decided")

	// ErrClaimed is returned when another decider holds the submission.
	ErrClaimed = errors.New("dao: claimed by another decider")

	// ErrNotClaimed is returned when a decider completes a submission it does not hold.
	ErrNotClaimed = errors.New("dao: not claimed by decider")
)
