package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates an idempotency hit: a record with the same
// idempotency key was already created. Callers receive the existing record
// alongside this error.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidTransition indicates a status transition that is not permitted
// by the state machine. Surfaced to the caller, never silently corrected.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrConcurrentModification indicates a compare-and-set update lost to a
// concurrent writer. The caller should re-read and retry.
var ErrConcurrentModification = errors.New("record modified concurrently")

// ErrDataIntegrity indicates stored data violates a structural invariant,
// e.g. overlapping rate validity windows. Fatal for the operation; logged
// with full context and never auto-resolved by guessing.
var ErrDataIntegrity = errors.New("data integrity violation")

// ErrUnauthorized indicates a missing or invalid credential.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
