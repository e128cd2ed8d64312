// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package provisioner

import "errors"

// Kind classifies an error raised inside the provisioner: Fatal errors
// terminate the main loop, Recoverable ones are logged and the loop
// continues.
type Kind int

const (
	KindRecoverable Kind = iota
	KindFatal
)

func (k Kind) String() string {
	if k == KindFatal {
		return "fatal"
	}
	return "recoverable"
}

// Error pairs a Kind with the underlying cause so callers can decide,
// via errors.As, whether to keep the main loop running.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Recoverable wraps err as a recoverable Error.
func Recoverable(err error) *Error { return &Error{Kind: KindRecoverable, Err: err} }

// Fatal wraps err as a fatal Error.
func Fatal(err error) *Error { return &Error{Kind: KindFatal, Err: err} }

// Sentinel errors named directly in spec.md §7. All are recoverable
// unless noted.
var (
	ErrCanceledAvailabilityCores    = errors.New("availability_cores request canceled")
	ErrCanceledPersistedValidation  = errors.New("persisted_validation_data request canceled")
	ErrCanceledBlockNumber          = errors.New("block_number request canceled")
	ErrCanceledBackedCandidates     = errors.New("backed candidates request canceled")
	ErrSendInherentDataTimeout      = errors.New("send inherent data timeout")
	ErrInherentDataReturnChannel    = errors.New("inherent data return channel closed")
	ErrFailedToSpawnBackgroundTask  = errors.New("failed to spawn background assembly task")
	ErrBackedCandidateOrderingProblem = errors.New("backed candidate ordering problem")

	// ErrSubsystemContextLost is the one fatal condition this module
	// recognizes: the main loop's channel to its caller is gone, so
	// there is no way to receive further signals or deliver replies.
	ErrSubsystemContextLost = errors.New("subsystem context channel lost")
)
