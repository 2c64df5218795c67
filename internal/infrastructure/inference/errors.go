// Package inference wraps the remote completion services behind the two
// generator capabilities the analysis steps consume, with a shared retry
// policy and a transient/permanent failure taxonomy.
package inference

import (
	"errors"
	"fmt"
)

// FailureKind classifies a remote failure for the runner's failure policy.
type FailureKind int

const (
	// KindTransient covers timeouts, rate limits and server-side errors that
	// are expected to succeed on retry.
	KindTransient FailureKind = iota
	// KindPermanent covers malformed requests and unrecoverable parse
	// failures; retrying cannot help.
	KindPermanent
)

// RemoteError carries the failure classification alongside the cause.
type RemoteError struct {
	Kind FailureKind
	Op   string
	Err  error
}

func (e *RemoteError) Error() string {
	kind := "transient"
	if e.Kind == KindPermanent {
		kind = "permanent"
	}
	return fmt.Sprintf("%s: %s failure: %v", e.Op, kind, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Transient wraps err as a retryable remote failure.
func Transient(op string, err error) error {
	return &RemoteError{Kind: KindTransient, Op: op, Err: err}
}

// Permanent wraps err as a non-retryable remote failure.
func Permanent(op string, err error) error {
	return &RemoteError{Kind: KindPermanent, Op: op, Err: err}
}

// IsTransient reports whether err is classified as transient.
func IsTransient(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == KindTransient
}

// IsPermanent reports whether err is classified as permanent.
func IsPermanent(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == KindPermanent
}
