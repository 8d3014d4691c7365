package ports

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FailureKind classifies why a collaborator call failed.
type FailureKind string

const (
	FailureAuth      FailureKind = "auth"
	FailureQuota     FailureKind = "quota"
	FailureTransient FailureKind = "transient"
	FailureTimeout   FailureKind = "timeout"
	FailureMalformed FailureKind = "malformed"
)

// CollaboratorError is returned by every external collaborator adapter.
type CollaboratorError struct {
	Collaborator string
	Kind         FailureKind
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s %s failure: %v", e.Collaborator, e.Kind, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// NewCollaboratorError wraps err, promoting context deadlines to FailureTimeout.
func NewCollaboratorError(collaborator string, kind FailureKind, err error) *CollaboratorError {
	if errors.Is(err, context.DeadlineExceeded) {
		kind = FailureTimeout
	}
	return &CollaboratorError{Collaborator: collaborator, Kind: kind, Err: err}
}

// FailureKindOf extracts the kind from err or reports false.
func FailureKindOf(err error) (FailureKind, bool) {
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return "", false
}

// KindForStatus maps an HTTP status code to a failure kind.
func KindForStatus(status int) FailureKind {
	switch {
	case status == 401 || status == 403:
		return FailureAuth
	case status == 429:
		return FailureQuota
	case status == 408 || status == 504:
		return FailureTimeout
	case status >= 500:
		return FailureTransient
	default:
		return FailureMalformed
	}
}

// KindForTransportError maps a failed round trip to timeout or transient.
func KindForTransportError(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return FailureTimeout
	}
	return FailureTransient
}
