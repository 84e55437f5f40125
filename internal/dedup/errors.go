package dedup

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// RemovalReason categorizes why a removal failed
type RemovalReason int

const (
	RemovalNotFound RemovalReason = iota
	RemovalPermissionDenied
	RemovalFileInUse
	RemovalUnknown
)

// String returns a human-readable removal failure reason
func (r RemovalReason) String() string {
	switch r {
	case RemovalNotFound:
		return "file not found"
	case RemovalPermissionDenied:
		return "permission denied"
	case RemovalFileInUse:
		return "file in use"
	default:
		return "unknown error"
	}
}

// RemovalError records one failed removal. Removal failures never abort
// the run; they accumulate on the report.
type RemovalError struct {
	Path   string
	Reason RemovalReason
	Err    error
}

// Error implements the error interface
func (e *RemovalError) Error() string {
	return fmt.Sprintf("%s: %s (%v)", e.Path, e.Reason, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As
func (e *RemovalError) Unwrap() error {
	return e.Err
}

// categorizeRemoval maps a deletion error to a RemovalError
func categorizeRemoval(path string, err error) *RemovalError {
	if err == nil {
		return nil
	}

	reason := RemovalUnknown
	switch {
	case os.IsNotExist(err):
		reason = RemovalNotFound
	case os.IsPermission(err):
		reason = RemovalPermissionDenied
	default:
		var errno syscall.Errno
		if errors.As(err, &errno) {
			switch errno {
			case syscall.ENOENT:
				reason = RemovalNotFound
			case syscall.EACCES, syscall.EPERM:
				reason = RemovalPermissionDenied
			case syscall.EBUSY, syscall.ETXTBSY:
				reason = RemovalFileInUse
			}
		}
	}

	return &RemovalError{Path: path, Reason: reason, Err: err}
}
