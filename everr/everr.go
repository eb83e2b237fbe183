// Package everr defines the error kinds returned across the reactor,
// offload and config packages, and the wrapping helpers used to
// attach operation context to them while keeping errors.Is composable
// against the underlying sentinel.
package everr

import "github.com/pkg/errors"

// Kind identifies which class of failure an error belongs to. See
// spec §7.
type Kind struct{ error }

// Error kinds.
var (
	// ConfigError is returned for malformed or contradictory directives.
	ConfigError = Kind{errors.New("config error")}
	// ResourceExhaustion is returned when a bounded resource (queue
	// capacity, fd table, event cache) is exhausted.
	ResourceExhaustion = Kind{errors.New("resource exhaustion")}
	// PlatformError wraps an underlying syscall/kernel failure.
	PlatformError = Kind{errors.New("platform error")}
	// Stale is returned (internally, never surfaced to Handler) when a
	// notification's instance bit no longer matches the live
	// registration and must be dropped.
	Stale = Kind{errors.New("stale notification")}
	// Backend is returned when a Driver operation is invoked in a
	// state its backend does not support (e.g. Enable on an RTSig
	// backend, which has no per-event registration).
	Backend = Kind{errors.New("unsupported by backend")}
)

// Wrap attaches msg as context to kind, preserving errors.Is(result, kind).
func Wrap(kind Kind, msg string) error {
	return errors.Wrap(kind, msg)
}

// Wrapf attaches a formatted message as context to kind.
func Wrapf(kind Kind, format string, args ...interface{}) error {
	return errors.Wrapf(kind, format, args...)
}

// Is reports whether err is, or wraps, kind.
func Is(err error, kind Kind) bool {
	return errors.Is(err, kind)
}
