package sentinel

import (
	"errors"
	"time"
)

// ErrForbidden indicates the bot lacks moderator permissions for an action.
// Enforcement logs it and moves on; it never aborts ingestion.
var ErrForbidden = errors.New("insufficient moderator permissions")

// FaultKind classifies platform failures for the poll loop's backoff.
type FaultKind int

const (
	// FaultUnknown is anything the platform client could not classify.
	FaultUnknown FaultKind = iota

	// FaultTransient covers platform service degradation: HTTP transport
	// errors, 5xx responses, timeouts.
	FaultTransient

	// FaultAuth covers invalid or expired API tokens.
	FaultAuth

	// FaultBadPayload covers well-formed responses carrying garbage, such as
	// unparseable JSON during site issues.
	FaultBadPayload

	// FaultAPI covers request-level API errors (4xx other than auth).
	FaultAPI

	// FaultClient covers errors building or sending a request locally.
	FaultClient
)

// Fault wraps a platform error with its backoff classification.
type Fault struct {
	Kind FaultKind
	Err  error
}

func (f *Fault) Error() string {
	if f.Err == nil {
		return "platform fault"
	}
	return f.Err.Error()
}

func (f *Fault) Unwrap() error { return f.Err }

// Backoff durations per fault class. None of these are fatal; the loop
// sleeps and retries from the top.
const (
	backoffTransient    = 300 * time.Second
	backoffAuth         = 180 * time.Second
	backoffBadPayload   = 180 * time.Second
	backoffAPI          = 30 * time.Second
	backoffClient       = 30 * time.Second
	backoffUnclassified = 5 * time.Minute
)

// Backoff returns how long the poll loop should sleep after err before
// restarting from the top.
func Backoff(err error) time.Duration {
	var fault *Fault
	if !errors.As(err, &fault) {
		return backoffUnclassified
	}
	switch fault.Kind {
	case FaultTransient:
		return backoffTransient
	case FaultAuth:
		return backoffAuth
	case FaultBadPayload:
		return backoffBadPayload
	case FaultAPI:
		return backoffAPI
	case FaultClient:
		return backoffClient
	default:
		return backoffUnclassified
	}
}
