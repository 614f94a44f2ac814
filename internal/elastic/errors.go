package elastic

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of failure categories the snapshot API surface can
// report. The register stage maps kinds onto the status codes the tool
// prints: InvalidPayload reports 406, everything else 404.
type Kind int

const (
	KindNotFound Kind = iota
	KindInvalidPayload
	KindNetworkFailure
	KindPreconditionNotMet
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidPayload:
		return "invalid_payload"
	case KindNetworkFailure:
		return "network_failure"
	case KindPreconditionNotMet:
		return "precondition_not_met"
	default:
		return "other"
	}
}

// StatusCode returns the HTTP status the register stage reports for this
// kind.
func (k Kind) StatusCode() int {
	if k == KindInvalidPayload {
		return http.StatusNotAcceptable
	}
	return http.StatusNotFound
}

// Error is a categorized snapshot API failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from err, defaulting to KindOther.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindOther
}
