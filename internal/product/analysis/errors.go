package analysis

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoFile             = errors.New("no file provided for analysis")
	ErrBackendUnavailable = errors.New("analysis backend is not available")
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	switch {
	case e.IsClientError():
		return fmt.Sprintf("client error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	case e.IsServerError():
		return fmt.Sprintf("server error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	default:
		return fmt.Sprintf("unexpected status: %d", e.StatusCode)
	}
}

func (e *StatusError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

func (e *StatusError) IsServerError() bool {
	return e.StatusCode >= 500
}

// Outcome classifies the result of an analysis call.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeClientError Outcome = "client_error"
	OutcomeServerError Outcome = "server_error"
	OutcomeUnknown     Outcome = "unknown"
)

// Classify maps an Analyze error to its Outcome.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	if errors.Is(err, ErrBackendUnavailable) {
		return OutcomeUnavailable
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.IsClientError():
			return OutcomeClientError
		case statusErr.IsServerError():
			return OutcomeServerError
		}
	}
	return OutcomeUnknown
}
