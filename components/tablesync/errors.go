package tablesync

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSyncInProgress reports that an auto-sync run is already active.
	ErrSyncInProgress = errors.New("tablesync: sync already in progress")
	// ErrSourceNotFound reports an unknown data source id.
	ErrSourceNotFound = errors.New("tablesync: data source not found")
	// ErrWriterNotConfigured reports a service without a table backend.
	ErrWriterNotConfigured = errors.New("tablesync: table writer not configured")
	// ErrInvalidInput reports a caller supplied value that cannot be used,
	// such as an unknown mode or a record rejected by its source schema.
	ErrInvalidInput = errors.New("tablesync: invalid input")
)

// ValidationError reports missing or invalid sync configuration. It is
// raised before any network call is made.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "tablesync: invalid configuration"
	}
	return fmt.Sprintf("tablesync: missing configuration: %s", strings.Join(e.Fields, ", "))
}

// APIError is returned when the remote table service answers with a
// non-2xx status.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tablesync: remote error %d: %s", e.Status, e.Body)
}

// TransportError wraps network level failures (DNS, connection, timeout).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("tablesync: transport: %v", e.Err)
	}
	return fmt.Sprintf("tablesync: transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsAPI reports whether err is or wraps an APIError and returns it.
func IsAPI(err error) (*APIError, bool) {
	var target *APIError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// IsInvalidInput reports whether err was caused by bad caller input, either
// ErrInvalidInput or a ValidationError.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) || IsValidation(err)
}

// IsTransport reports whether err is or wraps a TransportError.
func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}
