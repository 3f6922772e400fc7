// Package svcerr defines the error taxonomy shared by the vision and recipe
// service adapters. Callers classify failures with errors.As and the helper
// predicates instead of matching error strings.
package svcerr

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a failure from an external service.
type Kind int

const (
	Unknown Kind = iota
	Timeout
	QuotaExceeded
	InvalidImage
	InvalidResponse
)

func (k Kind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case QuotaExceeded:
		return "quota_exceeded"
	case InvalidImage:
		return "invalid_image"
	case InvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// ServiceError is a failure from an outbound call to an external service.
type ServiceError struct {
	Service string
	Kind    Kind
	// RetryAfter holds the cooldown the service asked for, when it reported
	// one (e.g. via a Retry-After header). Zero means unreported.
	RetryAfter time.Duration
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Service, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Kind)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// New wraps err as a ServiceError of the given kind.
func New(service string, kind Kind, err error) *ServiceError {
	return &ServiceError{Service: service, Kind: kind, Err: err}
}

// IsKind reports whether err is a ServiceError of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Kind == kind
}

// Transient reports whether err is a service failure worth retrying.
// Quota errors are not transient: retrying only burns more quota.
func Transient(err error) bool {
	var se *ServiceError
	if !errors.As(err, &se) {
		return false
	}
	return se.Kind == Timeout || se.Kind == Unknown
}

// RetryAfter returns the cooldown a failed call asked for, or zero.
func RetryAfter(err error) time.Duration {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.RetryAfter
	}
	return 0
}

// InputError reports malformed caller input. It is never retried.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return e.Msg
}

// Input creates an InputError.
func Input(format string, args ...any) *InputError {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

// IsInput reports whether err is an InputError.
func IsInput(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// ConfigError reports a missing or malformed configuration value. It is
// fatal at startup, never recoverable per-request.
type ConfigError struct {
	Key string
	Msg string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Msg)
}

// Config creates a ConfigError for the given key.
func Config(key, format string, args ...any) *ConfigError {
	return &ConfigError{Key: key, Msg: fmt.Sprintf(format, args...)}
}
