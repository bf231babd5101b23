// Package apierr holds the error object returned by every endpoint.
package apierr

import (
	"errors"
	"fmt"
)

const (
	NonRetriableCode = 1
	RetriableCode    = 2
)

// Error is serialized as-is to the client.
type Error struct {
	Code      int                    `json:"code"`
	Message   string                 `json:"message"`
	Retriable bool                   `json:"retriable"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s %v", e.Message, e.Details)
}

func NonRetriable(format string, args ...interface{}) *Error {
	return &Error{Code: NonRetriableCode, Message: fmt.Sprintf(format, args...)}
}

// Retriable is only produced at the node client boundary.
func Retriable(format string, args ...interface{}) *Error {
	return &Error{Code: RetriableCode, Message: fmt.Sprintf(format, args...), Retriable: true}
}

func (e *Error) WithDetails(key string, value interface{}) *Error {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{Code: e.Code, Message: e.Message, Retriable: e.Retriable, Details: details}
}

// From passes an *Error through unchanged and turns anything else into a
// non retriable error carrying the original message.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return NonRetriable("%s", err.Error())
}

// Catalog lists every error code the service can return.
func Catalog() []*Error {
	return []*Error{
		{Code: NonRetriableCode, Message: "non retriable error"},
		{Code: RetriableCode, Message: "retriable error", Retriable: true},
	}
}
