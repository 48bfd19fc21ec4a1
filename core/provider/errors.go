package provider

import (
	"errors"
	"fmt"

	"datasync/core/utils"
)

// ErrNoFetcher is reported when a pass runs on a provider without a fetcher.
var ErrNoFetcher = errors.New("provider: no fetcher configured")

// Error is a failed request: either the reason/code pair carried by the error
// body, or the transport status text and code.
type Error struct {
	Reason string
	// Code is whatever the body carried, or the HTTP status code as an int.
	Code any
}

func (e *Error) Error() string {
	if e.Code == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s (code %s)", e.Reason, utils.ToString(e.Code))
}

// IsRequestError reports whether err is, or wraps, a request Error.
func IsRequestError(err error) bool {
	var re *Error
	return errors.As(err, &re)
}

// errorFromResponse builds the Error for a non-success response. data is the
// decoded body.
func errorFromResponse(resp *Response, data any) *Error {
	if obj, ok := data.(map[string]any); ok && utils.Truthy(obj["reason"]) {
		return &Error{Reason: utils.ToString(obj["reason"]), Code: obj["code"]}
	}
	return &Error{Reason: resp.Status, Code: resp.StatusCode}
}
