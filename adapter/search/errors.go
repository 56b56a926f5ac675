package search

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/squashedelephant/connectors/types"
)

// Error types reported by the engine that connectors act on.
const (
	TypeIndexNotFound = "index_not_found_exception"
	TypeAlreadyExists = "resource_already_exists_exception"
)

// ErrNotAcknowledged indicates an index creation the cluster did not acknowledge.
var ErrNotAcknowledged = errors.New("connectors: index creation not acknowledged")

// ResponseError is an error response returned by the engine.
type ResponseError struct {
	// Status is the HTTP status code.
	Status int
	// Type is error.type of the response body.
	Type string
	// Reason is error.reason of the response body.
	Reason string
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("search: status %d", e.Status)
	}

	return fmt.Sprintf("search: status %d: %s: %s", e.Status, e.Type, e.Reason)
}

// ParseResponseError decodes an error response body.
//
// Bodies that are not JSON still produce a ResponseError carrying the status.
func ParseResponseError(status int, body io.Reader) *ResponseError {
	re := &ResponseError{Status: status}

	raw, err := io.ReadAll(body)
	if err != nil || len(raw) == 0 {
		return re
	}

	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		re.Reason = string(raw)
		return re
	}

	var detail struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(payload.Error, &detail); err != nil {
		// Some responses carry error as a plain string.
		var s string
		if json.Unmarshal(payload.Error, &s) == nil {
			re.Reason = s
		}

		return re
	}
	re.Type = detail.Type
	re.Reason = detail.Reason

	return re
}

// ClassifyResponse converts an error response into a *types.Error.
//
//   - index_not_found_exception or any other 404: KindTargetMissing
//   - any other 400: KindInvalidRequest
//   - everything else: KindUnknown
func ClassifyResponse(op string, re *ResponseError) error {
	kind := types.KindUnknown
	switch {
	case re.Type == TypeIndexNotFound, re.Status == http.StatusNotFound:
		kind = types.KindTargetMissing
	case re.Status == http.StatusBadRequest:
		kind = types.KindInvalidRequest
	}

	return types.NewError(kind, op, re)
}

// ClassifyTransport converts a transport failure into a *types.Error.
func ClassifyTransport(op string, err error) error {
	var classified *types.Error
	if errors.As(err, &classified) {
		return err
	}
	if types.IsDeadline(err) {
		return types.NewError(types.KindTimeout, op, err)
	}

	return types.NewError(types.KindUnreachable, op, err)
}

// IsAlreadyExists reports whether err is a resource_already_exists_exception.
func IsAlreadyExists(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.Type == TypeAlreadyExists
}

// DecodeResponse reads a response body.
//
// Status codes of 300 and above are classified with ClassifyResponse.
//
// Parameters:
//   - op: Operation name for error reporting
//   - status: HTTP status code
//   - body: Response body
//
// Returns:
//   - types.Record: Decoded body (empty if the body is empty)
//   - error: Classified error
func DecodeResponse(op string, status int, body io.Reader) (types.Record, error) {
	if status >= http.StatusMultipleChoices {
		return nil, ClassifyResponse(op, ParseResponseError(status, body))
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, ClassifyTransport(op, err)
	}

	out := types.Record{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, types.NewError(types.KindUnknown, op, err)
	}

	return out, nil
}
