package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

var ErrMissingID = fmt.Errorf("missing id")
var ErrInvalidIDType = fmt.Errorf("id must be numeric or string")
var ErrInvalidStringID = fmt.Errorf("invalid string id")
var ErrInvalidNumericID = fmt.Errorf("invalid numeric id")
var ErrEncoding = fmt.Errorf("encoding error")
var ErrInternal = fmt.Errorf("internal error")
var ErrNotFound = fmt.Errorf("not found")
var ErrPreconditionFailed = fmt.Errorf("precondition failed")
var ErrRequest = fmt.Errorf("request error")
var ErrBadRequest = fmt.Errorf("bad request")
var ErrBadResponse = fmt.Errorf("bad response")

type tablesError struct {
	msg    string
	target error
}

func (t tablesError) Error() string        { return t.msg }
func (t tablesError) Is(target error) bool { return target == t.target }

func NewMissingIDError(msg string) error {
	return &tablesError{
		msg:    msg,
		target: ErrMissingID,
	}
}

func NewInvalidIDTypeError(msg string) error {
	return &tablesError{
		msg:    msg,
		target: ErrInvalidIDType,
	}
}

func NewInvalidStringIDError(msg string) error {
	return &tablesError{
		msg:    msg,
		target: ErrInvalidStringID,
	}
}

func NewInvalidNumericIDError(msg string) error {
	return &tablesError{
		msg:    msg,
		target: ErrInvalidNumericID,
	}
}

func NewNotFoundError(msg string) error {
	return &tablesError{
		msg:    msg,
		target: ErrNotFound,
	}
}

func NewPreconditionFailedError(msg string) error {
	return &tablesError{
		msg:    msg,
		target: ErrPreconditionFailed,
	}
}

func NewBadRequestError(msg string) error {
	return &tablesError{
		msg:    msg,
		target: ErrBadRequest,
	}
}

// NewErrorFromServiceResponse converts a non success response from the table
// service into a typed error. The service reports failures as a JSON body of
// the form {"error":"..."}; anything else is passed through verbatim.
func NewErrorFromServiceResponse(code int, contentType string, body []byte) error {
	detail := string(body)

	report := &struct {
		Error string `json:"error"`
	}{}

	if err := json.Unmarshal(body, report); err == nil && report.Error != "" {
		detail = report.Error
	}

	if detail == "" {
		detail = http.StatusText(code)
	}

	switch {
	case code == http.StatusNotFound:
		return NewNotFoundError(detail)
	case code == http.StatusPreconditionFailed:
		return NewPreconditionFailedError(detail)
	case code == http.StatusBadRequest:
		return NewBadRequestError(detail)
	default:
		return &tablesError{
			msg:    fmt.Sprintf("[code: %d] %s (content-type: %s)", code, detail, contentType),
			target: ErrInternal,
		}
	}
}
