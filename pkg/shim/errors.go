package shim

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/formdata"
)

// ErrNotMultipart is returned by Request.FormData when the request's
// Content-Type is not multipart/form-data.
var ErrNotMultipart = formdata.ErrNotMultipart

// ConsumedBodyError is returned when a body accessor needs the request
// stream but earlier middleware already drained it.
type ConsumedBodyError struct {
	// Readable reports whether the stream could still be read.
	Readable bool

	// Ended reports whether the stream reached EOF.
	Ended bool

	// BodyType is the Go type the earlier middleware left behind.
	BodyType string
}

func (e *ConsumedBodyError) Error() string {
	return fmt.Sprintf(
		"shim: request body stream already consumed (readable=%t, ended=%t, residual body type %s); "+
			"exclude this path from body parsing or add it to routes.rawBodyPaths",
		e.Readable, e.Ended, e.BodyType)
}

// HTTPError represents an HTTP error with a status code and message.
// Handlers return it to choose the status of the error envelope.
type HTTPError struct {
	Code    int    // HTTP status code (e.g., 400, 403, 404, 500)
	Message string // Error message to return to client
	Err     error  // Optional underlying error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code for this error.
func (e *HTTPError) StatusCode() int {
	return e.Code
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(err error) *HTTPError {
	msg := "bad request"
	if err != nil {
		msg = err.Error()
	}
	return &HTTPError{Code: http.StatusBadRequest, Message: msg, Err: err}
}

// BadRequestf creates a 400 Bad Request error with a formatted message.
func BadRequestf(format string, args ...any) *HTTPError {
	return &HTTPError{Code: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized creates a 401 Unauthorized error.
func Unauthorized(message ...string) *HTTPError {
	return statusError(http.StatusUnauthorized, "unauthorized", message)
}

// Forbidden creates a 403 Forbidden error.
func Forbidden(message ...string) *HTTPError {
	return statusError(http.StatusForbidden, "forbidden", message)
}

// NotFound creates a 404 Not Found error.
func NotFound(message ...string) *HTTPError {
	return statusError(http.StatusNotFound, "not found", message)
}

// Conflict creates a 409 Conflict error.
func Conflict(message ...string) *HTTPError {
	return statusError(http.StatusConflict, "conflict", message)
}

// UnprocessableEntity creates a 422 error for semantically invalid input.
func UnprocessableEntity(message ...string) *HTTPError {
	return statusError(http.StatusUnprocessableEntity, "unprocessable entity", message)
}

// InternalError creates a 500 Internal Server Error.
func InternalError(err error) *HTTPError {
	return &HTTPError{Code: http.StatusInternalServerError, Message: "internal server error", Err: err}
}

func statusError(code int, def string, message []string) *HTTPError {
	msg := def
	if len(message) > 0 {
		msg = message[0]
	}
	return &HTTPError{Code: code, Message: msg}
}

// StatusOf maps an error returned by a handler to an HTTP status.
func StatusOf(err error) int {
	var (
		httpErr  *HTTPError
		limitErr *formdata.LimitError
		maxBytes *http.MaxBytesError
		syntax   *json.SyntaxError
		typeErr  *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.As(err, &limitErr), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrNotMultipart):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, formdata.ErrMissingBoundary), errors.As(err, &syntax), errors.As(err, &typeErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Envelope is the JSON error body shared by the not-found catch-all and
// the handler error translator.
type Envelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Path      string `json:"path"`
	RequestID string `json:"requestId,omitempty"`
}

// WriteEnvelope writes an error envelope with the given status.
func WriteEnvelope(w http.ResponseWriter, r *http.Request, status int, message string) {
	env := Envelope{
		Success:   false,
		Error:     message,
		Path:      r.URL.Path,
		RequestID: requestID(r),
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// requestID prefers the ID assigned by the request ID middleware.
func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	if id := r.Header.Get(middleware.RequestIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}
