package shim

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Response is what a handler returns. WriteResponse consumes it once.
type Response struct {
	// Status is the HTTP status code. Zero means 200.
	Status int

	// Header holds response headers; repeated values are kept.
	Header http.Header

	// Cookies are serialized Set-Cookie values, written in order.
	Cookies []string

	// Body is a JSON value, text (string, []byte, fmt.Stringer, error) or nil.
	Body any
}

// NewResponse creates a response with the given status and body.
func NewResponse(status int, body any) *Response {
	return &Response{Status: status, Header: make(http.Header), Body: body}
}

// JSON creates a response whose body is serialized as JSON.
func JSON(status int, v any) *Response {
	return NewResponse(status, v)
}

// Text creates a text/plain response.
func Text(status int, s string) *Response {
	r := NewResponse(status, s)
	r.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return r
}

// NoContent creates an empty 204 response.
func NoContent() *Response {
	return NewResponse(http.StatusNoContent, nil)
}

// WithHeader appends a header value.
func (r *Response) WithHeader(key, value string) *Response {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Add(key, value)
	return r
}

// SetCookie appends c as its own Set-Cookie value. Invalid cookies are dropped.
func (r *Response) SetCookie(c *http.Cookie) *Response {
	if v := c.String(); v != "" {
		r.Cookies = append(r.Cookies, v)
	}
	return r
}

var errUnserializable = errors.New("shim: response body is neither JSON-serializable nor text")

// WriteResponse writes resp to w. Headers are copied value by value and
// every cookie becomes a separate Set-Cookie header. The body is encoded as
// JSON first, then as text; if both fail the response ends with an empty
// body and the failure is logged.
func WriteResponse(w http.ResponseWriter, resp *Response, logger *slog.Logger) {
	if resp == nil {
		resp = NoContent()
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	h := w.Header()
	for key, values := range resp.Header {
		for _, v := range values {
			h.Add(key, v)
		}
	}
	for _, c := range resp.Cookies {
		h.Add("Set-Cookie", c)
	}

	body, contentType, err := encodeBody(resp.Body)
	if err != nil {
		if logger != nil {
			logger.Error("response body dropped", "status", status, "type", fmt.Sprintf("%T", resp.Body), "error", err)
		}
		body = nil
	}

	if len(body) > 0 && h.Get("Content-Type") == "" {
		h.Set("Content-Type", contentType)
	}
	if len(body) == 0 || !bodyAllowed(status) {
		h.Del("Content-Length")
		w.WriteHeader(status)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil && logger != nil {
		logger.Debug("response write failed", "error", err)
	}
}

func encodeBody(v any) ([]byte, string, error) {
	const (
		jsonType = "application/json; charset=utf-8"
		textType = "text/plain; charset=utf-8"
	)

	switch b := v.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		if json.Valid(b) {
			return b, jsonType, nil
		}
		return b, textType, nil
	case string:
		if json.Valid([]byte(b)) {
			return []byte(b), jsonType, nil
		}
		return []byte(b), textType, nil
	case error:
		// Most error values marshal to "{}".
		if _, ok := b.(json.Marshaler); !ok {
			return []byte(b.Error()), textType, nil
		}
	}

	if data, err := json.Marshal(v); err == nil {
		return data, jsonType, nil
	}

	switch t := v.(type) {
	case error:
		return []byte(t.Error()), textType, nil
	case fmt.Stringer:
		return []byte(t.String()), textType, nil
	}
	return nil, "", errUnserializable
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status < 200:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}
