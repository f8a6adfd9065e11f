package shim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/formdata"
)

// Request is the standardized request handlers are written against.
// It is built per request and owned by the request's goroutine.
type Request struct {
	// URL is fully qualified: scheme, host, path and query.
	URL *url.URL

	// Method is the HTTP method.
	Method string

	// Header is a copy of the native headers; repeated headers keep every value.
	Header http.Header

	// Cookies is the cookie jar chosen for this request.
	Cookies CookieJar

	native  *http.Request
	body    *bodyState
	params  *Future[map[string]string]
	limits  formdata.Limits
	proxies *ProxyMatcher
}

// RequestOption configures NewRequest.
type RequestOption func(*Request)

// WithLimits sets the multipart limits FormData enforces.
func WithLimits(l formdata.Limits) RequestOption {
	return func(r *Request) { r.limits = l }
}

// WithTrustedProxies sets the proxies whose forwarding headers are honored.
func WithTrustedProxies(m *ProxyMatcher) RequestOption {
	return func(r *Request) { r.proxies = m }
}

// NewRequest builds a Request from the native request and whatever
// ParseBody and ParseCookies left on its context.
func NewRequest(r *http.Request, opts ...RequestOption) *Request {
	req := &Request{
		Method: r.Method,
		native: r,
	}
	for _, opt := range opts {
		opt(req)
	}

	req.URL = rebuildURL(r, req.proxies)

	req.Header = make(http.Header, len(r.Header))
	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	req.Cookies = newCookieJar(r.Context())

	if st := bodyFromContext(r.Context()); st != nil {
		req.body = st
	} else {
		req.body = &bodyState{stream: track(r)}
	}

	params := make(map[string]string)
	for k, v := range RouteParams(r.Context()) {
		params[k] = v
	}
	req.params = Resolved(params)

	return req
}

func rebuildURL(r *http.Request, proxies *ProxyMatcher) *url.URL {
	raw := r.RequestURI
	if raw == "" {
		raw = r.URL.RequestURI()
	}

	u, err := url.ParseRequestURI(raw)
	if err != nil {
		cp := *r.URL
		u = &cp
	}
	if u.Host == "" {
		u.Host = r.Host
	}
	u.Scheme = requestScheme(r, proxies)
	return u
}

// Context returns the native request's context.
func (r *Request) Context() context.Context {
	return r.native.Context()
}

// Native returns the underlying *http.Request.
func (r *Request) Native() *http.Request {
	return r.native
}

// ClientIP returns the caller's address, looking through trusted proxies.
func (r *Request) ClientIP() net.IP {
	return clientIP(r.native, r.proxies)
}

// Params returns the route params future.
func (r *Request) Params() *Future[map[string]string] {
	return r.params
}

// BodyKind reports what upstream middleware left in place of the stream.
func (r *Request) BodyKind() BodyKind {
	return r.body.kind
}

// JSON returns the decoded JSON body. Raw bytes are parsed, an already
// parsed structure is returned as is, and an untouched stream is read and
// decoded. The stream can only be read once.
func (r *Request) JSON() (any, error) {
	var data []byte
	switch r.body.kind {
	case BodyParsed:
		return r.body.value, nil
	case BodyRaw:
		data = r.body.raw
	case BodyText:
		data = []byte(r.body.text)
	default:
		b, err := r.readStream()
		if err != nil {
			return nil, err
		}
		data = b
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("shim: decoding JSON body: %w", err)
	}
	return v, nil
}

// DecodeJSON decodes the body into dst, whatever form it currently has.
func (r *Request) DecodeJSON(dst any) error {
	var data []byte
	switch r.body.kind {
	case BodyParsed:
		b, err := json.Marshal(r.body.value)
		if err != nil {
			return fmt.Errorf("shim: re-encoding parsed body: %w", err)
		}
		data = b
	case BodyRaw:
		data = r.body.raw
	case BodyText:
		data = []byte(r.body.text)
	default:
		b, err := r.readStream()
		if err != nil {
			return err
		}
		data = b
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("shim: decoding JSON body: %w", err)
	}
	return nil
}

// Text returns the body as text. Raw bytes and text are returned verbatim
// and a parsed structure is re-serialized as JSON.
func (r *Request) Text() (string, error) {
	switch r.body.kind {
	case BodyRaw:
		return string(r.body.raw), nil
	case BodyText:
		return r.body.text, nil
	case BodyParsed:
		b, err := json.Marshal(r.body.value)
		if err != nil {
			return "", fmt.Errorf("shim: re-encoding parsed body: %w", err)
		}
		return string(b), nil
	}

	b, err := r.readStream()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Bytes returns the exact body bytes when they were kept (raw-body routes)
// or the stream is still unread.
func (r *Request) Bytes() ([]byte, error) {
	if r.body.kind == BodyRaw {
		return r.body.raw, nil
	}
	if r.body.kind != BodyNone {
		return nil, r.consumedError()
	}
	return r.readStream()
}

// FormData parses a multipart/form-data body. It fails with ErrNotMultipart
// for any other content type, and with *ConsumedBodyError when earlier
// middleware drained the stream and did not keep the raw bytes.
func (r *Request) FormData() (*formdata.Form, error) {
	contentType := r.Header.Get("Content-Type")
	if !formdata.IsMultipart(contentType) {
		return nil, ErrNotMultipart
	}

	if r.body.kind == BodyRaw {
		return formdata.Parse(r.Context(), bytes.NewReader(r.body.raw), contentType, r.limits)
	}
	if r.body.kind != BodyNone || r.body.stream == nil || r.body.stream.consumed() {
		return nil, r.consumedError()
	}
	return formdata.Parse(r.Context(), r.body.stream, contentType, r.limits)
}

func (r *Request) readStream() ([]byte, error) {
	s := r.body.stream
	if s == nil || s.consumed() {
		return nil, r.consumedError()
	}
	b, err := io.ReadAll(s)
	if err != nil {
		return nil, fmt.Errorf("shim: reading request body: %w", err)
	}
	return b, nil
}

func (r *Request) consumedError() *ConsumedBodyError {
	e := &ConsumedBodyError{BodyType: r.body.residualType()}
	if s := r.body.stream; s != nil {
		e.Readable = s.readable()
		e.Ended = s.ended
	}
	return e
}
