package shim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
)

var errTrailingJSON = errors.New("shim: unexpected data after JSON body")

// BodyKind describes what upstream middleware left in place of the stream.
type BodyKind int

const (
	// BodyNone means nothing was parsed; the stream may still be unread.
	BodyNone BodyKind = iota
	// BodyRaw holds the exact request bytes (raw-body routes).
	BodyRaw
	// BodyText holds a decoded text body.
	BodyText
	// BodyParsed holds a structure decoded from JSON or a urlencoded form.
	BodyParsed
)

func (k BodyKind) String() string {
	switch k {
	case BodyRaw:
		return "raw"
	case BodyText:
		return "text"
	case BodyParsed:
		return "parsed"
	default:
		return "none"
	}
}

// trackedBody records how far the request stream has been read.
type trackedBody struct {
	rc     io.ReadCloser
	read   int64
	ended  bool
	closed bool
}

func (t *trackedBody) Read(p []byte) (int, error) {
	if t.closed {
		return 0, http.ErrBodyReadAfterClose
	}
	n, err := t.rc.Read(p)
	t.read += int64(n)
	if err == io.EOF {
		t.ended = true
	}
	return n, err
}

func (t *trackedBody) Close() error {
	t.closed = true
	return t.rc.Close()
}

func (t *trackedBody) readable() bool {
	return !t.ended && !t.closed
}

func (t *trackedBody) consumed() bool {
	return t.read > 0 || t.ended || t.closed
}

// bodyState is the request body as seen by the shim accessors.
type bodyState struct {
	kind   BodyKind
	raw    []byte
	text   string
	value  any
	stream *trackedBody
}

// residualType names the Go type left in place of the stream.
func (s *bodyState) residualType() string {
	switch s.kind {
	case BodyRaw:
		return "[]byte"
	case BodyText:
		return "string"
	case BodyParsed:
		return fmt.Sprintf("%T", s.value)
	default:
		return "<nil>"
	}
}

type bodyKey struct{}

func bodyFromContext(ctx context.Context) *bodyState {
	st, _ := ctx.Value(bodyKey{}).(*bodyState)
	return st
}

// track wraps r.Body so the shim can tell whether it was consumed.
func track(r *http.Request) *trackedBody {
	if tb, ok := r.Body.(*trackedBody); ok {
		return tb
	}
	body := r.Body
	if body == nil {
		body = http.NoBody
	}
	tb := &trackedBody{rc: body}
	r.Body = tb
	return tb
}

// BodyOptions configures ParseBody.
type BodyOptions struct {
	// MaxBytes caps non-multipart bodies. Zero means 1 MiB.
	MaxBytes int64

	// RawPaths are path.Match patterns whose bodies are kept as exact
	// bytes, e.g. "/api/webhooks/*" for signature-verified payloads.
	RawPaths []string
}

func (o BodyOptions) isRaw(p string) bool {
	for _, pattern := range o.RawPaths {
		if ok, _ := path.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// ParseBody is the host's body parser. It consumes JSON, urlencoded and
// text bodies into structured form before the route handler runs, keeps the
// exact bytes for RawPaths, and leaves multipart and other bodies unread.
func ParseBody(opts BodyOptions) func(http.Handler) http.Handler {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 1 << 20
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st, err := parseBody(w, r, opts)
			if err != nil {
				status := http.StatusBadRequest
				msg := "malformed request body"
				var mbe *http.MaxBytesError
				if errors.As(err, &mbe) {
					status = http.StatusRequestEntityTooLarge
					msg = "request body too large"
				}
				WriteEnvelope(w, r, status, msg)
				return
			}
			ctx := context.WithValue(r.Context(), bodyKey{}, st)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseBody(w http.ResponseWriter, r *http.Request, opts BodyOptions) (*bodyState, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		return &bodyState{stream: track(r)}, nil
	}
	if r.Body != nil && r.Body != http.NoBody {
		r.Body = http.MaxBytesReader(w, r.Body, opts.MaxBytes)
	}
	tb := track(r)
	st := &bodyState{stream: tb}

	if r.ContentLength == 0 {
		return st, nil
	}

	switch {
	case opts.isRaw(r.URL.Path):
		raw, err := io.ReadAll(tb)
		if err != nil {
			return nil, err
		}
		st.kind, st.raw = BodyRaw, raw

	case isJSONMediaType(mediaType):
		dec := json.NewDecoder(tb)
		var v any
		if err := dec.Decode(&v); err != nil {
			if err == io.EOF {
				// Empty chunked body: keep it as zero bytes so JSON()
				// reports a syntax error and Text() returns "".
				st.kind, st.raw = BodyRaw, []byte{}
				return st, nil
			}
			return nil, err
		}
		if _, err := dec.Token(); err != io.EOF {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return nil, err
			}
			return nil, errTrailingJSON
		}
		st.kind, st.value = BodyParsed, v

	case mediaType == "application/x-www-form-urlencoded":
		raw, err := io.ReadAll(tb)
		if err != nil {
			return nil, err
		}
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, err
		}
		st.kind, st.value = BodyParsed, formValues(values)

	case strings.HasPrefix(mediaType, "text/"):
		raw, err := io.ReadAll(tb)
		if err != nil {
			return nil, err
		}
		st.kind, st.text = BodyText, string(raw)
	}

	return st, nil
}

func isJSONMediaType(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// formValues flattens single-valued keys to strings.
func formValues(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			out[k] = vs[0]
			continue
		}
		list := make([]any, len(vs))
		for i, v := range vs {
			list[i] = v
		}
		out[k] = list
	}
	return out
}
