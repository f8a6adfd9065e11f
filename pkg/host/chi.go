package host

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Chi mounts routes on a chi router.
type Chi struct {
	r chi.Router
}

// NewChi wraps r.
func NewChi(r chi.Router) *Chi {
	return &Chi{r: r}
}

// Router returns the wrapped router.
func (c *Chi) Router() chi.Router {
	return c.r
}

// Handle mounts h at pattern for method.
func (c *Chi) Handle(method, pattern string, h http.Handler) (err error) {
	defer recoverRegistration(method, pattern, &err)

	params := parsePattern(pattern)
	c.r.Method(method, chiPattern(pattern), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		serveWithParams(w, r, h, params, r.URL.RawPath != "", func(p patternParam) string {
			if rctx == nil {
				return ""
			}
			if p.catchAll {
				return rctx.URLParam("*")
			}
			return rctx.URLParam(p.name)
		})
	}))
	return nil
}

// chiPattern converts "/hospitals/:id/*rest" to "/hospitals/{id}/*".
func chiPattern(pattern string) string {
	segs := strings.Split(pattern, "/")
	for i, seg := range segs {
		switch {
		case strings.HasPrefix(seg, ":"):
			segs[i] = "{" + seg[1:] + "}"
		case strings.HasPrefix(seg, "*"):
			segs[i] = "*"
		}
	}
	return strings.Join(segs, "/")
}
