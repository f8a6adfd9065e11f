// Package host mounts translated routes on concrete HTTP routers.
//
// Route patterns arrive in ":name" / "*name" syntax. Each host converts
// them to its own syntax, extracts bindings on match, decodes them and
// hands them to the shim through shim.WithRouteParams. A pattern the router
// refuses (including one it panics on) is returned as an error.
package host

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/routepath"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/shim"
)

// patternParam is a dynamic segment of a translated pattern.
type patternParam struct {
	name     string
	catchAll bool
}

// parsePattern lists the dynamic segments of pattern in order.
func parsePattern(pattern string) []patternParam {
	var params []patternParam
	for _, seg := range strings.Split(pattern, "/") {
		switch {
		case strings.HasPrefix(seg, ":"):
			params = append(params, patternParam{name: seg[1:]})
		case strings.HasPrefix(seg, "*"):
			params = append(params, patternParam{name: seg[1:], catchAll: true})
		}
	}
	return params
}

// bindParams reads each param through lookup and decodes it when the host
// matched against the escaped path.
func bindParams(params []patternParam, escaped bool, lookup func(patternParam) string) (map[string]string, error) {
	out := make(map[string]string, len(params))
	for _, p := range params {
		v := lookup(p)
		if escaped {
			decoded, err := routepath.DecodeSegment(v, p.catchAll)
			if err != nil {
				return nil, fmt.Errorf("param %q: %w", p.name, err)
			}
			v = decoded
		}
		out[p.name] = v
	}
	return out, nil
}

// serveWithParams binds params and runs h, answering 400 on a bad escape.
func serveWithParams(w http.ResponseWriter, r *http.Request, h http.Handler, params []patternParam, escaped bool, lookup func(patternParam) string) {
	bound, err := bindParams(params, escaped, lookup)
	if err != nil {
		shim.WriteEnvelope(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.ServeHTTP(w, r.WithContext(shim.WithRouteParams(r.Context(), bound)))
}

// recoverRegistration turns a router panic during registration into err.
func recoverRegistration(method, pattern string, err *error) {
	if rec := recover(); rec != nil {
		*err = fmt.Errorf("%s %s: %v", method, pattern, rec)
	}
}
