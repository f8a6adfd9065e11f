// Package shim bridges native net/http requests and the standardized
// Request/Response pair route handlers are written against.
//
// A request flows through three layers:
//
//	ParseCookies, ParseBody   host middleware; leave parsed state on the context
//	Adapter.Handler           builds a Request, invokes the handler, recovers panics
//	WriteResponse             copies status, headers, Set-Cookie values and body
//
// Body accessors look at what ParseBody left behind. JSON and Text accept
// raw bytes, text or a parsed structure. FormData needs the untouched stream
// or raw bytes; anything else is a *ConsumedBodyError that names the stream
// flags and the residual body type.
//
// Route params arrive as a Future for compatibility with handlers that await
// them:
//
//	func GET(req *shim.Request, rc *shim.RouteContext) (*shim.Response, error) {
//	    id, err := rc.Param(req.Context(), "id")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return shim.JSON(http.StatusOK, map[string]string{"id": id}), nil
//	}
package shim
