package host

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

var ginModeOnce sync.Once

// Gin mounts routes on a gin engine.
type Gin struct {
	engine *gin.Engine
}

// NewGinEngine returns a release-mode engine that trusts no forwarding
// headers. Client address resolution is left to the shim.
func NewGinEngine() *gin.Engine {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	engine := gin.New()
	engine.HandleMethodNotAllowed = false
	_ = engine.SetTrustedProxies(nil)
	return engine
}

// NewGin wraps engine. notFound, when non-nil, answers unmatched paths.
func NewGin(engine *gin.Engine, notFound http.Handler) *Gin {
	if notFound != nil {
		engine.NoRoute(gin.WrapH(notFound))
	}
	return &Gin{engine: engine}
}

// Engine returns the wrapped engine.
func (g *Gin) Engine() *gin.Engine {
	return g.engine
}

// Handle mounts h at pattern for method. Gin shares the ":name" / "*name"
// syntax, so patterns pass through unchanged.
func (g *Gin) Handle(method, pattern string, h http.Handler) (err error) {
	defer recoverRegistration(method, pattern, &err)

	params := parsePattern(pattern)
	g.engine.Handle(method, pattern, func(c *gin.Context) {
		escaped := g.engine.UseRawPath && c.Request.URL.RawPath != ""
		serveWithParams(c.Writer, c.Request, h, params, escaped, func(p patternParam) string {
			v := c.Param(p.name)
			if p.catchAll {
				v = strings.TrimPrefix(v, "/")
			}
			return v
		})
	})
	return nil
}
