package health

import (
	"net/http"
	"time"

	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/shim"
)

var started = time.Now()

// GET reports liveness of the API.
func GET(_ *shim.Request) (*shim.Response, error) {
	return shim.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(started).Round(time.Second).String(),
	}), nil
}
