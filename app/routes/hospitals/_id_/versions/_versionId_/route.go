package versionid

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fastbmktdev/medical-by-fastb-sub001/app/services"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/shim"
)

func Init() error {
	_, err := services.Require()
	return err
}

// GET returns one historical version of a hospital.
func GET(req *shim.Request, rc *shim.RouteContext) (*shim.Response, error) {
	params, err := rc.Params.Await(req.Context())
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(params["versionId"])
	if err != nil {
		return nil, shim.BadRequestf("version %q is not a number", params["versionId"])
	}

	h, err := services.Get().Hospitals.Version(params["id"], n)
	switch {
	case errors.Is(err, services.ErrHospitalNotFound), errors.Is(err, services.ErrVersionNotFound):
		return nil, shim.NotFound(err.Error())
	case err != nil:
		return nil, err
	}
	return shim.JSON(http.StatusOK, h), nil
}
