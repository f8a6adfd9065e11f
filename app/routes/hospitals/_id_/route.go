package id

import (
	"errors"
	"net/http"

	"github.com/fastbmktdev/medical-by-fastb-sub001/app/services"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/shim"
)

func Init() error {
	_, err := services.Require()
	return err
}

func GET(req *shim.Request, rc *shim.RouteContext) (*shim.Response, error) {
	id, err := rc.Param(req.Context(), "id")
	if err != nil {
		return nil, err
	}
	h, err := services.Get().Hospitals.Get(id)
	if err != nil {
		return nil, storeError(err)
	}
	return shim.JSON(http.StatusOK, h), nil
}

// PUT replaces the hospital, creating a new version.
func PUT(req *shim.Request, rc *shim.RouteContext) (*shim.Response, error) {
	id, err := rc.Param(req.Context(), "id")
	if err != nil {
		return nil, err
	}
	var in services.HospitalInput
	if err := req.DecodeJSON(&in); err != nil {
		return nil, shim.BadRequest(err)
	}
	h, err := services.Get().Hospitals.Update(id, in)
	if err != nil {
		return nil, storeError(err)
	}
	return shim.JSON(http.StatusOK, h), nil
}

func DELETE(req *shim.Request, rc *shim.RouteContext) (*shim.Response, error) {
	id, err := rc.Param(req.Context(), "id")
	if err != nil {
		return nil, err
	}
	if err := services.Get().Hospitals.Delete(id); err != nil {
		return nil, storeError(err)
	}
	return shim.NoContent(), nil
}

func storeError(err error) error {
	if errors.Is(err, services.ErrHospitalNotFound) {
		return shim.NotFound(err.Error())
	}
	return shim.UnprocessableEntity(err.Error())
}
