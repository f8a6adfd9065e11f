package hospitals

import (
	"net/http"

	"github.com/fastbmktdev/medical-by-fastb-sub001/app/services"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/shim"
)

func Init() error {
	_, err := services.Require()
	return err
}

// GET lists hospitals, optionally filtered by ?city=.
func GET(req *shim.Request) (*shim.Response, error) {
	list := services.Get().Hospitals.List(req.URL.Query().Get("city"))
	return shim.JSON(http.StatusOK, map[string]any{"hospitals": list, "count": len(list)}), nil
}

// POST creates a hospital.
func POST(req *shim.Request) (*shim.Response, error) {
	var in services.HospitalInput
	if err := req.DecodeJSON(&in); err != nil {
		return nil, shim.BadRequest(err)
	}
	h, err := services.Get().Hospitals.Create(in)
	if err != nil {
		return nil, shim.UnprocessableEntity(err.Error())
	}
	return shim.JSON(http.StatusCreated, h).WithHeader("Location", req.URL.Path+"/"+h.ID), nil
}
