package attachments

import (
	"errors"
	"net/http"

	"github.com/fastbmktdev/medical-by-fastb-sub001/app/services"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/shim"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/upload"
)

func Init() error {
	s, err := services.Require()
	if err != nil {
		return err
	}
	if s.Uploads == nil {
		return errors.New("attachments: no upload store configured")
	}
	return nil
}

// POST stores the files of a multipart booking form (referral letters,
// scans) and echoes the text fields.
func POST(req *shim.Request) (*shim.Response, error) {
	form, err := req.FormData()
	if err != nil {
		return nil, err
	}
	if len(form.Files()) == 0 {
		return nil, shim.BadRequestf("no files in form")
	}

	s := services.Get()
	saved, err := upload.SaveForm(req.Context(), s.Uploads, form, s.UploadConfig)
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		return nil, &shim.HTTPError{Code: http.StatusRequestEntityTooLarge, Message: err.Error(), Err: err}
	case errors.Is(err, upload.ErrTypeNotAllowed):
		return nil, &shim.HTTPError{Code: http.StatusUnsupportedMediaType, Message: err.Error(), Err: err}
	case err != nil:
		return nil, err
	}

	fields := make(map[string]string)
	for _, e := range form.Entries() {
		if !e.IsFile() {
			fields[e.Name] = e.Value
		}
	}
	return shim.JSON(http.StatusCreated, map[string]any{
		"attachments": saved,
		"fields":      fields,
	}), nil
}
