package stripe

import (
	"errors"
	"net/http"
	"time"

	"github.com/fastbmktdev/medical-by-fastb-sub001/app/services"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/shim"
)

func Init() error {
	s, err := services.Require()
	if err != nil {
		return err
	}
	if s.StripeWebhookSecret == "" {
		return errors.New("stripe: webhook secret not configured")
	}
	return nil
}

type event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// POST receives Stripe events. The route must be listed in
// routes.rawBodyPaths so the exact bytes survive for the signature check.
func POST(req *shim.Request) (*shim.Response, error) {
	payload, err := req.Bytes()
	if err != nil {
		return nil, err
	}

	secret := services.Get().StripeWebhookSecret
	if err := services.VerifyStripeSignature(payload, req.Header.Get("Stripe-Signature"), secret, time.Now()); err != nil {
		return nil, shim.BadRequest(err)
	}

	var ev event
	if err := req.DecodeJSON(&ev); err != nil {
		return nil, shim.BadRequest(err)
	}
	return shim.JSON(http.StatusOK, map[string]any{"received": true, "id": ev.ID, "type": ev.Type}), nil
}
