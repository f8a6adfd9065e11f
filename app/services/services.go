// Package services holds the collaborators route modules share: the
// hospital directory, the attachment store and webhook secrets.
//
// The server configures them once before loading route modules. A module's
// Init hook fails when they are missing, so the module is skipped instead
// of serving requests against nil collaborators.
package services

import (
	"errors"
	"sync/atomic"

	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/upload"
)

// ErrNotConfigured is returned by Require before Set was called.
var ErrNotConfigured = errors.New("services: not configured")

// Services are the collaborators available to route handlers.
type Services struct {
	Hospitals *HospitalStore

	Uploads      upload.Store
	UploadConfig upload.Config

	// StripeWebhookSecret verifies Stripe-Signature headers.
	StripeWebhookSecret string
}

var current atomic.Pointer[Services]

// Set installs s for every route module.
func Set(s *Services) {
	current.Store(s)
}

// Get returns the installed services, or nil.
func Get() *Services {
	return current.Load()
}

// Require returns the installed services or ErrNotConfigured.
func Require() (*Services, error) {
	s := current.Load()
	if s == nil {
		return nil, ErrNotConfigured
	}
	return s, nil
}
