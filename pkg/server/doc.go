// Package server runs the booking API: it builds the host router, mounts
// the route modules from the generated manifest and serves them with
// graceful shutdown.
//
// Every request passes through the same outer chain before routing:
//
//	RequestID → (request log) → ParseCookies → ParseBody → host router
//
// The host router answers unmatched paths with the JSON error envelope and
// exposes /healthz and, when a registry is configured, /metrics.
package server
