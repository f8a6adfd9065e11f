// Package routes is the routes root of the booking API. Each route.go below
// this directory is one route module; routes_gen.go is the manifest that
// links them into the binary.
package routes

//go:generate go run ../../cmd/medapi gen routes --dir .
