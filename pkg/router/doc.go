// Package router implements directory-based route loading for the booking
// API.
//
// The router provides:
//   - Route discovery from the routes root (app/routes/)
//   - Classification of exported verb handlers as plain or wrapped
//   - A generated manifest that stands in for runtime module loading
//   - Registration on any host router implementing Mux
//   - A registration table for lookup, listing and collision checks
//
// # File Structure Convention
//
// Every route.go below the routes root is one module. Its directory decides
// the mount path:
//
//	app/routes/
//	├── health/route.go                         → /api/health
//	├── hospitals/
//	│   ├── route.go                            → /api/hospitals
//	│   └── _id_/
//	│       ├── route.go                        → /api/hospitals/:id
//	│       └── versions/_versionId_/route.go   → /api/hospitals/:id/versions/:versionId
//	└── (admin)/reports/route.go                → /api/reports
//
// [id] and _id_ are equivalent. Only the underscore form is importable, so
// compiled projects use it. [...slug] is a catch-all.
//
// # Route Modules
//
// A module exports any of GET, POST, PUT, DELETE and PATCH:
//
//	func GET(req *shim.Request) (*shim.Response, error)                        // plain
//	func GET(req *shim.Request, rc *shim.RouteContext) (*shim.Response, error) // wrapped
//
// An optional `func Init() error` runs when the module is loaded.
//
// # Usage
//
//	scanner := router.NewScanner("app/routes", logger)
//	routes, err := scanner.Discover()
//
//	reg, err := router.NewRegistrar(router.RegistrarConfig{
//	    Prefix:   "/api",
//	    Manifest: routes.Manifest,
//	    Adapter:  adapter,
//	})
//	table, summary, err := reg.Register(host.NewChi(mux), routes)
package router
