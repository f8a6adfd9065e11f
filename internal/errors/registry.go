package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	Fatal      bool
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Discovery Errors (R001-R009), fatal
	// ============================================

	"R001": {
		Category:   CategoryDiscovery,
		Message:    "Routes directory not found",
		Detail:     "The routes root is missing or unreadable, so no route module can be discovered.",
		Suggestion: "Check routes.dir in medapi.json or set MEDAPI_ROUTES_DIR",
		Fatal:      true,
	},
	"R002": {
		Category:   CategoryDiscovery,
		Message:    "Route collision",
		Detail:     "Two route modules export the same HTTP method for the same mount path.",
		Suggestion: "Rename one of the directories; [id] and _id_ resolve to the same path",
		Fatal:      true,
	},
	"R003": {
		Category:   CategoryDiscovery,
		Message:    "Invalid route path",
		Detail:     "A route module path could not be translated into a mount path.",
		Suggestion: "Param names must be identifiers and a catch-all must be the last segment",
		Fatal:      true,
	},
	"R004": {
		Category:   CategoryDiscovery,
		Message:    "Route registration rejected by host router",
		Detail:     "The host router refused the translated pattern.",
		Fatal:      true,
	},

	// ============================================
	// Load Errors (R010-R019), logged and skipped
	// ============================================

	"R010": {
		Category:   CategoryLoad,
		Message:    "Route module missing from manifest",
		Detail:     "A route.go file was discovered but routes_gen.go has no loader for it.",
		Suggestion: "Run `medapi gen routes` and rebuild",
	},
	"R011": {
		Category: CategoryLoad,
		Message:  "Route module failed to load",
		Detail:   "The module loader or its Init hook returned an error.",
	},
	"R012": {
		Category: CategoryLoad,
		Message:  "Route module panicked while loading",
		Detail:   "The module loader or its Init hook panicked.",
	},
	"R013": {
		Category: CategoryLoad,
		Message:  "Route module exports no HTTP handlers",
		Detail:   "None of GET, POST, PUT, DELETE or PATCH are exported. The file may be incidental.",
	},

	// ============================================
	// Config Errors (R020-R029)
	// ============================================

	"R020": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "medapi.json or medapi.yaml could not be parsed.",
		Fatal:    true,
	},
	"R021": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Fatal:    true,
	},

	// ============================================
	// Codegen Errors (R030-R039)
	// ============================================

	"R030": {
		Category:   CategoryCodegen,
		Message:    "Route module does not parse",
		Suggestion: "Fix the syntax error and run `medapi gen routes` again",
	},
	"R031": {
		Category:   CategoryCodegen,
		Message:    "Unsupported handler signature",
		Detail:     "Verb handlers take (*shim.Request) or (*shim.Request, *shim.RouteContext) and return (*shim.Response, error).",
	},
	"R032": {
		Category: CategoryCodegen,
		Message:  "Module path not found",
		Detail:   "go.mod could not be read to build import paths for route modules.",
	},
	"R033": {
		Category:   CategoryCodegen,
		Message:    "Route directory cannot be imported",
		Detail:     "Bracketed and grouped directory names are not valid Go import paths.",
		Suggestion: "Use the underscore form in compiled projects: [id] becomes _id_",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
