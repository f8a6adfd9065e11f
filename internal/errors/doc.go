// Package errors provides coded, actionable errors for route loading and the
// medapi CLI.
//
// Every code maps to a category, a short message, an optional explanation and
// a fix hint:
//
//   - discovery (R001-R009): fatal, startup aborts
//   - load (R010-R019): logged, the module is skipped
//   - config (R020-R029): fatal
//   - codegen (R030-R039): reported by `medapi gen routes`
//
// # Usage
//
//	err := errors.New("R002").
//	    WithFile("app/routes/hospitals/_id_/route.go").
//	    WithDetail("GET /api/hospitals/:id is already mounted")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R002: Route collision
//	//
//	//   app/routes/hospitals/_id_/route.go
//	//
//	//   GET /api/hospitals/:id is already mounted
//	//
//	//   Hint: Rename one of the directories; [id] and _id_ resolve to the same path
package errors
