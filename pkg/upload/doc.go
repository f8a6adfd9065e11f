// Package upload stores files received by booking routes.
//
// Route handlers read a multipart body through shim.Request.FormData and
// hand the form to SaveForm, which checks every file against Config and
// writes it to a Store:
//
//	form, err := req.FormData()
//	if err != nil {
//	    return nil, shim.BadRequest(err)
//	}
//	saved, err := upload.SaveForm(req.Context(), store, form, upload.DefaultConfig())
//
// Three stores are provided: MemoryStore for tests and single-process
// deployments, DiskStore for a local directory, and S3Store for a bucket.
// Open picks one from configuration.
//
// Content types are checked against the type sniffed from the file bytes
// (http.DetectContentType). The client's part Content-Type is stored but
// not trusted.
//
// A later request claims the stored file by ID:
//
//	file, err := store.Claim(ctx, id)
//	if err != nil {
//	    return err
//	}
//	defer file.Close() // removes the stored copy
package upload
