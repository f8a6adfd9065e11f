package upload

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/formdata"
)

// ErrNotFound is returned when a stored file doesn't exist.
var ErrNotFound = errors.New("upload: file not found")

// ErrTooLarge is returned when a file exceeds the size limit.
var ErrTooLarge = errors.New("upload: file too large")

// ErrTypeNotAllowed is returned when a file's detected type is not allowed.
var ErrTypeNotAllowed = errors.New("upload: file type not allowed")

// Store is the interface for upload storage backends.
type Store interface {
	// Save stores the file and returns its ID.
	Save(ctx context.Context, filename, contentType string, r io.Reader) (id string, err error)

	// Claim retrieves a stored file. The file is removed once the
	// returned File is closed.
	Claim(ctx context.Context, id string) (*File, error)

	// Cleanup removes files older than maxAge.
	Cleanup(ctx context.Context, maxAge time.Duration) error
}

// File represents a stored upload.
type File struct {
	// ID is the unique identifier for this upload.
	ID string

	// Filename is the original filename from the client.
	Filename string

	// ContentType is the MIME type of the file.
	ContentType string

	// Size is the file size in bytes.
	Size int64

	// Path is the local filesystem path (DiskStore only).
	Path string

	// Reader provides access to the file contents.
	Reader io.ReadCloser
}

// Close closes the file reader if open.
func (f *File) Close() error {
	if f.Reader != nil {
		return f.Reader.Close()
	}
	return nil
}

// Config limits what SaveForm accepts.
type Config struct {
	// MaxFileSize is the maximum allowed file size in bytes.
	// Default: 10MB.
	MaxFileSize int64

	// AllowedTypes is a list of allowed MIME types, matched against the
	// type sniffed from the file content. Empty allows all types.
	AllowedTypes []string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{MaxFileSize: 10 << 20}
}

// Saved describes one file stored by SaveForm.
type Saved struct {
	Field       string `json:"field"`
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// SaveForm stores every file entry of form in source order. Nothing is
// stored when any file fails the size or type checks.
func SaveForm(ctx context.Context, store Store, form *formdata.Form, cfg Config) ([]Saved, error) {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultConfig().MaxFileSize
	}

	var files []formdata.Entry
	for _, e := range form.Entries() {
		if !e.IsFile() {
			continue
		}
		if e.File.Size() > cfg.MaxFileSize {
			return nil, fmt.Errorf("%s: %w", e.File.Filename, ErrTooLarge)
		}
		if !typeAllowed(http.DetectContentType(e.File.Data), cfg.AllowedTypes) {
			return nil, fmt.Errorf("%s: %w", e.File.Filename, ErrTypeNotAllowed)
		}
		files = append(files, e)
	}

	saved := make([]Saved, 0, len(files))
	for _, e := range files {
		id, err := store.Save(ctx, e.File.Filename, e.File.MIMEType, bytes.NewReader(e.File.Data))
		if err != nil {
			return saved, err
		}
		saved = append(saved, Saved{
			Field:       e.Name,
			ID:          id,
			Filename:    e.File.Filename,
			ContentType: e.File.MIMEType,
			Size:        e.File.Size(),
		})
	}
	return saved, nil
}

func typeAllowed(detected string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(detected)
	if err != nil {
		mediaType = detected
	}
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == mediaType {
			return true
		}
		if prefix, ok := strings.CutSuffix(a, "/*"); ok && strings.HasPrefix(mediaType, prefix+"/") {
			return true
		}
	}
	return false
}

// newID generates a cryptographically random ID.
func newID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// validID reports whether id has the shape newID produces.
func validID(id string) bool {
	if len(id) != 32 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

// copyLimited copies r into w, failing with ErrTooLarge past max bytes.
func copyLimited(w io.Writer, r io.Reader, max int64) (int64, error) {
	if max <= 0 {
		return io.Copy(w, r)
	}
	n, err := io.Copy(w, io.LimitReader(r, max+1))
	if err != nil {
		return n, err
	}
	if n > max {
		return n, ErrTooLarge
	}
	return n, nil
}
