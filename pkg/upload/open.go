package upload

import (
	"errors"
	"fmt"
)

// Options selects and configures a Store for Open.
type Options struct {
	// Kind is "memory", "disk" or "s3".
	Kind string

	// Dir is the DiskStore directory.
	Dir string

	Bucket    string
	KeyPrefix string
	S3        S3Options

	// MaxFileSize caps every stored file. Zero means no limit.
	MaxFileSize int64
}

// Open returns the Store described by opts.
func Open(opts Options) (Store, error) {
	switch opts.Kind {
	case "", "memory":
		return NewMemoryStore(opts.MaxFileSize), nil
	case "disk":
		if opts.Dir == "" {
			return nil, errors.New("upload: disk store needs a directory")
		}
		return NewDiskStore(opts.Dir, opts.MaxFileSize)
	case "s3":
		if opts.Bucket == "" {
			return nil, errors.New("upload: s3 store needs a bucket")
		}
		return NewS3Store(NewS3Client(opts.S3), opts.Bucket, opts.KeyPrefix, opts.MaxFileSize), nil
	default:
		return nil, fmt.Errorf("upload: unknown store %q", opts.Kind)
	}
}
