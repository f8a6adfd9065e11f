package formdata

import (
	"fmt"
	"io"
)

// Limits bounds how much of a multipart body is buffered in memory.
// A zero field falls back to the matching DefaultLimits value.
type Limits struct {
	// MaxFileBytes caps a single file part.
	MaxFileBytes int64

	// MaxRequestBytes caps the whole multipart body, framing included.
	MaxRequestBytes int64

	// MaxParts caps the number of parts.
	MaxParts int

	// MaxFieldBytes caps a single text field.
	MaxFieldBytes int64
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxFileBytes:    10 << 20,
		MaxRequestBytes: 32 << 20,
		MaxParts:        1000,
		MaxFieldBytes:   1 << 20,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxFileBytes <= 0 {
		l.MaxFileBytes = d.MaxFileBytes
	}
	if l.MaxRequestBytes <= 0 {
		l.MaxRequestBytes = d.MaxRequestBytes
	}
	if l.MaxParts <= 0 {
		l.MaxParts = d.MaxParts
	}
	if l.MaxFieldBytes <= 0 {
		l.MaxFieldBytes = d.MaxFieldBytes
	}
	return l
}

// LimitError reports that a multipart body exceeded one of its Limits.
type LimitError struct {
	// Limit names the breached limit: "file", "request", "parts" or "field".
	Limit string

	// Max is the configured ceiling.
	Max int64

	// Part is the form name of the offending part, if known.
	Part string
}

func (e *LimitError) Error() string {
	unit := "bytes"
	if e.Limit == "parts" {
		unit = "parts"
	}
	if e.Part != "" {
		return fmt.Sprintf("formdata: %s %q exceeds %d %s", e.Limit, e.Part, e.Max, unit)
	}
	return fmt.Sprintf("formdata: %s exceeds %d %s", e.Limit, e.Max, unit)
}

// countingReader fails once more than max bytes have been read through it.
type countingReader struct {
	r   io.Reader
	n   int64
	max int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	if c.n > c.max {
		return 0, &LimitError{Limit: "request", Max: c.max}
	}
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.n > c.max {
		return n, &LimitError{Limit: "request", Max: c.max}
	}
	return n, err
}
