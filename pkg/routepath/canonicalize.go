package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Path errors.
var (
	ErrInvalidPrefix         = errors.New("invalid route prefix")
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in non-catch-all segment")
)

// CleanPrefix normalizes the API prefix that translated mount paths are
// registered under.
//
//	""        → ""
//	"/"       → ""
//	"api"     → "/api"
//	"/api//"  → "/api"
//
// Prefixes containing dynamic segments, backslashes, "." or ".." are rejected.
func CleanPrefix(prefix string) (string, error) {
	if strings.Contains(prefix, "\\") {
		return "", ErrBackslashInPath
	}

	var segs []string
	for _, seg := range strings.Split(prefix, "/") {
		switch {
		case seg == "":
			continue
		case seg == "." || seg == "..":
			return "", ErrInvalidPrefix
		case strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "*") || strings.ContainsAny(seg, "[]{}"):
			return "", ErrInvalidPrefix
		}
		segs = append(segs, seg)
	}

	if len(segs) == 0 {
		return "", nil
	}
	return "/" + strings.Join(segs, "/"), nil
}

// Join mounts a translated path under a cleaned prefix.
//
//	Join("/api", "/hospitals/:id") → "/api/hospitals/:id"
//	Join("/api", "/")              → "/api"
//	Join("", "/")                  → "/"
func Join(prefix, mountPath string) string {
	if mountPath == "" || mountPath == "/" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	if !strings.HasPrefix(mountPath, "/") {
		mountPath = "/" + mountPath
	}
	return prefix + mountPath
}

// DecodeSegment decodes a single escaped path segment bound to a param.
// Non-catch-all params reject an encoded slash, which would otherwise let a
// single param smuggle extra path segments.
func DecodeSegment(segment string, isCatchAll bool) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}

	if !isCatchAll && strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}

	return decoded, nil
}
