package upload

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DiskStore stores uploads on the local filesystem. Each file sits next to
// a ".meta" JSON sidecar so a restarted process can still claim it.
type DiskStore struct {
	dir     string
	maxSize int64

	mu    sync.RWMutex
	files map[string]*diskMeta
}

type diskMeta struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDiskStore creates a DiskStore rooted at dir. maxSize of 0 means no limit.
func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &DiskStore{
		dir:     dir,
		maxSize: maxSize,
		files:   make(map[string]*diskMeta),
	}, nil
}

// Save writes the file and its metadata.
func (s *DiskStore) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := newID()
	path := filepath.Join(s.dir, id)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	written, err := copyLimited(f, r, s.maxSize)
	if err != nil {
		os.Remove(path)
		return "", err
	}

	meta := &diskMeta{
		Filename:    filename,
		ContentType: contentType,
		Size:        written,
		CreatedAt:   time.Now(),
	}
	if err := s.saveMeta(id, meta); err != nil {
		os.Remove(path)
		return "", err
	}

	s.mu.Lock()
	s.files[id] = meta
	s.mu.Unlock()

	return id, nil
}

// Claim opens a stored file. The file and its metadata are deleted when
// the returned File is closed.
func (s *DiskStore) Claim(ctx context.Context, id string) (*File, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	meta, ok := s.files[id]
	if ok {
		delete(s.files, id)
	}
	s.mu.Unlock()

	if !ok {
		var err error
		meta, err = s.loadMeta(id)
		if err != nil {
			return nil, ErrNotFound
		}
	}

	path := filepath.Join(s.dir, id)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &File{
		ID:          id,
		Filename:    meta.Filename,
		ContentType: meta.ContentType,
		Size:        meta.Size,
		Path:        path,
		Reader:      &deleteOnCloseReader{File: f, path: path, metaPath: s.metaPath(id)},
	}, nil
}

// Cleanup removes expired files, including orphans left by earlier
// processes. Directories are never touched.
func (s *DiskStore) Cleanup(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, meta := range s.files {
		if meta.CreatedAt.Before(cutoff) {
			delete(s.files, id)
		}
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(s.dir, entry.Name()))
			delete(s.files, strings.TrimSuffix(entry.Name(), ".meta"))
		}
	}

	return nil
}

func (s *DiskStore) metaPath(id string) string {
	return filepath.Join(s.dir, id+".meta")
}

func (s *DiskStore) saveMeta(id string, meta *diskMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(s.metaPath(id), data, 0o644)
}

func (s *DiskStore) loadMeta(id string) (*diskMeta, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		return nil, err
	}
	var meta diskMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// deleteOnCloseReader wraps a file and deletes it when closed.
type deleteOnCloseReader struct {
	*os.File
	path     string
	metaPath string
}

func (r *deleteOnCloseReader) Close() error {
	err := r.File.Close()
	os.Remove(r.path)
	os.Remove(r.metaPath)
	return err
}
