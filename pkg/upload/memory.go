package upload

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// MemoryStore keeps uploads in process memory. Claim removes the entry
// immediately.
type MemoryStore struct {
	maxSize int64
	now     func() time.Time

	mu    sync.Mutex
	files map[string]memoryEntry
}

type memoryEntry struct {
	filename    string
	contentType string
	data        []byte
	createdAt   time.Time
}

// NewMemoryStore creates a MemoryStore. maxSize of 0 means no limit.
func NewMemoryStore(maxSize int64) *MemoryStore {
	return &MemoryStore{
		maxSize: maxSize,
		now:     time.Now,
		files:   make(map[string]memoryEntry),
	}
}

// Save buffers the file.
func (s *MemoryStore) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := copyLimited(&buf, r, s.maxSize); err != nil {
		return "", err
	}

	id := newID()
	s.mu.Lock()
	s.files[id] = memoryEntry{
		filename:    filename,
		contentType: contentType,
		data:        buf.Bytes(),
		createdAt:   s.now(),
	}
	s.mu.Unlock()
	return id, nil
}

// Claim removes and returns a stored file.
func (s *MemoryStore) Claim(_ context.Context, id string) (*File, error) {
	s.mu.Lock()
	e, ok := s.files[id]
	delete(s.files, id)
	s.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	return &File{
		ID:          id,
		Filename:    e.filename,
		ContentType: e.contentType,
		Size:        int64(len(e.data)),
		Reader:      io.NopCloser(bytes.NewReader(e.data)),
	}, nil
}

// Cleanup drops entries older than maxAge.
func (s *MemoryStore) Cleanup(_ context.Context, maxAge time.Duration) error {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.files {
		if e.createdAt.Before(cutoff) {
			delete(s.files, id)
		}
	}
	return nil
}

// Len returns the number of unclaimed files.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
