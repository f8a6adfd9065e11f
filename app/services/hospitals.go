package services

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrHospitalNotFound is returned for unknown hospital IDs.
var ErrHospitalNotFound = errors.New("hospital not found")

// ErrVersionNotFound is returned for unknown hospital versions.
var ErrVersionNotFound = errors.New("hospital version not found")

// Hospital is one bookable facility.
type Hospital struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	Departments []string  `json:"departments"`
	Version     int       `json:"version"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HospitalInput is the writable part of a Hospital.
type HospitalInput struct {
	Name        string   `json:"name"`
	City        string   `json:"city"`
	Departments []string `json:"departments"`
}

// Validate reports the first missing field.
func (in HospitalInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return errors.New("name is required")
	case strings.TrimSpace(in.City) == "":
		return errors.New("city is required")
	}
	return nil
}

// HospitalStore is an in-memory hospital directory. Every update appends a
// version; earlier versions stay readable.
type HospitalStore struct {
	now func() time.Time

	mu       sync.RWMutex
	versions map[string][]Hospital
}

// NewHospitalStore creates an empty store.
func NewHospitalStore() *HospitalStore {
	return &HospitalStore{
		now:      time.Now,
		versions: make(map[string][]Hospital),
	}
}

// List returns the latest version of every hospital, optionally filtered
// by city (case-insensitive), ordered by name.
func (s *HospitalStore) List(city string) []Hospital {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Hospital, 0, len(s.versions))
	for _, vs := range s.versions {
		h := vs[len(vs)-1]
		if city != "" && !strings.EqualFold(h.City, city) {
			continue
		}
		out = append(out, clone(h))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns the latest version of a hospital.
func (s *HospitalStore) Get(id string) (Hospital, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vs, ok := s.versions[id]
	if !ok {
		return Hospital{}, ErrHospitalNotFound
	}
	return clone(vs[len(vs)-1]), nil
}

// Version returns version n (1-based) of a hospital.
func (s *HospitalStore) Version(id string, n int) (Hospital, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vs, ok := s.versions[id]
	if !ok {
		return Hospital{}, ErrHospitalNotFound
	}
	if n < 1 || n > len(vs) {
		return Hospital{}, ErrVersionNotFound
	}
	return clone(vs[n-1]), nil
}

// Create adds a hospital at version 1.
func (s *HospitalStore) Create(in HospitalInput) (Hospital, error) {
	if err := in.Validate(); err != nil {
		return Hospital{}, err
	}

	h := Hospital{
		ID:          uuid.NewString(),
		Name:        in.Name,
		City:        in.City,
		Departments: append([]string(nil), in.Departments...),
		Version:     1,
		UpdatedAt:   s.now().UTC(),
	}

	s.mu.Lock()
	s.versions[h.ID] = []Hospital{h}
	s.mu.Unlock()
	return clone(h), nil
}

// Update appends a new version of a hospital.
func (s *HospitalStore) Update(id string, in HospitalInput) (Hospital, error) {
	if err := in.Validate(); err != nil {
		return Hospital{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vs, ok := s.versions[id]
	if !ok {
		return Hospital{}, ErrHospitalNotFound
	}
	h := Hospital{
		ID:          id,
		Name:        in.Name,
		City:        in.City,
		Departments: append([]string(nil), in.Departments...),
		Version:     len(vs) + 1,
		UpdatedAt:   s.now().UTC(),
	}
	s.versions[id] = append(vs, h)
	return clone(h), nil
}

// Delete removes a hospital and its history.
func (s *HospitalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.versions[id]; !ok {
		return ErrHospitalNotFound
	}
	delete(s.versions, id)
	return nil
}

func clone(h Hospital) Hospital {
	h.Departments = append([]string(nil), h.Departments...)
	return h
}
