package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHospitalStoreVersions(t *testing.T) {
	s := NewHospitalStore()

	h, err := s.Create(HospitalInput{Name: "St. Mary", City: "Leeds", Departments: []string{"cardiology"}})
	require.NoError(t, err)
	assert.Equal(t, 1, h.Version)
	assert.NotEmpty(t, h.ID)

	updated, err := s.Update(h.ID, HospitalInput{Name: "St. Mary's", City: "Leeds"})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	latest, err := s.Get(h.ID)
	require.NoError(t, err)
	assert.Equal(t, "St. Mary's", latest.Name)

	v1, err := s.Version(h.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "St. Mary", v1.Name)
	assert.Equal(t, []string{"cardiology"}, v1.Departments)

	_, err = s.Version(h.ID, 3)
	assert.ErrorIs(t, err, ErrVersionNotFound)
	_, err = s.Version("nope", 1)
	assert.ErrorIs(t, err, ErrHospitalNotFound)
}

func TestHospitalStoreListAndDelete(t *testing.T) {
	s := NewHospitalStore()
	b, _ := s.Create(HospitalInput{Name: "B", City: "York"})
	s.Create(HospitalInput{Name: "A", City: "york"})
	s.Create(HospitalInput{Name: "C", City: "Leeds"})

	all := s.List("")
	require.Len(t, all, 3)
	assert.Equal(t, "A", all[0].Name)

	assert.Len(t, s.List("YORK"), 2)

	require.NoError(t, s.Delete(b.ID))
	assert.ErrorIs(t, s.Delete(b.ID), ErrHospitalNotFound)
	assert.Len(t, s.List(""), 2)
}

func TestHospitalStoreReturnsCopies(t *testing.T) {
	s := NewHospitalStore()
	h, _ := s.Create(HospitalInput{Name: "A", City: "X", Departments: []string{"er"}})
	h.Departments[0] = "mutated"

	got, _ := s.Get(h.ID)
	assert.Equal(t, "er", got.Departments[0])
}

func TestHospitalInputValidate(t *testing.T) {
	_, err := NewHospitalStore().Create(HospitalInput{City: "X"})
	assert.EqualError(t, err, "name is required")
	_, err = NewHospitalStore().Create(HospitalInput{Name: "X"})
	assert.EqualError(t, err, "city is required")
}

func TestRequire(t *testing.T) {
	Set(nil)
	_, err := Require()
	assert.ErrorIs(t, err, ErrNotConfigured)

	want := &Services{Hospitals: NewHospitalStore()}
	Set(want)
	t.Cleanup(func() { Set(nil) })
	got, err := Require()
	require.NoError(t, err)
	assert.Same(t, want, got)
}
