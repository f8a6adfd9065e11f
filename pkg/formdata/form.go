package formdata

// File is an uploaded file part, fully buffered.
type File struct {
	// Filename is the client-supplied file name.
	Filename string

	// MIMEType is the part's Content-Type, "application/octet-stream" when absent.
	MIMEType string

	// Data holds the file bytes.
	Data []byte
}

// Size returns the file length in bytes.
func (f *File) Size() int64 {
	return int64(len(f.Data))
}

// Entry is one form value. Exactly one of Value or File is meaningful.
type Entry struct {
	Name  string
	Value string
	File  *File
}

// IsFile reports whether the entry holds a file.
func (e Entry) IsFile() bool {
	return e.File != nil
}

// Form is an ordered multi-map of field names to text or file values.
// Entries keep the order their parts appeared in the request body.
type Form struct {
	entries []Entry
}

// Len returns the number of entries.
func (f *Form) Len() int {
	return len(f.entries)
}

// Entries returns a copy of all entries in source order.
func (f *Form) Entries() []Entry {
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Get returns the first entry with the given name.
func (f *Form) Get(name string) (Entry, bool) {
	for _, e := range f.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// GetAll returns every entry with the given name in source order.
func (f *Form) GetAll(name string) []Entry {
	var out []Entry
	for _, e := range f.entries {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// Has reports whether any entry has the given name.
func (f *Form) Has(name string) bool {
	_, ok := f.Get(name)
	return ok
}

// Value returns the first text value for name, or "".
func (f *Form) Value(name string) string {
	for _, e := range f.entries {
		if e.Name == name && e.File == nil {
			return e.Value
		}
	}
	return ""
}

// File returns the first file for name, or nil.
func (f *Form) File(name string) *File {
	for _, e := range f.entries {
		if e.Name == name && e.File != nil {
			return e.File
		}
	}
	return nil
}

// Files returns every file entry in source order.
func (f *Form) Files() []*File {
	var out []*File
	for _, e := range f.entries {
		if e.File != nil {
			out = append(out, e.File)
		}
	}
	return out
}

// Names returns the distinct field names in first-seen order.
func (f *Form) Names() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range f.entries {
		if !seen[e.Name] {
			seen[e.Name] = true
			out = append(out, e.Name)
		}
	}
	return out
}
