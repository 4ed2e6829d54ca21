package assets

// Source is either a reference (URL, embedded path or disk path) or raw
// bytes.
type Source struct {
	ref   string
	data  []byte
	bytes bool
}

// FromRef wraps a reference resolved by a Pipeline.
func FromRef(ref string) Source { return Source{ref: ref} }

// FromBytes wraps already-loaded file contents.
func FromBytes(b []byte) Source { return Source{data: b, bytes: true} }

// IsBytes reports whether the source carries raw bytes.
func (s Source) IsBytes() bool { return s.bytes }

// Ref returns the reference, empty for byte sources.
func (s Source) Ref() string { return s.ref }

// Bytes returns the raw contents, nil for references.
func (s Source) Bytes() []byte { return s.data }

// IsZero reports whether neither a reference nor bytes were given.
func (s Source) IsZero() bool { return !s.bytes && s.ref == "" }

func (s Source) String() string {
	if s.bytes {
		return "<bytes>"
	}
	return s.ref
}
