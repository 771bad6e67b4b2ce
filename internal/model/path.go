package model

import (
	"encoding/json"
	"strings"
)

// QualifiedPath is the chain of enclosing declaration names, outermost
// first. Root declarations have an empty path.
type QualifiedPath []string

// Append returns a new path extended by name. The receiver is never aliased.
func (p QualifiedPath) Append(name string) QualifiedPath {
	out := make(QualifiedPath, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// String joins the path with dots.
func (p QualifiedPath) String() string {
	return strings.Join(p, ".")
}

// Qualify returns the dotted qualified name of a declaration called name
// that lives under this path.
func (p QualifiedPath) Qualify(name string) string {
	if len(p) == 0 {
		return name
	}
	return p.String() + "." + name
}

// HasPrefix reports whether prefix is a leading subsequence of p.
func (p QualifiedPath) HasPrefix(prefix QualifiedPath) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Equal reports whether two paths have the same segments.
func (p QualifiedPath) Equal(other QualifiedPath) bool {
	return len(p) == len(other) && p.HasPrefix(other)
}

// MarshalJSON encodes root paths as [] rather than null.
func (p QualifiedPath) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(p))
}
