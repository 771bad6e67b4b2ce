// Package modifier represents declaration modifiers as a bit set.
package modifier

import (
	"encoding/json"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Set is a set of declaration modifiers.
type Set uint32

const (
	Open Set = 1 << iota
	Public
	Internal
	Private
	FilePrivate
	PrivateSet
	InternalSet
	PublicSet
	Instance
	Static
	Designated
	Convenience
	Override
	Required
)

// flags lists every flag with its source spelling, in rendering order.
var flags = []struct {
	flag Set
	name string
}{
	{Open, "open"},
	{Public, "public"},
	{Internal, "internal"},
	{Private, "private"},
	{FilePrivate, "fileprivate"},
	{PrivateSet, "private(set)"},
	{InternalSet, "internal(set)"},
	{PublicSet, "public(set)"},
	{Instance, "instance"},
	{Static, "static"},
	{Designated, "designated"},
	{Convenience, "convenience"},
	{Override, "override"},
	{Required, "required"},
}

var byName = func() map[string]Set {
	m := make(map[string]Set, len(flags)+1)
	for _, f := range flags {
		m[f.name] = f.flag
	}
	// `class var` and `class func` are type members.
	m["class"] = Static
	return m
}()

const access = Open | Public | Internal | Private | FilePrivate

// Parse builds a set from modifier tokens. Compound forms like
// "private( set )" are recognized regardless of inner whitespace. Tokens that
// are not modeled (final, lazy, mutating, ...) are dropped.
func Parse(tokens ...string) Set {
	var s Set
	for _, tok := range tokens {
		s |= byName[normalize(tok)]
	}
	return s
}

func normalize(tok string) string {
	return strings.Join(strings.Fields(tok), "")
}

// Has reports whether all flags in f are set.
func (s Set) Has(f Set) bool {
	return s&f == f
}

// Access returns the access-level flag, or 0 when none was declared.
func (s Set) Access() Set {
	return s & access
}

// WithDeclarationDefaults applies the defaults for an ordinary declaration:
// internal access when none is declared, instance when not static.
func (s Set) WithDeclarationDefaults() Set {
	if s&access == 0 {
		s |= Internal
	}
	if !s.Has(Static) {
		s |= Instance
	}
	return s
}

// WithInitializerDefaults applies the declaration defaults plus the
// initializer rule: anything not marked convenience is designated.
func (s Set) WithInitializerDefaults() Set {
	s = s.WithDeclarationDefaults()
	if !s.Has(Convenience) {
		s |= Designated
	}
	return s
}

// Strings returns the source spellings of the set flags in canonical order.
func (s Set) Strings() []string {
	out := make([]string, 0, 4)
	for _, f := range flags {
		if s.Has(f.flag) {
			out = append(out, f.name)
		}
	}
	return out
}

func (s Set) String() string {
	return strings.Join(s.Strings(), " ")
}

// MarshalJSON encodes the set as a list of modifier names.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON decodes a list of modifier names. Unknown names are an error
// here, unlike Parse, because they indicate corrupt data rather than new
// source syntax.
func (s *Set) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return errors.Errorf("decoding modifiers: %w", err)
	}
	return s.fromNames(names)
}

func (s *Set) fromNames(names []string) error {
	var out Set
	for _, n := range names {
		f, ok := byName[n]
		if !ok || n == "class" {
			return errors.Errorf("unknown modifier %q", n)
		}
		out |= f
	}
	*s = out
	return nil
}

// MarshalYAML renders the set as a list of names.
func (s Set) MarshalYAML() (any, error) {
	return s.Strings(), nil
}

// UnmarshalYAML decodes a list of modifier names.
func (s *Set) UnmarshalYAML(unmarshal func(any) error) error {
	var names []string
	if err := unmarshal(&names); err != nil {
		return errors.Errorf("decoding modifiers: %w", err)
	}
	return s.fromNames(names)
}
