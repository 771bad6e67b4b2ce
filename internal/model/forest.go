package model

// Forest is the flat, kind-partitioned result of extracting one subtree.
// Nested declarations appear in their kind's list with their full parent
// path, and also under their parent's Nested field.
type Forest struct {
	Classes         []Declaration    `json:"classes,omitempty"`
	Structs         []Declaration    `json:"structs,omitempty"`
	Enums           []Declaration    `json:"enums,omitempty"`
	Protocols       []Declaration    `json:"protocols,omitempty"`
	Extensions      []Declaration    `json:"extensions,omitempty"`
	Typealiases     []Typealias      `json:"typealiases,omitempty"`
	AssociatedTypes []AssociatedType `json:"associated_types,omitempty"`
	Properties      []Property       `json:"properties,omitempty"`
	Functions       []Function       `json:"functions,omitempty"`
	Initializers    []Initializer    `json:"initializers,omitempty"`
	EnumCases       []EnumCase       `json:"enum_cases,omitempty"`
}

// Add appends d to the list for its kind.
func (f *Forest) Add(d Declaration) {
	switch d.Kind {
	case KindClass:
		f.Classes = append(f.Classes, d)
	case KindStruct:
		f.Structs = append(f.Structs, d)
	case KindEnum:
		f.Enums = append(f.Enums, d)
	case KindProtocol:
		f.Protocols = append(f.Protocols, d)
	case KindExtension:
		f.Extensions = append(f.Extensions, d)
	}
}

// Merge appends every list of other to f.
func (f *Forest) Merge(other Forest) {
	f.Classes = append(f.Classes, other.Classes...)
	f.Structs = append(f.Structs, other.Structs...)
	f.Enums = append(f.Enums, other.Enums...)
	f.Protocols = append(f.Protocols, other.Protocols...)
	f.Extensions = append(f.Extensions, other.Extensions...)
	f.Typealiases = append(f.Typealiases, other.Typealiases...)
	f.AssociatedTypes = append(f.AssociatedTypes, other.AssociatedTypes...)
	f.Properties = append(f.Properties, other.Properties...)
	f.Functions = append(f.Functions, other.Functions...)
	f.Initializers = append(f.Initializers, other.Initializers...)
	f.EnumCases = append(f.EnumCases, other.EnumCases...)
}

// Of returns the declarations of one kind.
func (f *Forest) Of(kind Kind) []Declaration {
	switch kind {
	case KindClass:
		return f.Classes
	case KindStruct:
		return f.Structs
	case KindEnum:
		return f.Enums
	case KindProtocol:
		return f.Protocols
	case KindExtension:
		return f.Extensions
	}
	return nil
}

// Declarations returns all declarations in kind order.
func (f *Forest) Declarations() []Declaration {
	out := make([]Declaration, 0, f.DeclarationCount())
	for _, k := range Kinds {
		out = append(out, f.Of(k)...)
	}
	return out
}

// DeclarationCount returns the number of type declarations.
func (f *Forest) DeclarationCount() int {
	return len(f.Classes) + len(f.Structs) + len(f.Enums) + len(f.Protocols) + len(f.Extensions)
}

// Roots returns the declarations with an empty parent path.
func (f *Forest) Roots() []Declaration {
	var out []Declaration
	for _, d := range f.Declarations() {
		if len(d.ParentPath) == 0 {
			out = append(out, d)
		}
	}
	return out
}
