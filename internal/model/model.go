// Package model defines the records produced by declaration extraction.
// Records are built once per file and treated as immutable afterwards.
package model

import (
	"github.com/dejo1307/swiftdecl/internal/modifier"
	"github.com/dejo1307/swiftdecl/internal/typedesc"
)

// Kind is the variant of a declaration record.
type Kind string

// Declaration kinds.
const (
	KindClass     Kind = "class"
	KindStruct    Kind = "struct"
	KindEnum      Kind = "enum"
	KindProtocol  Kind = "protocol"
	KindExtension Kind = "extension"
)

// Kinds lists the declaration kinds in forest order.
var Kinds = []Kind{KindClass, KindStruct, KindEnum, KindProtocol, KindExtension}

// Declaration is a class, struct, enum, protocol or extension.
type Declaration struct {
	Kind                Kind                       `json:"kind"`
	Name                string                     `json:"name"`                    // Extended type text for extensions
	ExtendedType        typedesc.TypeDescription   `json:"extended_type,omitempty"` // Extensions only
	InheritedTypes      []typedesc.TypeDescription `json:"inherited_types"`
	GenericParameters   []GenericParameter         `json:"generic_parameters,omitempty"`
	GenericRequirements []GenericRequirement       `json:"generic_requirements,omitempty"`
	Modifiers           modifier.Set               `json:"modifiers"`
	Attributes          []string                   `json:"attributes,omitempty"`
	ParentPath          QualifiedPath              `json:"parent_path"`
	Typealiases         []Typealias                `json:"typealiases,omitempty"`
	AssociatedTypes     []AssociatedType           `json:"associated_types,omitempty"` // Protocols only
	Properties          []Property                 `json:"properties,omitempty"`
	Functions           []Function                 `json:"functions,omitempty"`
	Initializers        []Initializer              `json:"initializers,omitempty"`
	EnumCases           []EnumCase                 `json:"enum_cases,omitempty"` // Enums only
	Nested              []Declaration              `json:"nested,omitempty"`     // Direct children, any kind
	Documentation       string                     `json:"documentation,omitempty"`
	File                string                     `json:"file,omitempty"`
	Line                int                        `json:"line,omitempty"`
}

// QualifiedName returns the dotted name including enclosing declarations.
func (d *Declaration) QualifiedName() string {
	return d.ParentPath.Qualify(d.Name)
}

// Path returns the path that members and nested declarations of d carry.
func (d *Declaration) Path() QualifiedPath {
	return d.ParentPath.Append(d.Name)
}

// Depth is 1 for root declarations.
func (d *Declaration) Depth() int {
	return len(d.ParentPath) + 1
}

// GenericParameter is one entry of a generic parameter clause.
type GenericParameter struct {
	Name  string                   `json:"name"`
	Bound typedesc.TypeDescription `json:"bound,omitempty"`
}

// Relationship is the kind of a generic requirement.
type Relationship string

const (
	Equals     Relationship = "equals"      // T == U
	ConformsTo Relationship = "conforms_to" // T: P
)

// GenericRequirement is one entry of a where clause.
type GenericRequirement struct {
	Left         typedesc.TypeDescription `json:"left"`
	Right        typedesc.TypeDescription `json:"right"`
	Relationship Relationship             `json:"relationship"`
}

// Typealias is a typealias declaration.
type Typealias struct {
	Name                string                   `json:"name"`
	Initializer         typedesc.TypeDescription `json:"initializer,omitempty"`
	GenericParameters   []GenericParameter       `json:"generic_parameters,omitempty"`
	GenericRequirements []GenericRequirement     `json:"generic_requirements,omitempty"`
	Modifiers           modifier.Set             `json:"modifiers"`
	ParentPath          QualifiedPath            `json:"parent_path"`
	Documentation       string                   `json:"documentation,omitempty"`
	Line                int                      `json:"line,omitempty"`
}

// AssociatedType is a protocol associatedtype requirement.
type AssociatedType struct {
	Name                string                     `json:"name"`
	InheritedTypes      []typedesc.TypeDescription `json:"inherited_types,omitempty"`
	Initializer         typedesc.TypeDescription   `json:"initializer,omitempty"` // Default type
	GenericRequirements []GenericRequirement       `json:"generic_requirements,omitempty"`
	Modifiers           modifier.Set               `json:"modifiers"`
	ParentPath          QualifiedPath              `json:"parent_path"`
	Documentation       string                     `json:"documentation,omitempty"`
	Line                int                        `json:"line,omitempty"`
}

// ParadigmKind classifies how a property's value is provided.
type ParadigmKind string

const (
	UndefinedConstant       ParadigmKind = "undefined_constant"
	DefinedConstant         ParadigmKind = "defined_constant"
	UndefinedVariable       ParadigmKind = "undefined_variable"
	DefinedVariable         ParadigmKind = "defined_variable"
	ComputedVariable        ParadigmKind = "computed_variable"
	ProtocolGetter          ParadigmKind = "protocol_getter"
	ProtocolGetterAndSetter ParadigmKind = "protocol_getter_and_setter"
)

// Paradigm is the tagged property classification. Source holds the
// initializer text (leading `=` removed) for defined paradigms and the body
// text (braces removed) for computed variables.
type Paradigm struct {
	Kind   ParadigmKind `json:"kind"`
	Source string       `json:"source,omitempty"`
}

// IsConstant reports whether the paradigm came from a `let` binding.
func (p Paradigm) IsConstant() bool {
	return p.Kind == UndefinedConstant || p.Kind == DefinedConstant
}

// Property is one bound name of a variable declaration.
type Property struct {
	Name          string                   `json:"name"`
	DeclaredType  typedesc.TypeDescription `json:"declared_type,omitempty"`
	Modifiers     modifier.Set             `json:"modifiers"`
	Attributes    []string                 `json:"attributes,omitempty"`
	Paradigm      Paradigm                 `json:"paradigm"`
	ParentPath    QualifiedPath            `json:"parent_path"`
	Documentation string                   `json:"documentation,omitempty"`
	Line          int                      `json:"line,omitempty"`
}

// Parameter is a function, initializer or enum associated-value parameter.
type Parameter struct {
	Label      string                   `json:"label,omitempty"` // Argument label; "_" when suppressed
	Name       string                   `json:"name,omitempty"`
	Type       typedesc.TypeDescription `json:"type"`
	Variadic   bool                     `json:"variadic,omitempty"`
	HasDefault bool                     `json:"has_default,omitempty"`
}

// Function is a method or free function.
type Function struct {
	Name                string                   `json:"name"`
	GenericParameters   []GenericParameter       `json:"generic_parameters,omitempty"`
	GenericRequirements []GenericRequirement     `json:"generic_requirements,omitempty"`
	Parameters          []Parameter              `json:"parameters"`
	ReturnType          typedesc.TypeDescription `json:"return_type,omitempty"`
	Async               bool                     `json:"async,omitempty"`
	Throws              bool                     `json:"throws,omitempty"`
	Modifiers           modifier.Set             `json:"modifiers"`
	Attributes          []string                 `json:"attributes,omitempty"`
	ParentPath          QualifiedPath            `json:"parent_path"`
	Documentation       string                   `json:"documentation,omitempty"`
	Line                int                      `json:"line,omitempty"`
}

// Initializer is an init declaration.
type Initializer struct {
	Optionality         string               `json:"optionality,omitempty"` // "?" or "!" for failable initializers
	GenericParameters   []GenericParameter   `json:"generic_parameters,omitempty"`
	GenericRequirements []GenericRequirement `json:"generic_requirements,omitempty"`
	Parameters          []Parameter          `json:"parameters"`
	Async               bool                 `json:"async,omitempty"`
	Throws              bool                 `json:"throws,omitempty"`
	Modifiers           modifier.Set         `json:"modifiers"`
	Attributes          []string             `json:"attributes,omitempty"`
	ParentPath          QualifiedPath        `json:"parent_path"`
	Documentation       string               `json:"documentation,omitempty"`
	Line                int                  `json:"line,omitempty"`
}

// EnumCase is one element of an enum case declaration.
type EnumCase struct {
	Name             string        `json:"name"`
	AssociatedValues []Parameter   `json:"associated_values,omitempty"`
	RawValue         string        `json:"raw_value,omitempty"`
	Indirect         bool          `json:"indirect,omitempty"`
	ParentPath       QualifiedPath `json:"parent_path"`
	Documentation    string        `json:"documentation,omitempty"`
	Line             int           `json:"line,omitempty"`
}
