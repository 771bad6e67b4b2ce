// Package syntax defines the concrete-syntax-tree abstraction consumed by the
// declaration extractors. Front ends (the bundled Swift parser, the tree-sitter
// bridge) produce trees of Node values; extractors only ever see this interface.
package syntax

// Kind discriminates syntax nodes.
type Kind string

// Declaration kinds.
const (
	KindSourceFile         Kind = "source_file"
	KindImportDecl         Kind = "import_declaration"
	KindClassDecl          Kind = "class_declaration"
	KindStructDecl         Kind = "struct_declaration"
	KindEnumDecl           Kind = "enum_declaration"
	KindProtocolDecl       Kind = "protocol_declaration"
	KindExtensionDecl      Kind = "extension_declaration"
	KindActorDecl          Kind = "actor_declaration"
	KindTypealiasDecl      Kind = "typealias_declaration"
	KindAssociatedTypeDecl Kind = "associatedtype_declaration"
	KindVariableDecl       Kind = "variable_declaration"
	KindFunctionDecl       Kind = "function_declaration"
	KindInitializerDecl    Kind = "initializer_declaration"
	KindDeinitializerDecl  Kind = "deinitializer_declaration"
	KindSubscriptDecl      Kind = "subscript_declaration"
	KindEnumCaseDecl       Kind = "enum_case_declaration"
	KindStatement          Kind = "statement"
)

// Declaration parts.
const (
	KindAttribute              Kind = "attribute"
	KindModifierList           Kind = "modifier_list"
	KindModifier               Kind = "modifier"
	KindKeyword                Kind = "keyword"
	KindIdentifier             Kind = "identifier"
	KindImportPath             Kind = "import_path"
	KindInheritanceClause      Kind = "inheritance_clause"
	KindGenericParameterClause Kind = "generic_parameter_clause"
	KindGenericParameter       Kind = "generic_parameter"
	KindGenericWhereClause     Kind = "generic_where_clause"
	KindSameTypeRequirement    Kind = "same_type_requirement"
	KindConformanceRequirement Kind = "conformance_requirement"
	KindMemberBlock            Kind = "member_block"
	KindPatternBinding         Kind = "pattern_binding"
	KindPattern                Kind = "pattern"
	KindTypeAnnotation         Kind = "type_annotation"
	KindTypeInitializer        Kind = "type_initializer"
	KindInitializerClause      Kind = "initializer_clause"
	KindAccessorBlock          Kind = "accessor_block"
	KindAccessor               Kind = "accessor"
	KindCodeBlock              Kind = "code_block"
	KindParameterClause        Kind = "parameter_clause"
	KindParameter              Kind = "parameter"
	KindEllipsis               Kind = "ellipsis"
	KindDefaultArgument        Kind = "default_argument"
	KindReturnClause           Kind = "return_clause"
	KindEnumCaseElement        Kind = "enum_case_element"
	KindRawValue               Kind = "raw_value"
	KindExpression             Kind = "expression"
)

// Type kinds.
const (
	KindSimpleType                      Kind = "simple_type"
	KindMemberType                      Kind = "member_type"
	KindGenericArgumentClause           Kind = "generic_argument_clause"
	KindCompositionType                 Kind = "composition_type"
	KindOptionalType                    Kind = "optional_type"
	KindImplicitlyUnwrappedOptionalType Kind = "implicitly_unwrapped_optional_type"
	KindArrayType                       Kind = "array_type"
	KindDictionaryType                  Kind = "dictionary_type"
	KindTupleType                       Kind = "tuple_type"
	KindTupleTypeElement                Kind = "tuple_type_element"
	KindFunctionType                    Kind = "function_type"
	KindSomeOrAnyType                   Kind = "some_or_any_type"
	KindAttributedType                  Kind = "attributed_type"
	KindMetatypeType                    Kind = "metatype_type"
	KindMissingType                     Kind = "missing_type"
)

// Node is one node of a parsed concrete syntax tree. Implementations must be
// comparable, typically pointers: extractors match exit events to enter
// events by node identity.
type Node interface {
	// Kind returns the node discriminant.
	Kind() Kind
	// Children returns the ordered typed children.
	Children() []Node
	// LeadingTrivia returns the whitespace and comments preceding the node.
	LeadingTrivia() string
	// Text returns the source-accurate rendering of the subtree.
	Text() string
}

// Positioned is implemented by nodes that know their 1-based source line.
type Positioned interface {
	Line() int
}

// Raw is the concrete Node produced by the bundled front end. Its text is a
// slice of the original source, so renderings are always source-accurate.
type Raw struct {
	kind       Kind
	src        string
	start, end int
	line       int
	trivia     string
	children   []Node
}

// NewRaw creates a node spanning src[start:end].
func NewRaw(kind Kind, src string, start, end, line int, trivia string, children ...Node) *Raw {
	return &Raw{
		kind:     kind,
		src:      src,
		start:    start,
		end:      end,
		line:     line,
		trivia:   trivia,
		children: children,
	}
}

// Synthetic creates a node whose text is given directly rather than sliced
// from a larger source. Useful for adapters and hand-built trees.
func Synthetic(kind Kind, text string, children ...Node) *Raw {
	return &Raw{kind: kind, src: text, end: len(text), children: children}
}

func (r *Raw) Kind() Kind            { return r.kind }
func (r *Raw) Children() []Node      { return r.children }
func (r *Raw) LeadingTrivia() string { return r.trivia }
func (r *Raw) Line() int             { return r.line }

func (r *Raw) Text() string {
	if r.start < 0 || r.end > len(r.src) || r.start > r.end {
		return ""
	}
	return r.src[r.start:r.end]
}

// WithTrivia returns r after setting its leading trivia.
func (r *Raw) WithTrivia(trivia string) *Raw {
	r.trivia = trivia
	return r
}
