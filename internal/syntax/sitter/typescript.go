package sitter

import (
	"strings"

	treesitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/dejo1307/swiftdecl/internal/syntax"
)

// TypeScriptKinds maps the TypeScript grammar onto declaration skeletons:
// classes, interfaces (as protocols), enums and methods with their parameter
// names. Exported declarations are unwrapped in place. Type annotations are
// not mapped.
var TypeScriptKinds = KindMap{
	"program":                    syntax.KindSourceFile,
	"export_statement":           Inline,
	"class_declaration":          syntax.KindClassDecl,
	"abstract_class_declaration": syntax.KindClassDecl,
	"interface_declaration":      syntax.KindProtocolDecl,
	"enum_declaration":           syntax.KindEnumDecl,
	"class_body":                 syntax.KindMemberBlock,
	"interface_body":             syntax.KindMemberBlock,
	"enum_body":                  syntax.KindMemberBlock,
	"type_identifier":            syntax.KindIdentifier,
	"identifier":                 syntax.KindIdentifier,
	"property_identifier":        syntax.KindIdentifier,
	"method_definition":          syntax.KindFunctionDecl,
	"method_signature":           syntax.KindFunctionDecl,
	"formal_parameters":          syntax.KindParameterClause,
	"required_parameter":         syntax.KindParameter,
	"optional_parameter":         syntax.KindParameter,
	"statement_block":            syntax.KindCodeBlock,
}

// ParseTypeScript parses a .ts or .tsx file.
func ParseTypeScript(path string, src []byte) (*syntax.Raw, error) {
	lang := typescript.LanguageTypescript()
	if strings.HasSuffix(path, ".tsx") {
		lang = typescript.LanguageTSX()
	}
	return Parse(treesitter.NewLanguage(lang), src, TypeScriptKinds)
}
