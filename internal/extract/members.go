package extract

import (
	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/syntax"
	"github.com/dejo1307/swiftdecl/internal/typedesc"
)

// Function builds the record for a function declaration. Operator functions
// keep their operator as the name.
func Function(n syntax.Node, parentPath model.QualifiedPath) model.Function {
	params, reqs := genericsOf(n)
	async, throws := effects(n)
	return model.Function{
		Name:                syntax.Name(n),
		GenericParameters:   params,
		GenericRequirements: reqs,
		Parameters:          parameters(syntax.FirstChild(n, syntax.KindParameterClause)),
		ReturnType:          typedesc.FromNode(syntax.FirstType(syntax.FirstChild(n, syntax.KindReturnClause))),
		Async:               async,
		Throws:              throws,
		Modifiers:           modifiersOf(n).WithDeclarationDefaults(),
		Attributes:          attributesOf(n),
		ParentPath:          parentPath,
		Documentation:       docsOf(n),
		Line:                syntax.Line(n),
	}
}

// Initializer builds the record for an init declaration. Initializers not
// marked convenience are designated.
func Initializer(n syntax.Node, parentPath model.QualifiedPath) model.Initializer {
	params, reqs := genericsOf(n)
	async, throws := effects(n)
	optionality := ""
	for _, k := range syntax.ChildrenOf(n, syntax.KindKeyword) {
		if t := k.Text(); t == "?" || t == "!" {
			optionality = t
		}
	}
	return model.Initializer{
		Optionality:         optionality,
		GenericParameters:   params,
		GenericRequirements: reqs,
		Parameters:          parameters(syntax.FirstChild(n, syntax.KindParameterClause)),
		Async:               async,
		Throws:              throws,
		Modifiers:           modifiersOf(n).WithInitializerDefaults(),
		Attributes:          attributesOf(n),
		ParentPath:          parentPath,
		Documentation:       docsOf(n),
		Line:                syntax.Line(n),
	}
}

// EnumCases returns one record per element of a case declaration, so
// `case a, b(Int)` yields two cases.
func EnumCases(n syntax.Node, parentPath model.QualifiedPath) []model.EnumCase {
	indirect := hasModifier(n, "indirect")
	docs := docsOf(n)
	var cases []model.EnumCase
	for _, el := range syntax.ChildrenOf(n, syntax.KindEnumCaseElement) {
		c := model.EnumCase{
			Name:          syntax.Name(el),
			Indirect:      indirect,
			ParentPath:    parentPath,
			Documentation: docs,
			Line:          syntax.Line(el),
		}
		if tuple := syntax.FirstChild(el, syntax.KindTupleType); tuple != nil {
			c.AssociatedValues = parameters(tuple)
		}
		if raw := syntax.FirstChild(el, syntax.KindRawValue); raw != nil {
			c.RawValue = valueText(raw)
		}
		cases = append(cases, c)
	}
	return cases
}

// parameters reads a parameter clause or an associated-value tuple. With two
// names the first is the argument label; with one, it serves as both.
func parameters(clause syntax.Node) []model.Parameter {
	params := []model.Parameter{}
	if clause == nil {
		return params
	}
	for _, p := range syntax.ChildrenOf(clause, syntax.KindParameter, syntax.KindTupleTypeElement) {
		param := model.Parameter{
			Type:       typedesc.FromNode(syntax.FirstType(p)),
			Variadic:   syntax.FirstChild(p, syntax.KindEllipsis) != nil,
			HasDefault: syntax.FirstChild(p, syntax.KindDefaultArgument) != nil,
		}
		names := syntax.ChildrenOf(p, syntax.KindIdentifier)
		switch len(names) {
		case 1:
			param.Label = syntax.Unescape(names[0].Text())
			param.Name = param.Label
		case 2:
			param.Label = syntax.Unescape(names[0].Text())
			param.Name = syntax.Unescape(names[1].Text())
		}
		params = append(params, param)
	}
	return params
}
