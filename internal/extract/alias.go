package extract

import (
	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/syntax"
	"github.com/dejo1307/swiftdecl/internal/typedesc"
)

// Typealias builds the record for a typealias declaration.
func Typealias(n syntax.Node, parentPath model.QualifiedPath) model.Typealias {
	params, reqs := genericsOf(n)
	return model.Typealias{
		Name:                syntax.Name(n),
		Initializer:         typedesc.FromNode(syntax.FirstType(syntax.FirstChild(n, syntax.KindTypeInitializer))),
		GenericParameters:   params,
		GenericRequirements: reqs,
		Modifiers:           modifiersOf(n).WithDeclarationDefaults(),
		ParentPath:          parentPath,
		Documentation:       docsOf(n),
		Line:                syntax.Line(n),
	}
}

// AssociatedType builds the record for a protocol's associatedtype requirement.
func AssociatedType(n syntax.Node, parentPath model.QualifiedPath) model.AssociatedType {
	_, reqs := genericsOf(n)
	return model.AssociatedType{
		Name:                syntax.Name(n),
		InheritedTypes:      inheritedTypes(n),
		Initializer:         typedesc.FromNode(syntax.FirstType(syntax.FirstChild(n, syntax.KindTypeInitializer))),
		GenericRequirements: reqs,
		Modifiers:           modifiersOf(n).WithDeclarationDefaults(),
		ParentPath:          parentPath,
		Documentation:       docsOf(n),
		Line:                syntax.Line(n),
	}
}
