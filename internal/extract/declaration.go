package extract

import (
	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/syntax"
	"github.com/dejo1307/swiftdecl/internal/typedesc"
)

// declaration builds the header of a nestable declaration's record. Members
// and nested declarations are filled in by the extractor as they are met.
func declaration(n syntax.Node, kind model.Kind, parentPath model.QualifiedPath, file string) model.Declaration {
	d := model.Declaration{
		Kind:           kind,
		InheritedTypes: inheritedTypes(n),
		Modifiers:      modifiersOf(n).WithDeclarationDefaults(),
		Attributes:     attributesOf(n),
		ParentPath:     parentPath,
		Documentation:  docsOf(n),
		File:           file,
		Line:           syntax.Line(n),
	}
	if kind == model.KindExtension {
		// Extensions are named by the extended type as written: Foo.Bar.
		d.ExtendedType = typedesc.FromNode(syntax.FirstType(n))
		if d.ExtendedType != nil {
			d.Name = typedesc.AsSource(d.ExtendedType)
		}
	} else {
		d.Name = syntax.Name(n)
	}
	d.GenericParameters, d.GenericRequirements = genericsOf(n)
	return d
}
