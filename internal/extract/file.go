package extract

import (
	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/syntax"
)

// File extracts every top-level declaration of a source file. Imports are
// kept in source order, each nestable declaration gets its own extractor, and
// top-level typealiases, properties and functions are recorded with an empty
// parent path. Statements are ignored.
func File(root syntax.Node, opts ...Option) *model.FileModel {
	o := buildOptions(opts)
	fm := &model.FileModel{Path: o.file}

	items := []syntax.Node{root}
	if root.Kind() == syntax.KindSourceFile {
		items = root.Children()
	}
	for _, n := range items {
		if kind, ok := nestable[n.Kind()]; ok {
			fm.Forest.Merge(NewExtractor(kind, nil, opts...).Walk(n))
			continue
		}
		switch n.Kind() {
		case syntax.KindImportDecl:
			if path := syntax.FirstChild(n, syntax.KindImportPath); path != nil {
				fm.Imports = append(fm.Imports, path.Text())
			}
		case syntax.KindTypealiasDecl:
			fm.Forest.Typealiases = append(fm.Forest.Typealiases, Typealias(n, nil))
		case syntax.KindVariableDecl:
			fm.Forest.Properties = append(fm.Forest.Properties, Properties(n, nil, o.reporter)...)
		case syntax.KindFunctionDecl:
			fm.Forest.Functions = append(fm.Forest.Functions, Function(n, nil))
		}
	}
	return fm
}
