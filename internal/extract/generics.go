package extract

import (
	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/syntax"
	"github.com/dejo1307/swiftdecl/internal/typedesc"
)

// GenericParameters returns the parameters of a generic parameter clause in
// source order.
func GenericParameters(clause syntax.Node) []model.GenericParameter {
	var params []model.GenericParameter
	for _, p := range syntax.ChildrenOf(clause, syntax.KindGenericParameter) {
		params = append(params, model.GenericParameter{
			Name:  syntax.Name(p),
			Bound: typedesc.FromNode(syntax.FirstType(p)),
		})
	}
	return params
}

// GenericRequirements returns the requirements of a where clause in source
// order.
func GenericRequirements(where syntax.Node) []model.GenericRequirement {
	var reqs []model.GenericRequirement
	for _, r := range syntax.ChildrenOf(where, syntax.KindSameTypeRequirement, syntax.KindConformanceRequirement) {
		types := syntax.Types(r)
		if len(types) != 2 {
			continue
		}
		rel := model.ConformsTo
		if r.Kind() == syntax.KindSameTypeRequirement {
			rel = model.Equals
		}
		reqs = append(reqs, model.GenericRequirement{
			Left:         typedesc.FromNode(types[0]),
			Right:        typedesc.FromNode(types[1]),
			Relationship: rel,
		})
	}
	return reqs
}

// genericsOf collects the generic parameters of n and its requirements, both
// those written inside the parameter clause and the trailing where clause.
func genericsOf(n syntax.Node) ([]model.GenericParameter, []model.GenericRequirement) {
	clause := syntax.FirstChild(n, syntax.KindGenericParameterClause)
	params := GenericParameters(clause)
	var reqs []model.GenericRequirement
	for _, w := range syntax.ChildrenOf(clause, syntax.KindGenericWhereClause) {
		reqs = append(reqs, GenericRequirements(w)...)
	}
	for _, w := range syntax.ChildrenOf(n, syntax.KindGenericWhereClause) {
		reqs = append(reqs, GenericRequirements(w)...)
	}
	return params, reqs
}
