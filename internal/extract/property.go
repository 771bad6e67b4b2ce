package extract

import (
	"strconv"
	"strings"

	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/syntax"
	"github.com/dejo1307/swiftdecl/internal/typedesc"
)

// signal is one piece of evidence about how a binding's value is provided.
type signal int

const (
	signalInitializer signal = iota
	signalComputed
	signalAccessors
)

var signalNames = [...]string{"initializer", "computed body", "accessor requirement"}

type binding struct {
	node      syntax.Node
	names     []syntax.Node
	annotated typedesc.TypeDescription
}

// Properties classifies a variable declaration, returning one record per
// bound name. Shapes that a well-formed tree never has are passed to report
// and resolved by priority: initializer, then computed body, then accessor
// requirements.
func Properties(n syntax.Node, parentPath model.QualifiedPath, report Reporter) []model.Property {
	if report == nil {
		report = buildOptions(nil).reporter
	}
	keyword := ""
	if k := syntax.FirstChild(n, syntax.KindKeyword); k != nil {
		keyword = k.Text()
	}
	constant := keyword == "let"
	if !constant && keyword != "var" {
		report(&ConsistencyViolation{
			Line:   syntax.Line(n),
			Reason: "binding keyword " + strconv.Quote(keyword) + " is neither let nor var",
			Text:   n.Text(),
		})
	}

	bindings := bindingsOf(n)
	declared := declaredTypes(bindings)

	modifiers := modifiersOf(n).WithDeclarationDefaults()
	attributes := attributesOf(n)
	docs := docsOf(n)

	var props []model.Property
	for i, b := range bindings {
		for j, name := range b.names {
			id := syntax.Unescape(name.Text())
			paradigm := classify(b.node, id, constant, report)
			t := declared[i]
			if len(b.names) > 1 {
				t = tupleElement(t, j, len(b.names))
			}
			props = append(props, model.Property{
				Name:          id,
				DeclaredType:  t,
				Modifiers:     modifiers,
				Attributes:    attributes,
				Paradigm:      paradigm,
				ParentPath:    parentPath,
				Documentation: docs,
				Line:          syntax.Line(b.node),
			})
		}
	}
	return props
}

func bindingsOf(n syntax.Node) []binding {
	var bindings []binding
	for _, b := range syntax.ChildrenOf(n, syntax.KindPatternBinding) {
		pattern := syntax.FirstChild(b, syntax.KindPattern)
		var annotated typedesc.TypeDescription
		if ann := syntax.FirstChild(b, syntax.KindTypeAnnotation); ann != nil {
			annotated = typedesc.FromNode(syntax.FirstType(ann))
		}
		bindings = append(bindings, binding{
			node:      b,
			names:     syntax.ChildrenOf(pattern, syntax.KindIdentifier),
			annotated: annotated,
		})
	}
	return bindings
}

// declaredTypes resolves each binding's type. In `var a, b: Int` the
// annotation on b also types a, so annotations propagate right to left.
func declaredTypes(bindings []binding) []typedesc.TypeDescription {
	types := make([]typedesc.TypeDescription, len(bindings))
	var next typedesc.TypeDescription
	for i := len(bindings) - 1; i >= 0; i-- {
		if bindings[i].annotated != nil {
			next = bindings[i].annotated
		}
		types[i] = next
	}
	return types
}

// tupleElement picks the i-th element type for a destructuring pattern.
func tupleElement(t typedesc.TypeDescription, i, arity int) typedesc.TypeDescription {
	tuple, ok := t.(*typedesc.Tuple)
	if !ok || len(tuple.Elements) != arity {
		return nil
	}
	return tuple.Elements[i]
}

// classify derives the paradigm of a single pattern binding.
func classify(b syntax.Node, name string, constant bool, report Reporter) model.Paradigm {
	var signals []signal
	var initializer, body string
	getter, setter := false, false

	if init := syntax.FirstChild(b, syntax.KindInitializerClause); init != nil {
		signals = append(signals, signalInitializer)
		initializer = valueText(init)
	}
	if block := syntax.FirstChild(b, syntax.KindCodeBlock); block != nil {
		signals = append(signals, signalComputed)
		body = innerText(block)
	}
	if block := syntax.FirstChild(b, syntax.KindAccessorBlock); block != nil {
		kind := accessorsOf(block)
		getter, setter = kind.getter, kind.setter
		switch {
		case kind.bodies:
			signals = append(signals, signalComputed)
			body = innerText(block)
		case getter || setter:
			signals = append(signals, signalAccessors)
		}
	}

	if len(signals) > 1 {
		names := make([]string, len(signals))
		for i, s := range signals {
			names[i] = signalNames[s]
		}
		report(&ConsistencyViolation{
			Subject: name,
			Line:    syntax.Line(b),
			Reason:  "more than one value signal: " + strings.Join(names, ", "),
			Text:    b.Text(),
		})
	}

	has := func(s signal) bool {
		for _, x := range signals {
			if x == s {
				return true
			}
		}
		return false
	}

	switch {
	case has(signalInitializer):
		if constant {
			return model.Paradigm{Kind: model.DefinedConstant, Source: initializer}
		}
		return model.Paradigm{Kind: model.DefinedVariable, Source: initializer}
	case has(signalComputed) && !constant:
		return model.Paradigm{Kind: model.ComputedVariable, Source: body}
	case has(signalComputed):
		report(&ConsistencyViolation{
			Subject: name,
			Line:    syntax.Line(b),
			Reason:  "constant binding with a computed body",
			Text:    b.Text(),
		})
	case has(signalAccessors):
		if !getter {
			report(&ConsistencyViolation{
				Subject: name,
				Line:    syntax.Line(b),
				Reason:  "setter requirement without a getter",
				Text:    b.Text(),
			})
			return model.Paradigm{Kind: model.ProtocolGetterAndSetter}
		}
		if setter {
			return model.Paradigm{Kind: model.ProtocolGetterAndSetter}
		}
		return model.Paradigm{Kind: model.ProtocolGetter}
	}
	if constant {
		return model.Paradigm{Kind: model.UndefinedConstant}
	}
	return model.Paradigm{Kind: model.UndefinedVariable}
}

type accessorKind struct {
	getter, setter bool
	bodies         bool // a getter or setter has an implementation
}

// accessorsOf summarizes an accessor block. willSet and didSet observers do
// not contribute.
func accessorsOf(block syntax.Node) accessorKind {
	var k accessorKind
	for _, a := range syntax.ChildrenOf(block, syntax.KindAccessor) {
		kw := syntax.FirstChild(a, syntax.KindKeyword)
		if kw == nil {
			continue
		}
		var accessor bool
		switch kw.Text() {
		case "get", "_read", "unsafeAddress":
			k.getter, accessor = true, true
		case "set", "_modify", "unsafeMutableAddress":
			k.setter, accessor = true, true
		}
		if accessor && syntax.FirstChild(a, syntax.KindCodeBlock) != nil {
			k.bodies = true
		}
	}
	return k
}
