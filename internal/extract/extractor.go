package extract

import (
	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/syntax"
)

// AnyNestable builds an extractor that accepts whichever nestable declaration
// it meets first.
const AnyNestable model.Kind = "any"

// State is the lifecycle of an Extractor.
type State int

const (
	NotStarted State = iota
	InProgress
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case InProgress:
		return "in progress"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// Action tells the walker whether to descend into a node's children.
type Action int

const (
	VisitChildren Action = iota
	SkipChildren
)

// Extractor turns one nestable declaration subtree into records. It consumes
// enter and exit events for the subtree, records its subject on the first
// matching entry, collects members, and hands every nested declaration to a
// fresh Extractor seeded with the subject's path. An Extractor is single-use.
type Extractor struct {
	expected   model.Kind
	parentPath model.QualifiedPath
	opts       []Option
	options    options

	state   State
	walked  bool
	subject syntax.Node
	record  model.Declaration
	harvest model.Forest // nested declarations and members, in source order
}

// NewExtractor creates an extractor for a declaration of the given kind, or
// of any nestable kind when kind is AnyNestable.
func NewExtractor(kind model.Kind, parentPath model.QualifiedPath, opts ...Option) *Extractor {
	return &Extractor{
		expected:   kind,
		parentPath: parentPath,
		opts:       opts,
		options:    buildOptions(opts),
	}
}

// Extract runs a fresh AnyNestable extractor over n.
func Extract(n syntax.Node, parentPath model.QualifiedPath, opts ...Option) model.Forest {
	return NewExtractor(AnyNestable, parentPath, opts...).Walk(n)
}

// State returns the current lifecycle state.
func (e *Extractor) State() State {
	return e.state
}

// Walk drives the extractor over root and returns the harvested forest.
// Calling Walk twice on the same extractor is a contract violation.
func (e *Extractor) Walk(root syntax.Node) model.Forest {
	if e.walked {
		panic(&ContractViolation{
			Expected: string(e.expected),
			Found:    root.Kind(),
			Line:     syntax.Line(root),
			Reason:   "extractor already used",
		})
	}
	e.walked = true
	e.walk(root)
	return e.Forest()
}

func (e *Extractor) walk(n syntax.Node) {
	if e.Enter(n) == VisitChildren {
		for _, c := range n.Children() {
			e.walk(c)
		}
	}
	e.Exit(n)
}

// Enter handles the entry event for n.
func (e *Extractor) Enter(n syntax.Node) Action {
	kind, isNestable := nestable[n.Kind()]
	switch e.state {
	case NotStarted:
		if !isNestable {
			if n.Kind() == syntax.KindSourceFile {
				return VisitChildren
			}
			return SkipChildren
		}
		if e.expected != AnyNestable && kind != e.expected {
			panic(&ContractViolation{
				Expected: string(e.expected),
				Found:    n.Kind(),
				Name:     syntax.Name(n),
				Line:     syntax.Line(n),
				Reason:   "declaration kind not accepted by this extractor",
			})
		}
		e.subject = n
		e.record = declaration(n, kind, e.parentPath, e.options.file)
		e.state = InProgress
		return VisitChildren

	case InProgress:
		if isNestable {
			e.nest(n, kind)
			return SkipChildren
		}
		e.member(n)
		if n.Kind() == syntax.KindMemberBlock {
			return VisitChildren
		}
		return SkipChildren

	default:
		if isNestable {
			panic(&ContractViolation{
				Expected: string(e.expected),
				Found:    n.Kind(),
				Name:     syntax.Name(n),
				Line:     syntax.Line(n),
				Reason:   "second top-level declaration after " + e.record.QualifiedName() + " closed",
			})
		}
		return SkipChildren
	}
}

// Exit handles the exit event for n. The subject's own exit finishes the
// extractor.
func (e *Extractor) Exit(n syntax.Node) {
	if e.state == InProgress && n == e.subject {
		e.state = Finished
	}
}

func (e *Extractor) nest(n syntax.Node, kind model.Kind) {
	child := NewExtractor(kind, e.record.Path(), e.opts...)
	forest := child.Walk(n)
	e.record.Nested = append(e.record.Nested, child.record)
	e.harvest.Merge(forest)
}

// member records a non-nestable child of the member block under the
// subject's path.
func (e *Extractor) member(n syntax.Node) {
	path := e.record.Path()
	switch n.Kind() {
	case syntax.KindTypealiasDecl:
		t := Typealias(n, path)
		e.record.Typealiases = append(e.record.Typealiases, t)
		e.harvest.Typealiases = append(e.harvest.Typealiases, t)
	case syntax.KindAssociatedTypeDecl:
		if e.record.Kind != model.KindProtocol {
			e.options.reporter(&ConsistencyViolation{
				Subject: syntax.Name(n),
				Line:    syntax.Line(n),
				Reason:  "associatedtype outside a protocol",
				Text:    n.Text(),
			})
			return
		}
		a := AssociatedType(n, path)
		e.record.AssociatedTypes = append(e.record.AssociatedTypes, a)
		e.harvest.AssociatedTypes = append(e.harvest.AssociatedTypes, a)
	case syntax.KindVariableDecl:
		props := Properties(n, path, e.options.reporter)
		e.record.Properties = append(e.record.Properties, props...)
		e.harvest.Properties = append(e.harvest.Properties, props...)
	case syntax.KindFunctionDecl:
		f := Function(n, path)
		e.record.Functions = append(e.record.Functions, f)
		e.harvest.Functions = append(e.harvest.Functions, f)
	case syntax.KindInitializerDecl:
		i := Initializer(n, path)
		e.record.Initializers = append(e.record.Initializers, i)
		e.harvest.Initializers = append(e.harvest.Initializers, i)
	case syntax.KindEnumCaseDecl:
		cases := EnumCases(n, path)
		e.record.EnumCases = append(e.record.EnumCases, cases...)
		e.harvest.EnumCases = append(e.harvest.EnumCases, cases...)
	}
}

// Record returns the subject's record. It is the zero Declaration until the
// extractor has started.
func (e *Extractor) Record() model.Declaration {
	return e.record
}

// Forest returns the subject's record followed by everything harvested from
// its members and nested declarations. It is empty when no subject was found.
func (e *Extractor) Forest() model.Forest {
	var f model.Forest
	if e.state == NotStarted {
		return f
	}
	f.Add(e.record)
	f.Merge(e.harvest)
	return f
}
