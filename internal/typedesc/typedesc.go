// Package typedesc models type expressions as a closed sum type.
//
// Every type expression maps to exactly one variant. Shapes without a
// structured variant (function types, opaque and existential types,
// metatypes, labeled tuples) become Unknown carrying the literal source text,
// so no information is dropped.
package typedesc

import "encoding/json"

// Case is the discriminator of a TypeDescription variant. It is also the
// wire tag used by the codec.
type Case string

const (
	CaseSimple                      Case = "simple"
	CaseMember                      Case = "member"
	CaseComposition                 Case = "composition"
	CaseOptional                    Case = "optional"
	CaseImplicitlyUnwrappedOptional Case = "implicitlyUnwrappedOptional"
	CaseArray                       Case = "array"
	CaseDictionary                  Case = "dictionary"
	CaseTuple                       Case = "tuple"
	CaseUnknown                     Case = "unknown"
)

// TypeDescription is implemented by the variant types in this package only.
type TypeDescription interface {
	json.Marshaler
	Case() Case
	typeDescription()
}

type variant struct{}

func (variant) typeDescription() {}

// Simple is a plain named type such as Int or Array<Element>.
type Simple struct {
	variant
	Name     string
	Generics []TypeDescription
}

func (*Simple) Case() Case { return CaseSimple }

// Member is a name qualified by a base type, as in Swift.Int.
type Member struct {
	variant
	Name     string
	Base     TypeDescription
	Generics []TypeDescription
}

func (*Member) Case() Case { return CaseMember }

// Composition is an &-joined protocol composition.
type Composition struct {
	variant
	Types []TypeDescription
}

func (*Composition) Case() Case { return CaseComposition }

// Optional is T?.
type Optional struct {
	variant
	Wrapped TypeDescription
}

func (*Optional) Case() Case { return CaseOptional }

// ImplicitlyUnwrappedOptional is T!.
type ImplicitlyUnwrappedOptional struct {
	variant
	Wrapped TypeDescription
}

func (*ImplicitlyUnwrappedOptional) Case() Case { return CaseImplicitlyUnwrappedOptional }

// Array is [T].
type Array struct {
	variant
	Element TypeDescription
}

func (*Array) Case() Case { return CaseArray }

// Dictionary is [K: V].
type Dictionary struct {
	variant
	Key   TypeDescription
	Value TypeDescription
}

func (*Dictionary) Case() Case { return CaseDictionary }

// Tuple is an unlabeled tuple (A, B). The empty tuple () is a Tuple with no
// elements.
type Tuple struct {
	variant
	Elements []TypeDescription
}

func (*Tuple) Case() Case { return CaseTuple }

// Unknown holds the source text of a type expression with no structured
// variant.
type Unknown struct {
	variant
	Text string
}

func (*Unknown) Case() Case { return CaseUnknown }

func NewSimple(name string, generics ...TypeDescription) *Simple {
	return &Simple{Name: name, Generics: generics}
}

func NewMember(base TypeDescription, name string, generics ...TypeDescription) *Member {
	return &Member{Name: name, Base: base, Generics: generics}
}

func NewComposition(types ...TypeDescription) *Composition {
	return &Composition{Types: types}
}

func NewOptional(wrapped TypeDescription) *Optional {
	return &Optional{Wrapped: wrapped}
}

func NewImplicitlyUnwrappedOptional(wrapped TypeDescription) *ImplicitlyUnwrappedOptional {
	return &ImplicitlyUnwrappedOptional{Wrapped: wrapped}
}

func NewArray(element TypeDescription) *Array {
	return &Array{Element: element}
}

func NewDictionary(key, value TypeDescription) *Dictionary {
	return &Dictionary{Key: key, Value: value}
}

func NewTuple(elements ...TypeDescription) *Tuple {
	return &Tuple{Elements: elements}
}

func NewUnknown(text string) *Unknown {
	return &Unknown{Text: text}
}

// Equal reports whether a and b describe the same type structurally.
func Equal(a, b TypeDescription) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Case() != b.Case() {
		return false
	}
	switch x := a.(type) {
	case *Simple:
		y := b.(*Simple)
		return x.Name == y.Name && equalAll(x.Generics, y.Generics)
	case *Member:
		y := b.(*Member)
		return x.Name == y.Name && Equal(x.Base, y.Base) && equalAll(x.Generics, y.Generics)
	case *Composition:
		return equalAll(x.Types, b.(*Composition).Types)
	case *Optional:
		return Equal(x.Wrapped, b.(*Optional).Wrapped)
	case *ImplicitlyUnwrappedOptional:
		return Equal(x.Wrapped, b.(*ImplicitlyUnwrappedOptional).Wrapped)
	case *Array:
		return Equal(x.Element, b.(*Array).Element)
	case *Dictionary:
		y := b.(*Dictionary)
		return Equal(x.Key, y.Key) && Equal(x.Value, y.Value)
	case *Tuple:
		return equalAll(x.Elements, b.(*Tuple).Elements)
	case *Unknown:
		return x.Text == b.(*Unknown).Text
	}
	return false
}

func equalAll(a, b []TypeDescription) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Name returns the unqualified name a description refers to, looking through
// optionals and generic arguments. It returns "" for structural types.
func Name(t TypeDescription) string {
	switch x := t.(type) {
	case *Simple:
		return x.Name
	case *Member:
		return x.Name
	case *Optional:
		return Name(x.Wrapped)
	case *ImplicitlyUnwrappedOptional:
		return Name(x.Wrapped)
	}
	return ""
}
