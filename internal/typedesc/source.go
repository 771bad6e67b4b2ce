package typedesc

import "strings"

// AsSource renders t as type syntax that parses back to an equal
// description, e.g. Optional(Simple("Int")) renders as "Int?".
func AsSource(t TypeDescription) string {
	var b strings.Builder
	render(&b, t, false)
	return b.String()
}

// String implementations make descriptions readable in logs and test output.
func (t *Simple) String() string                      { return AsSource(t) }
func (t *Member) String() string                      { return AsSource(t) }
func (t *Composition) String() string                 { return AsSource(t) }
func (t *Optional) String() string                    { return AsSource(t) }
func (t *ImplicitlyUnwrappedOptional) String() string { return AsSource(t) }
func (t *Array) String() string                       { return AsSource(t) }
func (t *Dictionary) String() string                  { return AsSource(t) }
func (t *Tuple) String() string                       { return AsSource(t) }
func (t *Unknown) String() string                     { return AsSource(t) }

// render writes t. operand is set when t appears as the operand of a postfix
// form, a member base or a composition element, where loosely binding shapes
// need parentheses.
func render(b *strings.Builder, t TypeDescription, operand bool) {
	switch x := t.(type) {
	case nil:
	case *Simple:
		b.WriteString(x.Name)
		renderGenerics(b, x.Generics)
	case *Member:
		render(b, x.Base, true)
		b.WriteByte('.')
		b.WriteString(x.Name)
		renderGenerics(b, x.Generics)
	case *Composition:
		if operand {
			b.WriteByte('(')
		}
		for i, el := range x.Types {
			if i > 0 {
				b.WriteString(" & ")
			}
			render(b, el, true)
		}
		if operand {
			b.WriteByte(')')
		}
	case *Optional:
		render(b, x.Wrapped, true)
		b.WriteByte('?')
	case *ImplicitlyUnwrappedOptional:
		render(b, x.Wrapped, true)
		b.WriteByte('!')
	case *Array:
		b.WriteByte('[')
		render(b, x.Element, false)
		b.WriteByte(']')
	case *Dictionary:
		b.WriteByte('[')
		render(b, x.Key, false)
		b.WriteString(": ")
		render(b, x.Value, false)
		b.WriteByte(']')
	case *Tuple:
		b.WriteByte('(')
		for i, el := range x.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			render(b, el, false)
		}
		b.WriteByte(')')
	case *Unknown:
		if operand && bindsLoosely(x.Text) {
			b.WriteByte('(')
			b.WriteString(x.Text)
			b.WriteByte(')')
			return
		}
		b.WriteString(x.Text)
	}
}

func renderGenerics(b *strings.Builder, generics []TypeDescription) {
	if len(generics) == 0 {
		return
	}
	b.WriteByte('<')
	for i, g := range generics {
		if i > 0 {
			b.WriteString(", ")
		}
		render(b, g, false)
	}
	b.WriteByte('>')
}

// bindsLoosely reports whether raw type text would change meaning when
// followed by a postfix operator: function types, some/any, attributed types.
func bindsLoosely(text string) bool {
	return strings.ContainsAny(text, " \t\r\n&") ||
		strings.Contains(text, "->") ||
		strings.HasPrefix(text, "@")
}
