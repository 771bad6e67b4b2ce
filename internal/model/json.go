package model

import (
	"encoding/json"

	"github.com/dejo1307/swiftdecl/internal/typedesc"
)

// Decoding support. Records carry typedesc.TypeDescription interface fields,
// which encoding/json cannot populate on its own; each record shadows those
// fields with typedesc.Holder values and copies them back after decoding.

// UnmarshalJSON implements json.Unmarshaler for Declaration.
func (d *Declaration) UnmarshalJSON(data []byte) error {
	type Alias Declaration
	aux := struct {
		*Alias
		ExtendedType   *typedesc.Holder  `json:"extended_type,omitempty"`
		InheritedTypes []typedesc.Holder `json:"inherited_types"`
	}{Alias: (*Alias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d.ExtendedType = aux.ExtendedType.Get()
	d.InheritedTypes = typedesc.Unwrap(aux.InheritedTypes)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for GenericParameter.
func (g *GenericParameter) UnmarshalJSON(data []byte) error {
	type Alias GenericParameter
	aux := struct {
		*Alias
		Bound *typedesc.Holder `json:"bound,omitempty"`
	}{Alias: (*Alias)(g)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	g.Bound = aux.Bound.Get()
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for GenericRequirement.
func (r *GenericRequirement) UnmarshalJSON(data []byte) error {
	type Alias GenericRequirement
	aux := struct {
		*Alias
		Left  *typedesc.Holder `json:"left"`
		Right *typedesc.Holder `json:"right"`
	}{Alias: (*Alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Left = aux.Left.Get()
	r.Right = aux.Right.Get()
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Typealias.
func (t *Typealias) UnmarshalJSON(data []byte) error {
	type Alias Typealias
	aux := struct {
		*Alias
		Initializer *typedesc.Holder `json:"initializer,omitempty"`
	}{Alias: (*Alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Initializer = aux.Initializer.Get()
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for AssociatedType.
func (a *AssociatedType) UnmarshalJSON(data []byte) error {
	type Alias AssociatedType
	aux := struct {
		*Alias
		InheritedTypes []typedesc.Holder `json:"inherited_types,omitempty"`
		Initializer    *typedesc.Holder  `json:"initializer,omitempty"`
	}{Alias: (*Alias)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.InheritedTypes = typedesc.Unwrap(aux.InheritedTypes)
	a.Initializer = aux.Initializer.Get()
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Property.
func (p *Property) UnmarshalJSON(data []byte) error {
	type Alias Property
	aux := struct {
		*Alias
		DeclaredType *typedesc.Holder `json:"declared_type,omitempty"`
	}{Alias: (*Alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.DeclaredType = aux.DeclaredType.Get()
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Parameter.
func (p *Parameter) UnmarshalJSON(data []byte) error {
	type Alias Parameter
	aux := struct {
		*Alias
		Type *typedesc.Holder `json:"type"`
	}{Alias: (*Alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Type = aux.Type.Get()
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Function.
func (f *Function) UnmarshalJSON(data []byte) error {
	type Alias Function
	aux := struct {
		*Alias
		ReturnType *typedesc.Holder `json:"return_type,omitempty"`
	}{Alias: (*Alias)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	f.ReturnType = aux.ReturnType.Get()
	return nil
}
