package typedesc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// JSON serialization support. Every variant encodes as an object with a
// "caseDescription" discriminator followed by its per-case fields.

// UnknownCaseError is returned when decoding meets an unrecognized
// discriminator.
type UnknownCaseError struct {
	Case string
}

func (e *UnknownCaseError) Error() string {
	return fmt.Sprintf("unknown type description case %q", e.Case)
}

// MarshalJSON implements json.Marshaler for Simple.
func (t *Simple) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Case     Case              `json:"caseDescription"`
		Text     string            `json:"text"`
		Generics []TypeDescription `json:"generics,omitempty"`
	}{
		Case:     CaseSimple,
		Text:     t.Name,
		Generics: t.Generics,
	})
}

// MarshalJSON implements json.Marshaler for Member.
func (t *Member) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Case     Case              `json:"caseDescription"`
		Text     string            `json:"text"`
		Base     TypeDescription   `json:"typeDescription"`
		Generics []TypeDescription `json:"generics,omitempty"`
	}{
		Case:     CaseMember,
		Text:     t.Name,
		Base:     t.Base,
		Generics: t.Generics,
	})
}

// MarshalJSON implements json.Marshaler for Composition.
func (t *Composition) MarshalJSON() ([]byte, error) {
	return marshalList(CaseComposition, t.Types)
}

// MarshalJSON implements json.Marshaler for Optional.
func (t *Optional) MarshalJSON() ([]byte, error) {
	return marshalWrapped(CaseOptional, t.Wrapped)
}

// MarshalJSON implements json.Marshaler for ImplicitlyUnwrappedOptional.
func (t *ImplicitlyUnwrappedOptional) MarshalJSON() ([]byte, error) {
	return marshalWrapped(CaseImplicitlyUnwrappedOptional, t.Wrapped)
}

// MarshalJSON implements json.Marshaler for Array.
func (t *Array) MarshalJSON() ([]byte, error) {
	return marshalWrapped(CaseArray, t.Element)
}

// MarshalJSON implements json.Marshaler for Dictionary.
func (t *Dictionary) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Case  Case            `json:"caseDescription"`
		Key   TypeDescription `json:"typeDescriptionKey"`
		Value TypeDescription `json:"typeDescriptionValue"`
	}{
		Case:  CaseDictionary,
		Key:   t.Key,
		Value: t.Value,
	})
}

// MarshalJSON implements json.Marshaler for Tuple.
func (t *Tuple) MarshalJSON() ([]byte, error) {
	return marshalList(CaseTuple, t.Elements)
}

// MarshalJSON implements json.Marshaler for Unknown.
func (t *Unknown) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Case Case   `json:"caseDescription"`
		Text string `json:"text"`
	}{
		Case: CaseUnknown,
		Text: t.Text,
	})
}

func marshalWrapped(c Case, wrapped TypeDescription) ([]byte, error) {
	return json.Marshal(&struct {
		Case Case            `json:"caseDescription"`
		Type TypeDescription `json:"typeDescription"`
	}{
		Case: c,
		Type: wrapped,
	})
}

func marshalList(c Case, types []TypeDescription) ([]byte, error) {
	if types == nil {
		types = []TypeDescription{}
	}
	return json.Marshal(&struct {
		Case  Case              `json:"caseDescription"`
		Types []TypeDescription `json:"typeDescriptions"`
	}{
		Case:  c,
		Types: types,
	})
}

// Marshal encodes t.
func Marshal(t TypeDescription) ([]byte, error) {
	if t == nil {
		return nil, errors.New("cannot marshal nil type description")
	}
	return t.MarshalJSON()
}

// envelope holds the union of all per-case fields.
type envelope struct {
	Case     *string           `json:"caseDescription"`
	Text     *string           `json:"text"`
	Type     json.RawMessage   `json:"typeDescription"`
	Types    []json.RawMessage `json:"typeDescriptions"`
	Key      json.RawMessage   `json:"typeDescriptionKey"`
	Value    json.RawMessage   `json:"typeDescriptionValue"`
	Generics []json.RawMessage `json:"generics"`
}

// Unmarshal decodes a description. An unrecognized discriminator yields an
// *UnknownCaseError; structurally invalid payloads yield a wrapped error.
func Unmarshal(data []byte) (TypeDescription, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Errorf("decoding type description: %w", err)
	}
	if env.Case == nil {
		return nil, errors.New(`type description is missing "caseDescription"`)
	}

	c := Case(*env.Case)
	switch c {
	case CaseSimple:
		text, err := env.text(c)
		if err != nil {
			return nil, err
		}
		generics, err := decodeList(env.Generics, c)
		if err != nil {
			return nil, err
		}
		return &Simple{Name: text, Generics: generics}, nil
	case CaseMember:
		text, err := env.text(c)
		if err != nil {
			return nil, err
		}
		base, err := decodeField(env.Type, c, "typeDescription")
		if err != nil {
			return nil, err
		}
		generics, err := decodeList(env.Generics, c)
		if err != nil {
			return nil, err
		}
		return &Member{Name: text, Base: base, Generics: generics}, nil
	case CaseComposition, CaseTuple:
		if env.Types == nil {
			return nil, errors.Errorf(`%s type description is missing "typeDescriptions"`, c)
		}
		types, err := decodeList(env.Types, c)
		if err != nil {
			return nil, err
		}
		if c == CaseTuple {
			return &Tuple{Elements: types}, nil
		}
		return &Composition{Types: types}, nil
	case CaseOptional, CaseImplicitlyUnwrappedOptional, CaseArray:
		inner, err := decodeField(env.Type, c, "typeDescription")
		if err != nil {
			return nil, err
		}
		switch c {
		case CaseOptional:
			return &Optional{Wrapped: inner}, nil
		case CaseImplicitlyUnwrappedOptional:
			return &ImplicitlyUnwrappedOptional{Wrapped: inner}, nil
		default:
			return &Array{Element: inner}, nil
		}
	case CaseDictionary:
		key, err := decodeField(env.Key, c, "typeDescriptionKey")
		if err != nil {
			return nil, err
		}
		value, err := decodeField(env.Value, c, "typeDescriptionValue")
		if err != nil {
			return nil, err
		}
		return &Dictionary{Key: key, Value: value}, nil
	case CaseUnknown:
		text, err := env.text(c)
		if err != nil {
			return nil, err
		}
		return &Unknown{Text: text}, nil
	}
	return nil, &UnknownCaseError{Case: *env.Case}
}

func (env *envelope) text(c Case) (string, error) {
	if env.Text == nil {
		return "", errors.Errorf(`%s type description is missing "text"`, c)
	}
	return *env.Text, nil
}

func decodeField(raw json.RawMessage, c Case, field string) (TypeDescription, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, errors.Errorf("%s type description is missing %q", c, field)
	}
	t, err := Unmarshal(raw)
	if err != nil {
		return nil, errors.Errorf("%s.%s: %w", c, field, err)
	}
	return t, nil
}

func decodeList(raws []json.RawMessage, c Case) ([]TypeDescription, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	out := make([]TypeDescription, 0, len(raws))
	for i, raw := range raws {
		t, err := Unmarshal(raw)
		if err != nil {
			return nil, errors.Errorf("%s[%d]: %w", c, i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Holder adapts a TypeDescription field for encoding/json decoding, which
// cannot decode into an interface directly.
type Holder struct {
	TypeDescription
}

// MarshalJSON implements json.Marshaler.
func (h Holder) MarshalJSON() ([]byte, error) {
	if h.TypeDescription == nil {
		return []byte("null"), nil
	}
	return h.TypeDescription.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *Holder) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		h.TypeDescription = nil
		return nil
	}
	t, err := Unmarshal(data)
	if err != nil {
		return err
	}
	h.TypeDescription = t
	return nil
}

// Get returns the held description, or nil for a nil holder.
func (h *Holder) Get() TypeDescription {
	if h == nil {
		return nil
	}
	return h.TypeDescription
}

// Unwrap converts decoded holders back into descriptions.
func Unwrap(holders []Holder) []TypeDescription {
	if holders == nil {
		return nil
	}
	out := make([]TypeDescription, len(holders))
	for i, h := range holders {
		out[i] = h.TypeDescription
	}
	return out
}
