package modifier

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   Set
	}{
		{"empty", nil, 0},
		{"access", []string{"public"}, Public},
		{"compound setter", []string{"public", "private(set)"}, Public | PrivateSet},
		{"compound with spaces", []string{"internal( set )"}, InternalSet},
		{"class is static", []string{"class", "override"}, Static | Override},
		{"unknown dropped", []string{"final", "lazy", "mutating", "open"}, Open},
		{"initializer", []string{"required", "convenience"}, Required | Convenience},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.tokens...))
		})
	}
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, Internal|Instance, Parse().WithDeclarationDefaults())
	assert.Equal(t, Private|Static, Parse("private", "static").WithDeclarationDefaults())
	assert.Equal(t, Public|Instance|PublicSet, Parse("public", "public(set)").WithDeclarationDefaults())

	assert.Equal(t, Internal|Instance|Designated, Parse().WithInitializerDefaults())
	assert.Equal(t, Public|Instance|Convenience, Parse("public", "convenience").WithInitializerDefaults())
	assert.Equal(t, Internal|Instance|Required|Designated, Parse("required").WithInitializerDefaults())
}

func TestAccessAndHas(t *testing.T) {
	s := Parse("fileprivate", "static", "private(set)")
	assert.Equal(t, FilePrivate, s.Access())
	assert.True(t, s.Has(Static|PrivateSet))
	assert.False(t, s.Has(Static|Instance))
	assert.Equal(t, Set(0), Parse("static").Access())
}

func TestStrings(t *testing.T) {
	s := Parse("static", "public", "private(set)")
	assert.Equal(t, []string{"public", "private(set)", "static"}, s.Strings())
	assert.Equal(t, "public private(set) static", s.String())
	assert.Empty(t, Set(0).Strings())
}

func TestJSON(t *testing.T) {
	s := Parse("open", "override").WithDeclarationDefaults()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["open","instance","override"]`, string(data))

	var back Set
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, back)

	assert.Error(t, json.Unmarshal([]byte(`["final"]`), &back))
	assert.Error(t, json.Unmarshal([]byte(`"public"`), &back))
}

func TestSet_YAMLRoundTrip(t *testing.T) {
	in := Parse("public", "private(set)", "static")
	data, err := yaml.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, "- public\n- private(set)\n- static\n", string(data))

	var out Set
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	require.Error(t, yaml.Unmarshal([]byte("[mutating]"), &out))
}
