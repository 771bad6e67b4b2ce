package cycles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejo1307/swiftdecl/internal/extract"
	"github.com/dejo1307/swiftdecl/internal/index"
	"github.com/dejo1307/swiftdecl/internal/swiftparse"
)

// --- helpers ---

func makeIndex(t *testing.T, src string) *index.Index {
	t.Helper()
	f := swiftparse.Parse([]byte(src))
	require.Empty(t, f.Diagnostics)
	idx := index.New()
	idx.Add(*extract.File(f.Root, extract.WithFile("Types.swift")))
	return idx
}

// --- tests ---

func TestExplain(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		wantTitles []string
	}{
		{
			name: "no cycle",
			src:  "protocol P {}\nclass A: P {}\nclass B: A {}\n",
		},
		{
			name:       "two types",
			src:        "class A: B {}\nclass B: A {}\n",
			wantTitles: []string{"Inheritance cycle detected (2 types)"},
		},
		{
			name:       "self reference",
			src:        "protocol Loop: Loop {}\n",
			wantTitles: []string{"Type Loop inherits from itself"},
		},
		{
			name:       "through an extension",
			src:        "protocol P {}\nprotocol Q: P {}\nextension P: Q {}\n",
			wantTitles: []string{"Inheritance cycle detected (2 types)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insights, err := New().Explain(context.Background(), makeIndex(t, tt.src))
			require.NoError(t, err)

			var titles []string
			for _, in := range insights {
				titles = append(titles, in.Title)
			}
			assert.Equal(t, tt.wantTitles, titles)
		})
	}
}

func TestExplain_Evidence(t *testing.T) {
	insights, err := New().Explain(context.Background(), makeIndex(t, "class A: C {}\nclass B: A {}\nclass C: B {}\n"))
	require.NoError(t, err)
	require.Len(t, insights, 1)

	in := insights[0]
	assert.Equal(t, 1.0, in.Confidence)
	assert.Contains(t, in.Description, "A -> B -> C -> A")
	require.Len(t, in.Evidence, 3)
	assert.Equal(t, "B", in.Evidence[1].Declaration)
	assert.Equal(t, "Types.swift", in.Evidence[1].File)
	assert.Equal(t, 2, in.Evidence[1].Line)
}
