package layers

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

func makeIndex(t *testing.T, files map[string]string) *index.Index {
	t.Helper()
	idx := index.New()
	for path, src := range files {
		f := swiftparse.Parse([]byte(src))
		require.Empty(t, f.Diagnostics, path)
		idx.Add(*extract.File(f.Root, extract.WithFile(path)))
	}
	return idx
}

var cleanApp = map[string]string{
	"App/Domain/User.swift":               "struct User: Identifiable {}\nclass Account: BaseViewController {}\n",
	"App/Domain/Repository.swift":         "protocol Repository {}\n",
	"App/Services/UserService.swift":      "class UserService: Repository {}\n",
	"App/UI/BaseViewController.swift":     "class BaseViewController: UIViewController {}\n",
	"App/UI/ProfileView.swift":            "struct ProfileView: View {}\n",
	"App/UI/ProfileView+Repository.swift": "extension ProfileView: Repository {}\n",
}

// --- Unit tests ---

func TestMatchesLayer(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		patterns []string
		want     bool
	}{
		{"middle segment matches", "App/Domain/User", []string{"domain"}, true},
		{"exact segment not substring", "App/DomainKit", []string{"domain"}, false},
		{"case insensitive", "Features/ViewModels", []string{"viewmodels"}, true},
		{"no match", "Sources/Foo/Bar", []string{"domain"}, false},
		{"first segment matches", "UI/Components", []string{"ui"}, true},
		{"multiple patterns", "App/Models", []string{"model", "models"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesLayer(tt.path, tt.patterns))
		})
	}
}

func TestFileDir(t *testing.T) {
	assert.Equal(t, "App/UI", fileDir("App/UI/View.swift"))
	assert.Equal(t, ".", fileDir("Package.swift"))
}

func TestDetectPatterns(t *testing.T) {
	e := New()

	tests := []struct {
		name    string
		modules []string
		want    string
		layers  int
	}{
		{"clean", []string{"App/Domain", "App/Services", "App/UI", "App/Networking"}, "clean", 4},
		{"mvvm", []string{"App/Models", "App/ViewModels", "App/Views"}, "mvvm", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best := e.bestPattern(e.detectPatterns(tt.modules))
			require.NotNil(t, best)
			assert.Equal(t, tt.want, best.Name)
			assert.Len(t, best.Layers, tt.layers)
			assert.Len(t, best.Modules, len(tt.modules))
			assert.LessOrEqual(t, best.Confidence, 1.0)
		})
	}
}

func TestDetectPatterns_BelowThreshold(t *testing.T) {
	e := New()
	// One layer is never a pattern.
	assert.Empty(t, e.detectPatterns([]string{"App/Models", "App/Misc", "App/Other"}))
	assert.Empty(t, e.detectPatterns([]string{"Sources/App"}))
}

func TestBestPattern_Empty(t *testing.T) {
	assert.Nil(t, New().bestPattern(nil))
}

func TestExplain(t *testing.T) {
	insights, err := New().Explain(context.Background(), makeIndex(t, cleanApp))
	require.NoError(t, err)
	require.Len(t, insights, 2)

	pattern := insights[0]
	assert.Equal(t, "Architecture pattern: clean", pattern.Title)
	assert.InDelta(t, 0.84, pattern.Confidence, 0.001)
	require.Len(t, pattern.Evidence, 3)
	assert.Equal(t, "App/Domain", pattern.Evidence[0].File)
	assert.Equal(t, `directory "App/UI" maps to layer "ui"`, pattern.Evidence[2].Detail)

	violation := insights[1]
	assert.Equal(t, "Layer violation: domain -> ui", violation.Title)
	assert.Contains(t, violation.Description, `class "Account" in "App/Domain"`)
	assert.Contains(t, violation.Description, `class "BaseViewController" in "App/UI"`)
	require.Len(t, violation.Evidence, 2)
	assert.Equal(t, "App/Domain/User.swift", violation.Evidence[0].File)
	assert.Equal(t, 2, violation.Evidence[0].Line)
	assert.Equal(t, "Account", violation.Evidence[0].Declaration)
	assert.Equal(t, "BaseViewController", violation.Evidence[1].Declaration)
}

func TestExplain_OuterDependsOnInner(t *testing.T) {
	files := map[string]string{
		"App/Models/Item.swift":              "protocol Item {}\n",
		"App/ViewModels/ItemViewModel.swift": "class ItemViewModel: Item {}\n",
		"App/Views/ItemView.swift":           "class ItemView: ItemViewModel {}\n",
	}
	insights, err := New().Explain(context.Background(), makeIndex(t, files))
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, "Architecture pattern: mvvm", insights[0].Title)
}

func TestExplain_NoModules(t *testing.T) {
	insights, err := New().Explain(context.Background(), index.New())
	require.NoError(t, err)
	assert.Empty(t, insights)
}
