package scene

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"three-spheres", "Three Spheres"},
		{"glass_bubble", "Glass Bubble"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name: "complete_metadata.yaml",
			content: `# Scene: Three Spheres
# Description: Glass, diffuse and metal
# Group: Examples

camera: {look_from: [0, 0, 0], look_at: [0, 0, -1]}`,
			expected: SceneInfo{
				Name:        "Three Spheres",
				DisplayName: "Three Spheres",
				Description: "Glass, diffuse and metal",
				Group:       "Examples",
				Type:        TypeFile,
			},
		},
		{
			name: "no_metadata.yaml",
			content: `camera: {look_from: [0, 0, 0], look_at: [0, 0, -1]}
# Scene: Ignored after the header`,
			expected: SceneInfo{
				Name:        "No Metadata",
				DisplayName: "No Metadata",
				Group:       "Scene Files",
				Type:        TypeFile,
			},
		},
		{
			name: "tight_comments.yml",
			content: `#Scene: Tight
#Description:   Extra spaces

spheres: []`,
			expected: SceneInfo{
				Name:        "Tight",
				DisplayName: "Tight",
				Description: "Extra spaces",
				Group:       "Scene Files",
				Type:        TypeFile,
			},
		},
	}

	dir := t.TempDir()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			if err := os.WriteFile(path, []byte(tc.content), 0o600); err != nil {
				t.Fatalf("Failed to write test file: %v", err)
			}

			info, err := ParseSceneMetadata(path)
			if err != nil {
				t.Fatalf("ParseSceneMetadata() error: %v", err)
			}

			tc.expected.ID = "file:" + path
			tc.expected.FilePath = path
			if info != tc.expected {
				t.Errorf("ParseSceneMetadata() = %+v, want %+v", info, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata_MissingFile(t *testing.T) {
	if _, err := ParseSceneMetadata(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestListSceneFiles(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()

	scenes, err := ListSceneFiles(filepath.Join(t.TempDir(), "does-not-exist"), logger)
	if err != nil {
		t.Fatalf("ListSceneFiles() error: %v", err)
	}
	if scenes == nil || len(scenes) != 0 {
		t.Errorf("Expected empty non-nil list for missing directory, got %v", scenes)
	}

	dir := t.TempDir()
	for name, content := range map[string]string{
		"b.yaml":    "# Scene: Bravo\n",
		"a.yml":     "# Scene: Alpha\n",
		"notes.txt": "# Scene: Not A Scene\n",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	scenes, err = ListSceneFiles(dir, logger)
	if err != nil {
		t.Fatalf("ListSceneFiles() error: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("Expected 2 scene files, got %d", len(scenes))
	}
	if scenes[0].DisplayName != "Alpha" || scenes[1].DisplayName != "Bravo" {
		t.Errorf("Expected scenes sorted by display name, got %q, %q", scenes[0].DisplayName, scenes[1].DisplayName)
	}
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte("# Group: Extras\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	response, err := ListAllScenes(dir, zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatalf("ListAllScenes() error: %v", err)
	}

	if len(response.Groups) != 2 {
		t.Fatalf("Expected built-in and Extras groups, got %d groups", len(response.Groups))
	}
	if response.Groups[0].Name != "Built-in Scenes" {
		t.Errorf("Expected built-in group first, got %q", response.Groups[0].Name)
	}
	if len(response.Groups[0].Scenes) != len(Names()) {
		t.Errorf("Built-in scenes count = %d, want %d", len(response.Groups[0].Scenes), len(Names()))
	}
	if response.Groups[1].Name != "Extras" {
		t.Errorf("Expected Extras group, got %q", response.Groups[1].Name)
	}

	for _, group := range response.Groups {
		for _, scene := range group.Scenes {
			if scene.ID == "" || scene.DisplayName == "" {
				t.Errorf("Scene missing ID or display name: %+v", scene)
			}
			if scene.Type == TypeFile && !strings.HasPrefix(scene.ID, "file:") {
				t.Errorf("File scene ID should start with 'file:': %s", scene.ID)
			}
		}
	}
}

func TestCreate_Builtins(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			s, err := Create(name)
			if err != nil {
				t.Fatalf("Create(%q) error: %v", name, err)
			}
			if s.GetPrimitiveCount() == 0 {
				t.Error("Expected scene to contain shapes")
			}
			if err := s.SamplingConfig.Validate(); err != nil {
				t.Errorf("Invalid sampling config: %v", err)
			}
		})
	}
}

func TestCreate_Unknown(t *testing.T) {
	_, err := Create("no-such-scene")
	if !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
}

func TestCreate_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.yaml")
	content := `camera:
  look_from: [0, 0, 0]
  look_at: [0, 0, -1]
  vfov: 90
materials:
  grey: {type: lambertian, albedo: [0.5, 0.5, 0.5]}
spheres:
  - {center: [0, 0, -1], radius: 0.5, material: grey}
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{path, "file:" + path} {
		s, err := Create(name)
		if err != nil {
			t.Fatalf("Create(%q) error: %v", name, err)
		}
		if s.GetPrimitiveCount() != 1 {
			t.Errorf("Expected 1 sphere, got %d", s.GetPrimitiveCount())
		}
	}
}

func TestBundledSceneFiles(t *testing.T) {
	infos, err := ListSceneFiles(filepath.Join("..", "..", "scenes"), zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatalf("ListSceneFiles failed: %v", err)
	}
	if len(infos) == 0 {
		t.Fatal("Expected bundled scene files")
	}

	for _, info := range infos {
		t.Run(info.Name, func(t *testing.T) {
			s, err := Create(info.ID)
			if err != nil {
				t.Fatalf("Create(%q) failed: %v", info.ID, err)
			}
			if s.GetPrimitiveCount() == 0 {
				t.Error("Expected scene to contain spheres")
			}
		})
	}
}
