package loaders

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/aliabbas299792/ray-tracer/pkg/core"
)

// Material type names accepted in scene files
const (
	MaterialLambertian = "lambertian"
	MaterialHemisphere = "hemisphere"
	MaterialMetal      = "metal"
	MaterialDielectric = "dielectric"
)

// ErrInvalidSceneFile is returned for scene documents that cannot describe a renderable scene
var ErrInvalidSceneFile = errors.New("invalid scene file")

// SceneFile is the parsed form of a YAML scene document
type SceneFile struct {
	Camera     CameraSpec              `yaml:"camera"`
	Sampling   SamplingSpec            `yaml:"sampling"`
	Background *BackgroundSpec         `yaml:"background"`
	Materials  map[string]MaterialSpec `yaml:"materials"`
	Spheres    []SphereSpec            `yaml:"spheres"`
}

// CameraSpec describes the camera block
type CameraSpec struct {
	LookFrom      Vector  `yaml:"look_from"`
	LookAt        Vector  `yaml:"look_at"`
	Up            *Vector `yaml:"up"`
	VFov          float64 `yaml:"vfov"`
	AspectRatio   float64 `yaml:"aspect_ratio"`
	Aperture      float64 `yaml:"aperture"`
	FocusDistance float64 `yaml:"focus_distance"`
}

// SamplingSpec describes the sampling block. Zero values fall back to scene defaults.
type SamplingSpec struct {
	Width           int `yaml:"width"`
	Height          int `yaml:"height"`
	SamplesPerPixel int `yaml:"samples_per_pixel"`
	MaxDepth        int `yaml:"max_depth"`
}

// BackgroundSpec describes the sky gradient
type BackgroundSpec struct {
	Top    Color `yaml:"top"`
	Bottom Color `yaml:"bottom"`
}

// MaterialSpec describes a named material that spheres can share
type MaterialSpec struct {
	Type            string  `yaml:"type"`
	Albedo          Color   `yaml:"albedo"`
	Fuzz            float64 `yaml:"fuzz"`
	RefractiveIndex float64 `yaml:"refractive_index"`
}

// SphereSpec places a sphere using a named material
type SphereSpec struct {
	Center   Vector  `yaml:"center"`
	Radius   float64 `yaml:"radius"`
	Material string  `yaml:"material"`
}

// Vector is a three component YAML sequence
type Vector core.Vec3

// Vec3 returns the vector as a core.Vec3
func (v Vector) Vec3() core.Vec3 {
	return core.Vec3(v)
}

// UnmarshalYAML decodes [x, y, z]
func (v *Vector) UnmarshalYAML(value *yaml.Node) error {
	var components []float64
	if err := value.Decode(&components); err != nil {
		return errors.Wrapf(err, "line %d: expected [x, y, z]", value.Line)
	}
	if len(components) != 3 {
		return errors.Errorf("line %d: expected 3 components, got %d", value.Line, len(components))
	}
	*v = Vector(core.NewVec3(components[0], components[1], components[2]))
	return nil
}

// Color is an RGB colour written either as [r, g, b] in linear space or as an sRGB "#rrggbb" string
type Color core.Vec3

// Vec3 returns the linear colour as a core.Vec3
func (c Color) Vec3() core.Vec3 {
	return core.Vec3(c)
}

// UnmarshalYAML decodes either colour form
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		hex, err := colorful.Hex(value.Value)
		if err != nil {
			return errors.Wrapf(err, "line %d: invalid colour %q", value.Line, value.Value)
		}
		r, g, b := hex.LinearRgb()
		*c = Color(core.NewVec3(r, g, b))
		return nil
	}

	var v Vector
	if err := v.UnmarshalYAML(value); err != nil {
		return err
	}
	*c = Color(v)
	return nil
}

// ParseSceneFile parses a YAML scene document from an io.Reader
func ParseSceneFile(reader io.Reader) (*SceneFile, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	var sceneFile SceneFile
	if err := decoder.Decode(&sceneFile); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Wrap(ErrInvalidSceneFile, "empty document")
		}
		return nil, errors.Wrap(err, "decoding scene file")
	}

	if err := sceneFile.Validate(); err != nil {
		return nil, err
	}
	return &sceneFile, nil
}

// LoadSceneFile loads and parses a YAML scene file
func LoadSceneFile(filename string) (*SceneFile, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open scene file")
	}
	defer file.Close()

	sceneFile, err := ParseSceneFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", filename)
	}
	return sceneFile, nil
}

// Validate checks material definitions and sphere references
func (f *SceneFile) Validate() error {
	for name, mat := range f.Materials {
		switch mat.Type {
		case MaterialLambertian, MaterialHemisphere:
		case MaterialMetal:
			// Out of range fuzz is clamped to [0, 1] when the material is built
			if math.IsNaN(mat.Fuzz) {
				return errors.Wrapf(ErrInvalidSceneFile, "material %q: fuzz must be a number", name)
			}
		case MaterialDielectric:
			if !(mat.RefractiveIndex > 0) || math.IsInf(mat.RefractiveIndex, 1) {
				return errors.Wrapf(ErrInvalidSceneFile, "material %q: refractive_index must be positive and finite", name)
			}
		default:
			return errors.Wrapf(ErrInvalidSceneFile, "material %q: unknown type %q", name, mat.Type)
		}
	}

	if len(f.Spheres) == 0 {
		return errors.Wrap(ErrInvalidSceneFile, "scene has no spheres")
	}
	for i, sphere := range f.Spheres {
		if sphere.Radius == 0 || !isFinite(sphere.Radius) {
			return errors.Wrapf(ErrInvalidSceneFile, "sphere %d: radius must be finite and not zero", i)
		}
		if c := sphere.Center; !isFinite(c.X) || !isFinite(c.Y) || !isFinite(c.Z) {
			return errors.Wrapf(ErrInvalidSceneFile, "sphere %d: center must be finite", i)
		}
		if _, ok := f.Materials[sphere.Material]; !ok {
			return errors.Wrapf(ErrInvalidSceneFile, "sphere %d: unknown material %q", i, sphere.Material)
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// validateFilePath rejects paths that do not name a YAML file
func validateFilePath(filename string) error {
	if filename == "" {
		return errors.New("filename cannot be empty")
	}
	if strings.Contains(filename, "\x00") {
		return errors.New("invalid file path: null bytes not allowed")
	}

	cleanPath := filepath.Clean(filename)
	if len(cleanPath) > 512 {
		return errors.New("file path too long: maximum 512 characters allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return errors.Errorf("invalid file type %q: only .yaml and .yml files are allowed", ext)
	}
	return nil
}
