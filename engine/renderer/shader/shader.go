package shader

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed assets/*.wgsl
var assets embed.FS

// VertexLayout identifies which vertex input layout a shader's vertex stage consumes.
type VertexLayout int

const (
	// VertexLayoutImmediate is the batched immediate vertex: position, packed color, uv.
	VertexLayoutImmediate VertexLayout = iota

	// VertexLayoutMesh is the static mesh vertex: position, uv, normal.
	VertexLayoutMesh
)

// Bindings identifies the shape of a shader's texture bind group (group 1).
type Bindings int

const (
	// BindingsDiffuse is a single filterable 2D texture plus its sampler.
	BindingsDiffuse Bindings = iota

	// BindingsResolve is a single multisampled texture read with textureLoad.
	BindingsResolve

	// BindingsTerrain is four tiling textures, the blend map and one sampler.
	BindingsTerrain
)

// TextureCount returns how many texture views a bind group of this shape holds.
func (b Bindings) TextureCount() int {
	switch b {
	case BindingsTerrain:
		return 5
	default:
		return 1
	}
}

// Flags is the fixed-function state a shader requests. Flags are derived once when the shader is parsed.
type Flags struct {
	DepthTest      bool
	DepthWrite     bool
	AlphaBlend     bool
	DiffuseClamped bool
	PointSample    bool
}

// DefaultFlags returns the state used when a shader declares nothing: depth test and write on,
// alpha blending on, wrapping linear sampling.
func DefaultFlags() Flags {
	return Flags{
		DepthTest:  true,
		DepthWrite: true,
		AlphaBlend: true,
	}
}

// shader is the implementation of the Shader interface.
type shader struct {
	name        string
	source      string
	layout      VertexLayout
	bindings    Bindings
	flags       Flags
	vertexEntry string
	fragEntry   string
}

// Shader is a parsed WGSL program pairing a vertex and fragment entry point with the fixed-function
// state flags and resource layout declared in its annotations. Shaders are immutable once parsed.
type Shader interface {
	// Name returns the shader's registry name, e.g. "basic_3d".
	Name() string

	// Source returns the WGSL source code.
	Source() string

	// Layout returns the vertex layout the vertex entry point expects.
	Layout() VertexLayout

	// Bindings returns the shape of the texture bind group.
	Bindings() Bindings

	// Flags returns the fixed-function state flags.
	Flags() Flags

	// VertexEntryPoint returns the name of the @vertex function.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the @fragment function.
	FragmentEntryPoint() string
}

var _ Shader = &shader{}

// Parse builds a Shader from WGSL source, reading its @tm3d: annotations and legacy state sentinels.
//
// Parameters:
//   - name: the registry name of the shader
//   - source: the WGSL source code
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if an annotation is malformed
func Parse(name, source string) (Shader, error) {
	s := &shader{
		name:        name,
		source:      source,
		flags:       DefaultFlags(),
		vertexEntry: "vs_main",
		fragEntry:   "fs_main",
	}
	if err := s.applyAnnotations(); err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}
	return s, nil
}

// Load parses the embedded shader asset assets/<name>.wgsl.
//
// Parameters:
//   - name: the shader name without extension
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if the asset does not exist or fails to parse
func Load(name string) (Shader, error) {
	data, err := fs.ReadFile(assets, "assets/"+name+".wgsl")
	if err != nil {
		return nil, fmt.Errorf("failed to read shader %s: %w", name, err)
	}
	return Parse(name, string(data))
}

func (s *shader) Name() string {
	return s.name
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Layout() VertexLayout {
	return s.layout
}

func (s *shader) Bindings() Bindings {
	return s.bindings
}

func (s *shader) Flags() Flags {
	return s.flags
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntry
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragEntry
}
