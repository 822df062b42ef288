package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/tm3d-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/tm3d-go/engine/renderer/shader"
)

// Program is a shader compiled by the backend together with the fixed-function state selected
// from its flags. The selection happens once, at compile time.
type Program struct {
	shader.Shader

	handle  any
	depth   pipeline.DepthState
	sampler pipeline.SamplerState
	blend   pipeline.BlendState
}

// DepthState returns the depth configuration bound with the program.
func (p *Program) DepthState() pipeline.DepthState {
	return p.depth
}

// SamplerState returns the sampler bound with the program.
func (p *Program) SamplerState() pipeline.SamplerState {
	return p.sampler
}

// BlendState returns the blend configuration bound with the program.
func (p *Program) BlendState() pipeline.BlendState {
	return p.blend
}

// Shaders holds the programs the engine draws with.
type Shaders struct {
	Color   *Program
	Texture *Program
	Basic3D *Program
	Terrain *Program
	Text    *Program
	MSAA2x  *Program
	MSAA4x  *Program
	MSAA8x  *Program
}

// Resolve returns the program that composites an offscreen target with the given sample count onto
// a single-sampled target: one of the MSAA resolve shaders, or the texture shader when the target is
// not multisampled.
//
// Parameters:
//   - samples: the sample count of the offscreen colour target
//
// Returns:
//   - *Program: the composite program
func (s Shaders) Resolve(samples int) *Program {
	switch samples {
	case 2:
		return s.MSAA2x
	case 4:
		return s.MSAA4x
	case 8:
		return s.MSAA8x
	default:
		return s.Texture
	}
}

// builtinShaders maps each embedded asset name to the Shaders field it fills.
func builtinShaders(s *Shaders) map[string]**Program {
	return map[string]**Program{
		"color":    &s.Color,
		"texture":  &s.Texture,
		"basic_3d": &s.Basic3D,
		"terrain":  &s.Terrain,
		"text":     &s.Text,
		"msaa_2x":  &s.MSAA2x,
		"msaa_4x":  &s.MSAA4x,
		"msaa_8x":  &s.MSAA8x,
	}
}

func (r *renderer) CompileShader(name string) (*Program, error) {
	s, err := shader.Load(name)
	if err != nil {
		return nil, err
	}
	return r.compile(s)
}

func (r *renderer) CompileShaderSource(name, source string) (*Program, error) {
	s, err := shader.Parse(name, source)
	if err != nil {
		return nil, err
	}
	return r.compile(s)
}

func (r *renderer) compile(s shader.Shader) (*Program, error) {
	handle, err := r.backend.CreateShader(s)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader %s: %w", s.Name(), err)
	}
	f := s.Flags()
	p := &Program{
		Shader:  s,
		handle:  handle,
		depth:   pipeline.SelectDepthState(f),
		sampler: pipeline.SelectSamplerState(f),
		blend:   pipeline.SelectBlendState(f),
	}
	r.log.Debug("compiled shader", "name", s.Name(), "depth", p.depth.String(), "sampler", p.sampler.String(), "blend", p.blend.String())
	return p, nil
}

func (r *renderer) loadShaders() error {
	for name, slot := range builtinShaders(&r.shaders) {
		p, err := r.CompileShader(name)
		if err != nil {
			return err
		}
		*slot = p
	}
	return nil
}

func (r *renderer) Shaders() Shaders {
	return r.shaders
}

func (r *renderer) SetShader(p *Program) {
	if p == nil || p == r.activeShader {
		return
	}
	r.ImmediateFlush()

	r.backend.BindShader(p.handle, p.Shader, p.depth, p.sampler, p.blend)
	r.activeShader = p
	r.stats.ShaderBinds++

	if r.transformDirty {
		r.pushTransform()
	}
}

func (r *renderer) ActiveShader() *Program {
	return r.activeShader
}
