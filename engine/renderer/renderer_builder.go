package renderer

import (
	"github.com/Carmen-Shannon/tm3d-go/engine/log"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithBackend uses the given backend instead of creating one for the backend type.
//
// Parameters:
//   - b: the backend to draw with
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(b RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = b
	}
}

// WithLogger sets the logger used for renderer diagnostics.
//
// Parameters:
//   - l: the logger, nil disables logging
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(l *log.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.log = l.With("component", "renderer")
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithVSync is shorthand for WithPresentMode(PresentModeVSync) or WithPresentMode(PresentModeUncapped).
func WithVSync(enabled bool) RendererBuilderOption {
	if enabled {
		return WithPresentMode(PresentModeVSync)
	}
	return WithPresentMode(PresentModeUncapped)
}

// WithMSAA sets the sample count of the offscreen targets. When not specified, the default is
// MSAA4x. Use MSAAOff to composite with the plain texture shader.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff, MSAA2x, MSAA4x or MSAA8x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.sampleCount = count
	}
}

// WithMultisample applies the multisample settings from the configuration file: sampleCount is used
// when enabled is true, otherwise multisampling is off.
//
// Parameters:
//   - enabled: whether the offscreen targets are multisampled
//   - sampleCount: the sample count, one of 2, 4 or 8
//
// Returns:
//   - RendererBuilderOption: a function that applies the multisample option to a renderer
func WithMultisample(enabled bool, sampleCount int) RendererBuilderOption {
	if !enabled || sampleCount <= 1 {
		return WithMSAA(MSAAOff)
	}
	return WithMSAA(MSAASampleCount(sampleCount))
}

// WithRenderScale scales the offscreen targets relative to the surface. The value is clamped to
// [0.25, 2].
//
// Parameters:
//   - scale: the offscreen scale factor
//
// Returns:
//   - RendererBuilderOption: a function that applies the render scale option to a renderer
func WithRenderScale(scale float32) RendererBuilderOption {
	return func(r *renderer) {
		r.renderScale = min(max(scale, 0.25), 2)
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
