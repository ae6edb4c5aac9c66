package renderer

// RendererBuilderOption configures a renderer during NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets how frames reach the display. VSync is the default.
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the sample count of the scene color pass. The label target is never
// multisampled: resolving it would average labels across surface edges and invent labels
// that belong to no surface.
//
// Parameters:
//   - count: MSAAOff or MSAA4x (the default)
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.msaa = count
	}
}

// WithForceSoftwareRenderer requests the fallback adapter instead of a hardware GPU. It needs a
// software Vulkan driver such as lavapipe or SwiftShader, and is how the examples run on
// machines without a GPU.
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
