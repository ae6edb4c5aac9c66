package outline_pass

// ComposerBuilderOption configures a Composer.
type ComposerBuilderOption func(*composer)

// WithRenderToScreen sets whether the last pass writes to the swapchain. When false the
// composite stays in the output target, for a PresentPass or offscreen use.
//
// Parameters:
//   - enabled: true to render the last pass to the screen
//
// Returns:
//   - ComposerBuilderOption: the option
func WithRenderToScreen(enabled bool) ComposerBuilderOption {
	return func(c *composer) {
		c.renderToScreen = enabled
	}
}

// WithPasses appends passes in order, as AddPass would.
//
// Parameters:
//   - passes: the passes to append
//
// Returns:
//   - ComposerBuilderOption: the option
func WithPasses(passes ...Pass) ComposerBuilderOption {
	return func(c *composer) {
		for _, p := range passes {
			c.addPass(p)
		}
	}
}
