package outline

// ConfigBuilderOption configures a Config at construction time.
type ConfigBuilderOption func(*config)

// WithColor sets the outline RGB color.
//
// Parameters:
//   - rgb: the color, components in [0, 1]
//
// Returns:
//   - ConfigBuilderOption: a function that applies the color to the config
func WithColor(rgb [3]float32) ConfigBuilderOption {
	return func(c *config) {
		c.color = rgb
	}
}

// WithHexColor sets the outline color from a 0xRRGGBB value.
//
// Parameters:
//   - hex: the packed color
//
// Returns:
//   - ConfigBuilderOption: a function that applies the color to the config
func WithHexColor(hex uint32) ConfigBuilderOption {
	return func(c *config) {
		c.color = [3]float32{
			float32((hex>>16)&0xff) / 255,
			float32((hex>>8)&0xff) / 255,
			float32(hex&0xff) / 255,
		}
	}
}

// WithSampling selects the neighbor sampling pattern.
//
// Parameters:
//   - p: SamplingSymmetric or SamplingLegacy
//
// Returns:
//   - ConfigBuilderOption: a function that applies the pattern to the config
func WithSampling(p SamplingPattern) ConfigBuilderOption {
	return func(c *config) {
		c.sampling = p
	}
}

// WithCameraPlanes sets the near and far distances uploaded with the composite uniforms.
//
// Parameters:
//   - near: the near plane distance
//   - far: the far plane distance
//
// Returns:
//   - ConfigBuilderOption: a function that applies the planes to the config
func WithCameraPlanes(near, far float32) ConfigBuilderOption {
	return func(c *config) {
		c.near, c.far = near, far
	}
}

// WithMultiplierParameters overrides the inert depth/normal multiplier parameters.
func WithMultiplierParameters(p [4]float32) ConfigBuilderOption {
	return func(c *config) {
		c.multiplier = p
	}
}
