// Package outline holds the configuration, GPU parameter layouts and shader payloads
// of the surface outline effect, plus a CPU reference of the composite step.
//
// The effect runs in two GPU phases each frame. The surface id pass rasterizes
// round(label) / maxLabel for every mesh into a single channel label target. The
// composite pass compares every label texel with its eight neighbors and writes the
// outline color wherever they differ, over pixels that the scene pass covered.
package outline

import (
	"sync"
)

// OutputAlpha is the alpha written for every pixel covered by the scene.
const OutputAlpha float32 = 0.96

// DefaultMultiplierParameters are the depth and normal multiplier/bias values kept for
// a depth or normal based outline. They are uploaded but not used by the composite.
var DefaultMultiplierParameters = [4]float32{0.9, 20, 1, 1}

// Config holds the user-facing outline settings. It is safe for concurrent use so the
// engine tick can change settings while the render loop reads them.
type Config interface {
	// Color returns the outline RGB color.
	Color() [3]float32

	// SetColor sets the outline RGB color, components in [0, 1].
	SetColor(rgb [3]float32)

	// Sampling returns the neighbor sampling pattern.
	Sampling() SamplingPattern

	// SetSampling changes the neighbor sampling pattern.
	SetSampling(p SamplingPattern)

	// MultiplierParameters returns the inert depth/normal multiplier parameters.
	MultiplierParameters() [4]float32

	// CameraPlanes returns the near and far distances passed to the composite.
	//
	// Returns:
	//   - float32: the near plane distance
	//   - float32: the far plane distance
	CameraPlanes() (float32, float32)

	// SetCameraPlanes records the camera's near and far distances. They are uploaded
	// for a depth based variant and do not change the outline.
	//
	// Parameters:
	//   - near: the near plane distance
	//   - far: the far plane distance
	SetCameraPlanes(near, far float32)

	// Params builds the composite uniform block for a target of the given size.
	//
	// Parameters:
	//   - width: the render target width in pixels
	//   - height: the render target height in pixels
	//   - time: seconds since the effect started, uploaded but unused
	//
	// Returns:
	//   - GPUOutlineParams: the uniform block ready to marshal
	Params(width, height int, time float32) GPUOutlineParams
}

type config struct {
	mu         *sync.Mutex
	color      [3]float32
	multiplier [4]float32
	near, far  float32
	sampling   SamplingPattern
}

var _ Config = &config{}

// NewConfig creates an outline Config. Defaults are a white outline, symmetric
// sampling, near 0.1 and far 100.
//
// Parameters:
//   - options: functional options applied after the defaults
//
// Returns:
//   - Config: the configured settings
func NewConfig(options ...ConfigBuilderOption) Config {
	c := &config{
		mu:         &sync.Mutex{},
		color:      [3]float32{1, 1, 1},
		multiplier: DefaultMultiplierParameters,
		near:       0.1,
		far:        100,
		sampling:   SamplingSymmetric,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *config) Color() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.color
}

func (c *config) SetColor(rgb [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.color = rgb
}

func (c *config) Sampling() SamplingPattern {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sampling
}

func (c *config) SetSampling(p SamplingPattern) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sampling = p
}

func (c *config) MultiplierParameters() [4]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.multiplier
}

func (c *config) CameraPlanes() (float32, float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near, c.far
}

func (c *config) SetCameraPlanes(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near, c.far = near, far
}

func (c *config) Params(width, height int, time float32) GPUOutlineParams {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, h := float32(max(width, 1)), float32(max(height, 1))
	return GPUOutlineParams{
		OutlineColor:         [4]float32{c.color[0], c.color[1], c.color[2], 1},
		MultiplierParameters: c.multiplier,
		ScreenSize:           [4]float32{w, h, 1 / w, 1 / h},
		CameraNear:           c.near,
		CameraFar:            c.far,
		Time:                 time,
		Sampling:             uint32(c.sampling),
	}
}
