// Package light holds the directional key light the scene pass shades meshes with.
package light

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/bind_group_provider"
)

// lightCount generates unique bind group provider names.
var lightCount atomic.Uint64

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.Mutex

	direction common.Vec3
	color     [3]float32
	intensity float32
	ambient   float32

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Light is a directional light with an ambient term. It only changes the shaded scene
// color; the outline is computed from surface labels and ignores lighting.
//
// Thread-safe: the engine tick may change the light while the render loop syncs it.
type Light interface {
	// Direction returns the normalized direction the light travels.
	//
	// Returns:
	//   - common.Vec3: normalized direction
	Direction() common.Vec3

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the diffuse multiplier.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Ambient returns the light added to every fragment regardless of orientation.
	//
	// Returns:
	//   - float32: the ambient term
	Ambient() float32

	// SetDirection sets the direction of the light and normalizes it. A zero vector is
	// ignored.
	//
	// Parameters:
	//   - dir: direction the light travels, normalized before storing
	SetDirection(dir common.Vec3)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetIntensity sets the diffuse multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetAmbient sets the ambient term.
	//
	// Parameters:
	//   - ambient: the ambient term
	SetAmbient(ambient float32)

	// Uniform returns the light's GPU uniform block.
	//
	// Returns:
	//   - GPULightUniform: the uniform ready to marshal
	Uniform() GPULightUniform

	// BindGroupProvider returns the provider holding the light's uniform bind group.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider
	BindGroupProvider() bind_group_provider.BindGroupProvider
}

var _ Light = &lightImpl{}

// NewLight creates a key light shining down and away from the default camera position,
// white, with intensity 0.75 and ambient 0.25.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:        &sync.Mutex{},
		direction: common.Normalize3(common.Vec3{-0.4, -0.8, -0.45}),
		color:     [3]float32{1, 1, 1},
		intensity: 0.75,
		ambient:   0.25,
		bindGroupProvider: bind_group_provider.NewBindGroupProvider(
			"light_" + strconv.FormatUint(lightCount.Add(1)-1, 10),
		),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Direction() common.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.direction
}

func (l *lightImpl) Color() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intensity
}

func (l *lightImpl) Ambient() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ambient
}

func (l *lightImpl) SetDirection(dir common.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setDirection(dir)
}

// setDirection normalizes and stores the direction. The caller holds mu or owns l.
func (l *lightImpl) setDirection(dir common.Vec3) {
	if dir == (common.Vec3{}) {
		return
	}
	l.direction = common.Normalize3(dir)
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intensity = intensity
}

func (l *lightImpl) SetAmbient(ambient float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ambient = ambient
}

func (l *lightImpl) Uniform() GPULightUniform {
	l.mu.Lock()
	defer l.mu.Unlock()
	return GPULightUniform{
		Direction: l.direction,
		Intensity: l.intensity,
		Color:     l.color,
		Ambient:   l.ambient,
	}
}

func (l *lightImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return l.bindGroupProvider
}
