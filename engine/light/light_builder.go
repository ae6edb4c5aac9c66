package light

import "github.com/Carmen-Shannon/oxy-outline/common"

// LightBuilderOption configures a light during NewLight.
type LightBuilderOption func(*lightImpl)

// WithDirection sets the direction the light travels. It is normalized; a zero vector keeps
// the default.
func WithDirection(dir common.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.setDirection(dir)
	}
}

// WithColor sets the light color. Shaded meshes are their base color times this.
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = [3]float32{r, g, b}
	}
}

// WithIntensity scales the diffuse term.
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithAmbient sets the floor added to every fragment. Keep it above zero: a fragment shaded
// to exact black with full alpha still counts as covered by the composite pass, but reads as
// background to the eye.
func WithAmbient(ambient float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.ambient = ambient
	}
}
