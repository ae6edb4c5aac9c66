package outline

import "math"

// LabelField is a CPU copy of the label target: one normalized label per pixel,
// row-major with row 0 at the top.
type LabelField struct {
	Width, Height int
	Values        []float32
}

// at returns the label at (x, y), clamping coordinates to the field edges the way the
// composite shader clamps its texel loads.
func (f LabelField) at(x, y int) float32 {
	x = min(max(x, 0), f.Width-1)
	y = min(max(y, 0), f.Height-1)
	return f.Values[y*f.Width+x]
}

// Discontinuity returns the binarized outline value at (x, y): 1 when the summed
// difference between the center label and its sampled neighbors is nonzero, else 0.
//
// Parameters:
//   - f: the label field
//   - x, y: the pixel coordinate
//   - p: the neighbor sampling pattern
//
// Returns:
//   - float32: 0 or 1
func Discontinuity(f LabelField, x, y int, p SamplingPattern) float32 {
	center := f.at(x, y)
	var diff float64
	for _, o := range p.Offsets() {
		diff += math.Abs(float64(center - f.at(x+o.X, y+o.Y)))
	}
	if diff != 0 {
		return 1
	}
	return 0
}

// Composite applies the outline composite to a whole frame on the CPU. It mirrors the
// composite fragment shader.
//
// Scene pixels that are transparent black pass through unchanged. Every other pixel
// becomes (outline * color, OutputAlpha).
//
// Parameters:
//   - scene: the scene color target, one RGBA value per pixel, same layout as labels
//   - labels: the label field
//   - color: the outline RGB color
//   - p: the neighbor sampling pattern
//
// Returns:
//   - [][4]float32: the composited frame
func Composite(scene [][4]float32, labels LabelField, color [3]float32, p SamplingPattern) [][4]float32 {
	out := make([][4]float32, len(scene))
	for y := 0; y < labels.Height; y++ {
		for x := 0; x < labels.Width; x++ {
			i := y*labels.Width + x
			if scene[i] == ([4]float32{}) {
				out[i] = scene[i]
				continue
			}
			o := Discontinuity(labels, x, y, p)
			out[i] = [4]float32{o * color[0], o * color[1], o * color[2], OutputAlpha}
		}
	}
	return out
}
