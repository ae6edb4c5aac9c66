package outline

// SamplingPattern selects which neighbor texels are compared with the center texel
// when looking for label discontinuities.
type SamplingPattern uint32

const (
	// SamplingSymmetric compares all eight neighbors once each.
	SamplingSymmetric SamplingPattern = iota

	// SamplingLegacy reproduces the historical pattern: the upward neighbor is sampled
	// twice and the left neighbor is never sampled, so edges that are only visible
	// through the left neighbor produce no outline.
	SamplingLegacy
)

// Offset is a texel offset in framebuffer space (x right, y down).
type Offset struct {
	X, Y int
}

var symmetricOffsets = [8]Offset{
	{1, 0}, {-1, 0}, {0, -1}, {0, 1},
	{1, -1}, {1, 1}, {-1, -1}, {-1, 1},
}

var legacyOffsets = [8]Offset{
	{1, 0}, {0, -1}, {0, -1}, {0, 1},
	{1, -1}, {1, 1}, {-1, -1}, {-1, 1},
}

// Offsets returns the eight neighbor offsets sampled by the pattern, in sampling order.
func (p SamplingPattern) Offsets() [8]Offset {
	if p == SamplingLegacy {
		return legacyOffsets
	}
	return symmetricOffsets
}

func (p SamplingPattern) String() string {
	switch p {
	case SamplingSymmetric:
		return "symmetric"
	case SamplingLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}
