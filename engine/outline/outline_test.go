package outline

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig()
	if got := c.Color(); got != [3]float32{1, 1, 1} {
		t.Errorf("Color() = %v, want white", got)
	}
	if got := c.Sampling(); got != SamplingSymmetric {
		t.Errorf("Sampling() = %v, want symmetric", got)
	}
	if got := c.MultiplierParameters(); got != [4]float32{0.9, 20, 1, 1} {
		t.Errorf("MultiplierParameters() = %v", got)
	}
}

func TestConfigParams(t *testing.T) {
	c := NewConfig(
		WithHexColor(0xff8000),
		WithSampling(SamplingLegacy),
		WithCameraPlanes(0.5, 50),
	)
	want := GPUOutlineParams{
		OutlineColor:         [4]float32{1, float32(0x80) / 255, 0, 1},
		MultiplierParameters: DefaultMultiplierParameters,
		ScreenSize:           [4]float32{800, 600, 1.0 / 800, 1.0 / 600},
		CameraNear:           0.5,
		CameraFar:            50,
		Time:                 2,
		Sampling:             uint32(SamplingLegacy),
	}
	if d := cmp.Diff(want, c.Params(800, 600, 2)); d != "" {
		t.Errorf("Params mismatch (-want +got):\n%s", d)
	}

	c.SetColor([3]float32{0, 1, 0})
	c.SetSampling(SamplingSymmetric)
	p := c.Params(1024, 768, 0)
	if p.OutlineColor != [4]float32{0, 1, 0, 1} || p.Sampling != uint32(SamplingSymmetric) {
		t.Errorf("setters not reflected in Params: %+v", p)
	}
	if p.ScreenSize != [4]float32{1024, 768, 1.0 / 1024, 1.0 / 768} {
		t.Errorf("ScreenSize = %v", p.ScreenSize)
	}
}

func TestConfigMultipliersAndPlanes(t *testing.T) {
	mp := [4]float32{0.5, 10, 2, 1}
	c := NewConfig(WithMultiplierParameters(mp))
	if got := c.MultiplierParameters(); got != mp {
		t.Errorf("MultiplierParameters() = %v, want %v", got, mp)
	}

	c.SetCameraPlanes(0.25, 400)
	if near, far := c.CameraPlanes(); near != 0.25 || far != 400 {
		t.Errorf("CameraPlanes() = (%v, %v), want (0.25, 400)", near, far)
	}
	p := c.Params(64, 64, 0)
	if p.CameraNear != 0.25 || p.CameraFar != 400 || p.MultiplierParameters != mp {
		t.Errorf("Params did not carry planes and multipliers: %+v", p)
	}
}

func TestSamplingOffsets(t *testing.T) {
	seen := map[Offset]int{}
	for _, o := range SamplingSymmetric.Offsets() {
		seen[o]++
	}
	if len(seen) != 8 {
		t.Errorf("symmetric pattern has %d distinct offsets, want 8", len(seen))
	}

	legacy := map[Offset]int{}
	for _, o := range SamplingLegacy.Offsets() {
		legacy[o]++
	}
	if legacy[Offset{0, -1}] != 2 {
		t.Errorf("legacy samples the upward neighbor %d times, want 2", legacy[Offset{0, -1}])
	}
	if legacy[Offset{-1, 0}] != 0 {
		t.Error("legacy pattern should not sample the left neighbor")
	}
}

func TestGPUTypeLayouts(t *testing.T) {
	op := GPUOutlineParams{
		ScreenSize: [4]float32{640, 480, 1.0 / 640, 1.0 / 480},
		CameraFar:  100,
		Sampling:   uint32(SamplingLegacy),
	}
	if op.Size() != 64 {
		t.Fatalf("GPUOutlineParams size = %d, want 64", op.Size())
	}
	buf := op.Marshal()
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[32:])); got != 640 {
		t.Errorf("screen_size.x at offset 32 = %v, want 640", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[52:])); got != 100 {
		t.Errorf("camera_far at offset 52 = %v, want 100", got)
	}
	if got := binary.LittleEndian.Uint32(buf[60:]); got != uint32(SamplingLegacy) {
		t.Errorf("sampling at offset 60 = %d, want %d", got, SamplingLegacy)
	}

	sp := NewGPUSurfaceIdParams(0)
	if sp.Size() != 16 {
		t.Fatalf("GPUSurfaceIdParams size = %d, want 16", sp.Size())
	}
	if sp.MaxLabel != 1 {
		t.Errorf("MaxLabel clamp: got %v, want 1", sp.MaxLabel)
	}
	sp = NewGPUSurfaceIdParams(42)
	if got := math.Float32frombits(binary.LittleEndian.Uint32(sp.Marshal())); got != 42 {
		t.Errorf("max_label at offset 0 = %v, want 42", got)
	}
}
