package outline

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUOutlineParamsSource is the WGSL definition of the OutlineParams struct.
// Matches GPUOutlineParams layout exactly (64 bytes).
//
//go:embed assets/outline_params.wgsl
var GPUOutlineParamsSource string

// GPUOutlineParams is the uniform block read by the composite pass.
// Size: 64 bytes.
type GPUOutlineParams struct {
	OutlineColor         [4]float32 // offset  0: rgb outline color, w unused
	MultiplierParameters [4]float32 // offset 16: depth/normal multipliers, inert
	ScreenSize           [4]float32 // offset 32: (w, h, 1/w, 1/h)
	CameraNear           float32    // offset 48: inert
	CameraFar            float32    // offset 52: inert
	Time                 float32    // offset 56: inert
	Sampling             uint32     // offset 60: SamplingPattern
}

// Size returns the size of the GPUOutlineParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUOutlineParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUOutlineParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUOutlineParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.OutlineColor[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.MultiplierParameters[i]))
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(g.ScreenSize[i]))
	}
	binary.LittleEndian.PutUint32(buf[48:], math.Float32bits(g.CameraNear))
	binary.LittleEndian.PutUint32(buf[52:], math.Float32bits(g.CameraFar))
	binary.LittleEndian.PutUint32(buf[56:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[60:], g.Sampling)
	return buf
}

// GPUSurfaceIdParamsSource is the WGSL definition of the SurfaceIdParams struct.
// Matches GPUSurfaceIdParams layout exactly (16 bytes).
//
//go:embed assets/surface_id_params.wgsl
var GPUSurfaceIdParamsSource string

// GPUSurfaceIdParams is the uniform block read by the surface id pass.
// Size: 16 bytes.
type GPUSurfaceIdParams struct {
	MaxLabel float32    // offset 0: normalization denominator, >= 1
	_pad     [3]float32 // offset 4: padding to 16 bytes
}

// NewGPUSurfaceIdParams builds the surface id uniform, clamping maxLabel to at least 1.
func NewGPUSurfaceIdParams(maxLabel uint32) GPUSurfaceIdParams {
	return GPUSurfaceIdParams{MaxLabel: float32(max(maxLabel, 1))}
}

// Size returns the size of the GPUSurfaceIdParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUSurfaceIdParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSurfaceIdParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSurfaceIdParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.MaxLabel))
	return buf
}
