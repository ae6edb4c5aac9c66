// Package primitive builds procedural meshes from signed distance field solids.
//
// Solids are composed with github.com/deadsy/sdfx, polygonized with marching cubes and
// welded into indexed meshes. Welding matters for outlines: marching cubes emits a
// triangle soup, and only shared indices let a connected solid label as one surface.
package primitive

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Solid is a signed distance field solid.
type Solid = sdf.SDF3

// Box returns a box of the given size centered on the origin.
//
// Parameters:
//   - size: the box extents along x, y and z
//   - round: the edge rounding radius, 0 for sharp edges
//
// Returns:
//   - Solid: the box
//   - error: an error if the size or rounding is invalid
func Box(size common.Vec3, round float32) (Solid, error) {
	s, err := sdf.Box3D(vec(size), float64(round))
	if err != nil {
		return nil, fmt.Errorf("box %v: %w", size, err)
	}
	return s, nil
}

// Cylinder returns a cylinder along the z axis centered on the origin.
//
// Parameters:
//   - height: the cylinder height
//   - radius: the cylinder radius
//   - round: the edge rounding radius
//
// Returns:
//   - Solid: the cylinder
//   - error: an error if the dimensions are invalid
func Cylinder(height, radius, round float32) (Solid, error) {
	s, err := sdf.Cylinder3D(float64(height), float64(radius), float64(round))
	if err != nil {
		return nil, fmt.Errorf("cylinder h=%v r=%v: %w", height, radius, err)
	}
	return s, nil
}

// Sphere returns a sphere centered on the origin.
func Sphere(radius float32) (Solid, error) {
	s, err := sdf.Sphere3D(float64(radius))
	if err != nil {
		return nil, fmt.Errorf("sphere r=%v: %w", radius, err)
	}
	return s, nil
}

// Translate moves a solid by offset.
func Translate(s Solid, offset common.Vec3) Solid {
	return sdf.Transform3D(s, sdf.Translate3d(vec(offset)))
}

// Union joins solids into one. Disjoint solids stay separate surfaces once meshed.
func Union(solids ...Solid) Solid {
	return sdf.Union3D(solids...)
}

func vec(v common.Vec3) v3.Vec {
	return v3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}
