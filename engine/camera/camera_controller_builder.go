package camera

import "github.com/Carmen-Shannon/oxy-outline/common"

// CameraControllerOption configures an orbit controller during NewCameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithRadius sets the starting distance from the target. It is clamped to the radius bounds.
func WithRadius(radius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.radius = radius
	}
}

// WithAngles sets the starting orbit angles.
//
// Parameters:
//   - azimuth: rotation about +Y in radians, 0 looks from +Z
//   - elevation: angle above the horizon in radians
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithAngles(azimuth, elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.azimuth = azimuth
		cc.elevation = elevation
	}
}

// WithTarget sets the point the camera orbits and looks at.
func WithTarget(target common.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = target
	}
}

// WithRadiusBounds limits how far Zoom and Frame may move the camera. Keep the lower bound
// above the camera's near plane or the label pass clips the surface under the cursor.
//
// Parameters:
//   - min: closest allowed distance
//   - max: farthest allowed distance
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithRadiusBounds(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius = min
		cc.maxRadius = max
	}
}

// WithZoomSpeed sets the distance one wheel step moves the camera.
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}

// WithPanSpeed scales Pan offsets, which are expressed in multiples of the radius.
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = speed
	}
}
