package camera

// CameraBuilderOption configures a camera during NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithFov sets the vertical field of view in radians.
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the initial aspect ratio (width / height). The engine keeps it in sync with
// the framebuffer afterwards, so this only matters for the first frame.
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithPlanes sets the near and far clipping distances. The label pass shares the camera, so
// geometry clipped here is never outlined either.
//
// Parameters:
//   - near: near plane distance, greater than zero
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near, c.far = near, far
	}
}

// WithController attaches the orbit controller that positions the camera. Without one the
// view stays the identity: the camera sits at the origin looking down -Z.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
