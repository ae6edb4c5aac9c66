package scene

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/Carmen-Shannon/oxy-outline/engine/camera"
	"github.com/Carmen-Shannon/oxy-outline/engine/light"
	"github.com/Carmen-Shannon/oxy-outline/engine/model"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-outline/engine/surface"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/samber/lo"
)

const (
	cameraGroup = 0
	meshGroup   = 1
	lightGroup  = 2
)

// Uploader is the part of renderer.Renderer a Scene uploads its GPU resources through.
type Uploader interface {
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error
	WriteBuffers(writes []bind_group_provider.BufferWrite)
}

// Scene owns the meshes drawn each frame, their scene-wide surface labels and the camera
// they are viewed through. Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Active returns whether the scene is rendered.
	Active() bool

	// SetActive sets whether the scene is rendered.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera. Its GPU resources are created on the next Upload.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// CameraProvider returns the bind group provider of the scene's camera.
	CameraProvider() bind_group_provider.BindGroupProvider

	// Light returns the key light the scene pass shades with.
	Light() light.Light

	// AddMeshes labels the meshes' surfaces and adds them to the scene. Labels continue
	// from the meshes already in the scene, so every surface in the scene carries a
	// distinct label. Meshes are labeled in parallel on the scene's worker pool and
	// receive the same labels sequential labeling would give them.
	//
	// A mesh without an index buffer is added with an all-zero attribute and draws
	// without outlines. A mesh whose indices cannot be labeled is added the same way
	// and its error is returned.
	//
	// Parameters:
	//   - meshes: the meshes to add, in label order
	//
	// Returns:
	//   - error: the joined labeling errors, nil when every indexed mesh was labeled
	AddMeshes(meshes ...model.Mesh) error

	// Meshes returns the scene's meshes in insertion order.
	Meshes() []model.Mesh

	// Visible returns the meshes whose world bounds intersect the camera frustum, or every
	// mesh when culling is disabled. The frustum comes from the matrices of the last
	// camera Update.
	Visible() []model.Mesh

	// LabelsIssued returns the number of surface labels issued so far.
	LabelsIssued() uint32

	// MaxLabel returns the label normalization denominator, max(LabelsIssued, 1).
	MaxLabel() uint32

	// Bounds returns the world space bounding box of every mesh.
	//
	// Returns:
	//   - common.Vec3: the minimum corner
	//   - common.Vec3: the maximum corner
	Bounds() (common.Vec3, common.Vec3)

	// Upload creates GPU buffers and bind groups for the camera, the light and every mesh
	// that has none yet.
	//
	// Parameters:
	//   - u: the renderer to upload through
	//
	// Returns:
	//   - error: the first upload error
	Upload(u Uploader) error

	// Sync updates the camera from its controller and writes the camera, light and mesh
	// uniforms. Called once per frame before the passes render.
	//
	// Parameters:
	//   - u: the renderer to write through
	Sync(u Uploader)

	// Clear removes and releases every mesh and resets the label counter.
	Clear()

	// Release frees every GPU resource held by the scene.
	Release()
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool
	cam    camera.Camera

	meshes        []model.Mesh
	initialMeshes []model.Mesh
	uploaded      map[model.Mesh]bool
	labelState    surface.LabelState

	light          light.Light
	vertexShader   shader.Shader
	fragmentShader shader.Shader
	cameraUploaded bool
	lightUploaded  bool
	culling        bool

	writePool []bind_group_provider.BufferWrite

	labelPool    worker.DynamicWorkerPool
	labelWorkers int
}

var _ Scene = &scene{}

// NewScene creates an empty, active Scene viewed through cam.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}

	s := &scene{
		mu:           &sync.RWMutex{},
		name:         name,
		active:       true,
		cam:          cam,
		uploaded:     make(map[model.Mesh]bool),
		vertexShader:   shader.NewShader("scene_vertex", shader.ShaderTypeVertex, SceneVertexSource),
		fragmentShader: shader.NewShader("scene_fragment", shader.ShaderTypeFragment, SceneFragmentSource),
		labelWorkers:   max(runtime.NumCPU()-1, 1),
		culling:        true,
	}

	for _, option := range options {
		option(s)
	}
	if s.light == nil {
		s.light = light.NewLight()
	}

	// Initialize the pool after options so WithLabelWorkers can override the default.
	s.labelPool = worker.NewDynamicWorkerPool(s.labelWorkers, 256, 1*time.Second)

	if len(s.initialMeshes) > 0 {
		if err := s.AddMeshes(s.initialMeshes...); err != nil {
			common.Logger().Warn("scene built with unlabeled meshes", "scene", name, "error", err)
		}
		s.initialMeshes = nil
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
	s.cameraUploaded = false
}

func (s *scene) CameraProvider() bind_group_provider.BindGroupProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam.BindGroupProvider()
}

func (s *scene) Light() light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.light
}

// labelResult is the outcome of labeling one mesh with a local label state.
type labelResult struct {
	labeling *surface.Labeling
	err      error
}

func (s *scene) AddMeshes(meshes ...model.Mesh) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Phase 1: build and label every mesh's graph in parallel, each from label 0.
	results := make([]labelResult, len(meshes))
	var wg sync.WaitGroup
	for i, m := range meshes {
		if !m.Indexed() {
			results[i].err = surface.ErrMissingIndexBuffer
			continue
		}
		wg.Add(1)
		idx, indices := i, m.Indices()
		s.labelPool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				g, err := surface.BuildGraph(indices)
				if err != nil {
					results[idx].err = err
					return nil, err
				}
				results[idx].labeling = surface.Label(g, &surface.LabelState{})
				return nil, nil
			},
		})
	}
	wg.Wait()

	// Phase 2: move each run into the scene-wide label range in mesh order.
	var errs []error
	for i, m := range meshes {
		attr, err := s.encode(m, results[i])
		if err != nil {
			common.Logger().Warn("mesh added without surface labels", "mesh", m.Name(), "error", err)
			if !errors.Is(err, surface.ErrMissingIndexBuffer) {
				errs = append(errs, fmt.Errorf("mesh %s: %w", m.Name(), err))
			}
			attr = surface.Unlabeled(m.VertexCount())
		}
		m.SetSurfaceIds(attr)
		s.meshes = append(s.meshes, m)
	}

	common.Logger().Info("meshes labeled",
		"scene", s.name,
		"meshes", len(meshes),
		"vertices", lo.SumBy(meshes, func(m model.Mesh) int { return m.VertexCount() }),
		"labels", s.labelState.NextLabel)
	return errors.Join(errs...)
}

// encode shifts a mesh's local labeling past the labels already issued and encodes it.
// The label counter only advances for meshes that encode successfully.
func (s *scene) encode(m model.Mesh, r labelResult) (*surface.Attribute, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.labeling.Shift(s.labelState.NextLabel)
	attr, err := surface.Encode(m.VertexCount(), r.labeling)
	if err != nil {
		return nil, err
	}
	s.labelState.NextLabel += uint32(r.labeling.Count())
	return attr, nil
}

func (s *scene) Meshes() []model.Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Mesh(nil), s.meshes...)
}

func (s *scene) LabelsIssued() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.labelState.NextLabel
}

func (s *scene) MaxLabel() uint32 {
	return max(s.LabelsIssued(), 1)
}

func (s *scene) Bounds() (common.Vec3, common.Vec3) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	corners := lo.FlatMap(s.meshes, func(m model.Mesh, _ int) []common.Vec3 {
		bmin, bmax := m.Bounds()
		wmin, wmax := model.TransformBounds(m.Transform(), bmin, bmax)
		return []common.Vec3{wmin, wmax}
	})
	return model.Bounds(corners)
}

func (s *scene) Visible() []model.Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.culling {
		return append([]model.Mesh(nil), s.meshes...)
	}
	frustum := common.ExtractFrustum(s.cam.ViewProjectionMatrix())
	return lo.Filter(s.meshes, func(m model.Mesh, _ int) bool {
		bmin, bmax := m.Bounds()
		wmin, wmax := model.TransformBounds(m.Transform(), bmin, bmax)
		return frustum.IntersectsAABB(wmin, wmax)
	})
}

func (s *scene) Upload(u Uploader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	descs := s.vertexShader.BindGroupLayoutDescriptors()
	if !s.cameraUploaded {
		if err := u.InitBindGroup(s.cam.BindGroupProvider(), descs[cameraGroup], nil, nil); err != nil {
			return fmt.Errorf("scene %s: camera bind group: %w", s.name, err)
		}
		s.cameraUploaded = true
	}
	if !s.lightUploaded {
		desc := s.fragmentShader.BindGroupLayoutDescriptors()[lightGroup]
		if err := u.InitBindGroup(s.light.BindGroupProvider(), desc, nil, nil); err != nil {
			return fmt.Errorf("scene %s: light bind group: %w", s.name, err)
		}
		s.lightUploaded = true
	}

	pending := lo.Filter(s.meshes, func(m model.Mesh, _ int) bool { return !s.uploaded[m] })
	for _, m := range pending {
		if err := u.InitMeshBuffers(m.MeshProvider(), m.VertexData(), m.IndexData(), len(m.DrawIndices())); err != nil {
			return fmt.Errorf("mesh %s: buffers: %w", m.Name(), err)
		}
		if err := u.InitBindGroup(m.UniformProvider(), descs[meshGroup], nil, nil); err != nil {
			return fmt.Errorf("mesh %s: uniform bind group: %w", m.Name(), err)
		}
		s.uploaded[m] = true
	}
	if len(pending) > 0 {
		common.Logger().Debug("meshes uploaded", "scene", s.name, "count", len(pending))
	}
	return nil
}

func (s *scene) Sync(u Uploader) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cam.Update()
	camUniform := s.cam.Uniform()
	lightUniform := s.light.Uniform()

	writes := s.writePool[:0]
	writes = append(writes,
		bind_group_provider.UniformWrite(s.cam.BindGroupProvider(), &camUniform),
		bind_group_provider.UniformWrite(s.light.BindGroupProvider(), &lightUniform),
	)
	for _, m := range s.meshes {
		if !s.uploaded[m] {
			continue
		}
		uniform := m.Uniform()
		writes = append(writes, bind_group_provider.UniformWrite(m.UniformProvider(), &uniform))
	}
	u.WriteBuffers(writes)
	s.writePool = writes
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.meshes {
		m.Release()
	}
	s.meshes = nil
	s.uploaded = make(map[model.Mesh]bool)
	s.labelState = surface.LabelState{}
}

func (s *scene) Release() {
	s.Clear()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam.BindGroupProvider().Release()
	s.light.BindGroupProvider().Release()
	s.cameraUploaded = false
	s.lightUploaded = false
}
