package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/go-cmp/cmp"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("composite", "output")
	if p.ColorTarget() != "output" || p.DepthTarget() != "" {
		t.Errorf("targets = (%q, %q), want (output, \"\")", p.ColorTarget(), p.DepthTarget())
	}
	if p.Blend() != nil {
		t.Error("blending enabled by default")
	}
	if p.DepthWriteEnabled() {
		t.Error("depth writes enabled without a depth target")
	}
	if p.Pipeline() != nil {
		t.Error("Pipeline() non-nil before registration")
	}
	if p.Shader(shader.ShaderTypeVertex) != nil {
		t.Error("vertex shader set without WithShaders")
	}
	if err := p.Validate(wgpu.TextureFormatBGRA8Unorm); err == nil {
		t.Error("Validate accepted a pipeline without shaders")
	}
	p.Release()
}

func TestPipelineOptions(t *testing.T) {
	p := NewPipeline("scene", "scene_color",
		WithDepth("scene_depth", true),
		WithAlphaBlend(),
	)
	if p.DepthTarget() != "scene_depth" || !p.DepthWriteEnabled() {
		t.Errorf("depth = (%q, %v), want (scene_depth, true)", p.DepthTarget(), p.DepthWriteEnabled())
	}
	if diff := cmp.Diff(&AlphaBlend, p.Blend()); diff != "" {
		t.Errorf("blend mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateRejectsBlendingLabels(t *testing.T) {
	vs := shader.NewShader("vs", shader.ShaderTypeVertex, "@vertex fn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }")
	fs := shader.NewShader("fs", shader.ShaderTypeFragment, "@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(0.0); }")

	tests := []struct {
		name    string
		opts    []PipelineBuilderOption
		format  wgpu.TextureFormat
		wantErr error
	}{
		{name: "label target without blend", opts: []PipelineBuilderOption{WithShaders(vs, fs)}, format: wgpu.TextureFormatR32Float},
		{name: "label target with blend", opts: []PipelineBuilderOption{WithShaders(vs, fs), WithAlphaBlend()}, format: wgpu.TextureFormatR32Float, wantErr: ErrBlendUnsupported},
		{name: "swapchain with blend", opts: []PipelineBuilderOption{WithShaders(vs, fs), WithAlphaBlend()}, format: wgpu.TextureFormatBGRA8Unorm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPipeline("p", "label", tt.opts...).Validate(tt.format)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
