package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

type recordingBackend struct {
	begun  []string
	frames int
}

func (b *recordingBackend) BeginFrame(deltaTime float64) error { b.frames++; return nil }
func (b *recordingBackend) EndFrame(deltaTime float64) error   { return nil }
func (b *recordingBackend) PassBegin(pass *metadata.BoundPass) error {
	b.begun = append(b.begun, pass.Pass.Declaration().Name)
	return nil
}
func (b *recordingBackend) PassEnd(pass *metadata.BoundPass) error          { return nil }
func (b *recordingBackend) Draw(scope metadata.DrawScope) error             { return nil }
func (b *recordingBackend) Copy(src, dst *metadata.TargetHandle) error      { return nil }
func (b *recordingBackend) BlitToPresentation(src *metadata.TargetHandle) error { return nil }
func (b *recordingBackend) ReadPixels(src *metadata.TargetHandle) ([]uint8, error) {
	return make([]uint8, src.Descriptor.Width*src.Descriptor.Height*4), nil
}

func newTestRenderer(t *testing.T) (*RendererSystem, *recordingBackend) {
	t.Helper()
	require.NoError(t, core.EventShutdown())
	backend := &recordingBackend{}
	renderer, err := NewRendererSystem(backend, &fakeBacking{}, desktopOracle(), 1920, 1080)
	require.NoError(t, err)
	return renderer, backend
}

func TestDrawFrameRunsWholeStack(t *testing.T) {
	renderer, backend := newTestRenderer(t)

	base := baseCamera()
	base.IsLastInStack = false
	base.HDR = true
	overlay := overlayCamera()
	overlay.HDR = true
	packet := &metadata.RenderPacket{
		DeltaTime: 1.0 / 60.0,
		Cameras:   []*metadata.CameraConfig{base, overlay},
	}

	require.NoError(t, renderer.DrawFrame(packet))

	assert.Equal(t, 1, backend.frames)
	assert.Contains(t, backend.begun, "Pass.Builtin.Opaque")
	assert.Contains(t, backend.begun, "Pass.Builtin.Transparent")
	// Both cameras ran their opaque pass.
	var opaques int
	for _, name := range backend.begun {
		if name == "Pass.Builtin.Opaque" {
			opaques++
		}
	}
	assert.Equal(t, 2, opaques)

	metrics := renderer.Metrics()
	assert.Equal(t, uint64(1), metrics.FrameNumber)
	assert.Greater(t, metrics.PassCount, 0)
	assert.Greater(t, metrics.TargetAllocations, 0)
}

func TestDrawFrameAbandonsOnResolverError(t *testing.T) {
	renderer, backend := newTestRenderer(t)

	camera := baseCamera()
	camera.RenderingLayers = true
	camera.RenderingLayersEvent = metadata.PASS_EVENT_AFTER_RENDERING
	packet := &metadata.RenderPacket{Cameras: []*metadata.CameraConfig{camera}}

	assert.Error(t, renderer.DrawFrame(packet))
	assert.Equal(t, 0, backend.frames, "nothing reaches the backend when planning fails")
}

func TestDrawFrameDebouncesResizes(t *testing.T) {
	renderer, backend := newTestRenderer(t)
	packet := &metadata.RenderPacket{Cameras: []*metadata.CameraConfig{baseCamera()}}

	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.ResizeEvent{Width: 800, Height: 600},
	})

	for i := 0; i < framesBeforeResizeApplies-1; i++ {
		require.NoError(t, renderer.DrawFrame(packet))
	}
	assert.Equal(t, 0, backend.frames, "frames are skipped while the resize settles")

	require.NoError(t, renderer.DrawFrame(packet))
	assert.Equal(t, 1, backend.frames)
	assert.Equal(t, uint32(800), renderer.backbuffer.Descriptor.Width)
}

func TestTargetRefreshEventDropsCachedTargets(t *testing.T) {
	renderer, _ := newTestRenderer(t)
	packet := &metadata.RenderPacket{Cameras: []*metadata.CameraConfig{baseCamera()}}

	require.NoError(t, renderer.DrawFrame(packet))
	first := renderer.Metrics().TargetAllocations

	require.NoError(t, renderer.DrawFrame(packet))
	assert.Equal(t, 0, renderer.Metrics().TargetAllocations, "stable descriptors hit the cache")

	core.EventFire(core.EventContext{Type: core.EVENT_CODE_DEFAULT_RENDERTARGET_REFRESH_REQUIRED})
	require.NoError(t, renderer.DrawFrame(packet))
	assert.Equal(t, first, renderer.Metrics().TargetAllocations, "a refresh reallocates everything")
}

func TestDebugOverrideSuppressesShadows(t *testing.T) {
	renderer, backend := newTestRenderer(t)
	packet := &metadata.RenderPacket{Cameras: []*metadata.CameraConfig{baseCamera()}}

	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_SET_RENDER_MODE,
		Data: metadata.RENDERER_VIEW_MODE_WIREFRAME,
	})
	require.NoError(t, renderer.DrawFrame(packet))
	assert.NotContains(t, backend.begun, "Pass.Builtin.Shadows")
}
