package systems

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

// Frames to wait after a resize before scheduling resumes. At 60 FPS this
// is roughly half a second of OS resize-drag silence.
const framesBeforeResizeApplies = 30

/**
 * @brief Top-level renderer façade. Owns the target cache, the scheduler
 * and the stack coordinator, drives the per-camera
 * aggregate/resolve/schedule/execute sequence once per frame and keeps the
 * frame metrics up to date.
 */
type RendererSystem struct {
	backend      metadata.RendererBackend
	capabilities metadata.CapabilityOracle

	targets   *RenderTargetSystem
	scheduler *FrameSchedulerSystem
	stacks    *CameraStackSystem

	metrics core.FrameMetrics

	framebufferWidth  uint32
	framebufferHeight uint32
	resizing          bool
	framesSinceResize uint8

	backbuffer *metadata.TargetHandle

	// Runtime debug view override, toggled through the event bus.
	debugOverride metadata.RendererDebugViewMode
}

func NewRendererSystem(backend metadata.RendererBackend, backing metadata.TargetBacking,
	capabilities metadata.CapabilityOracle, width, height uint32) (*RendererSystem, error) {
	if backend == nil {
		return nil, fmt.Errorf("func NewRendererSystem requires a renderer backend")
	}
	targets, err := NewRenderTargetSystem(backing)
	if err != nil {
		return nil, err
	}
	scheduler, err := NewFrameSchedulerSystem(targets, capabilities)
	if err != nil {
		return nil, err
	}
	stacks, err := NewCameraStackSystem(targets)
	if err != nil {
		return nil, err
	}

	rs := &RendererSystem{
		backend:           backend,
		capabilities:      capabilities,
		targets:           targets,
		scheduler:         scheduler,
		stacks:            stacks,
		framebufferWidth:  width,
		framebufferHeight: height,
	}
	rs.refreshBackbuffer()

	core.EventRegister(core.EVENT_CODE_RESIZED, rs.onResized)
	core.EventRegister(core.EVENT_CODE_SET_RENDER_MODE, rs.onSetRenderMode)
	core.EventRegister(core.EVENT_CODE_DEFAULT_RENDERTARGET_REFRESH_REQUIRED, rs.onTargetRefreshRequired)
	return rs, nil
}

// RegisterPass exposes external pass registration on the façade.
func (rs *RendererSystem) RegisterPass(pass metadata.RenderPass) error {
	return rs.scheduler.RegisterPass(pass)
}

// Metrics returns a copy of the last drawn frame's metrics.
func (rs *RendererSystem) Metrics() core.FrameMetrics {
	return rs.metrics
}

func (rs *RendererSystem) onResized(context core.EventContext) {
	extent, ok := context.Data.(*core.ResizeEvent)
	if !ok {
		core.LogWarn("resize event carried no extent payload, ignoring")
		return
	}
	rs.framebufferWidth = extent.Width
	rs.framebufferHeight = extent.Height
	rs.resizing = true
	rs.framesSinceResize = 0
}

func (rs *RendererSystem) onSetRenderMode(context core.EventContext) {
	if mode, ok := context.Data.(metadata.RendererDebugViewMode); ok {
		rs.debugOverride = mode
		core.LogInfo("debug view mode set to %d", mode)
	}
}

func (rs *RendererSystem) onTargetRefreshRequired(context core.EventContext) {
	rs.targets.ReleaseRenderTargets()
	rs.stacks.Shutdown()
	core.LogInfo("transient render targets dropped, reacquiring next frame")
}

/**
 * @brief Runs one frame for every camera in the packet. Frames during a
 * resize drag are skipped until the extent has been stable for a while;
 * a camera whose plan cannot be built abandons the whole frame.
 */
func (rs *RendererSystem) DrawFrame(packet *metadata.RenderPacket) error {
	if rs.resizing {
		rs.framesSinceResize++
		if rs.framesSinceResize < framesBeforeResizeApplies {
			return nil
		}
		rs.resizing = false
		rs.framesSinceResize = 0
		rs.refreshBackbuffer()
		core.LogInfo("resize settled at %dx%d", rs.framebufferWidth, rs.framebufferHeight)
	}

	start := rs.metrics.BeginFrame()

	plans := make([]*metadata.FramePlan, 0, len(packet.Cameras))
	for _, camera := range packet.Cameras {
		plan, err := rs.planCamera(camera)
		if err != nil {
			return err
		}
		plans = append(plans, plan)
		rs.metrics.PassCount += len(plan.Passes)
	}
	rs.metrics.TargetAllocations = rs.targets.TakeAllocationCount()
	rs.metrics.EndFrame(start)

	if err := rs.backend.BeginFrame(packet.DeltaTime); err != nil {
		return err
	}
	for _, plan := range plans {
		frame := &metadata.FrameInfo{
			FrameNumber: rs.metrics.FrameNumber,
			DeltaTime:   packet.DeltaTime,
			Camera:      plan.Camera,
			Strategy:    plan.Strategy,
		}
		for _, bound := range plan.Passes {
			if err := bound.Pass.Execute(rs.backend, frame, &bound.Bindings); err != nil {
				core.LogError("pass '%s' failed: %s", bound.Pass.Declaration().Name, err.Error())
				return err
			}
		}
	}
	return rs.backend.EndFrame(packet.DeltaTime)
}

// planCamera builds one camera's plan: aggregate, resolve, schedule,
// coordinate. Camera configs are treated as read-only input.
func (rs *RendererSystem) planCamera(camera *metadata.CameraConfig) (*metadata.FramePlan, error) {
	if rs.debugOverride != metadata.RENDERER_VIEW_MODE_DEFAULT {
		patched := *camera
		patched.DebugViewMode = rs.debugOverride
		camera = &patched
	}

	strategy := ResolveStrategy(camera, rs.capabilities)
	summary := AggregateRequirements(rs.scheduler.ExternalDeclarations(), camera)
	decisions, err := ResolveFeatures(FeatureInputs{
		Camera:                  camera,
		Summary:                 summary,
		Strategy:                strategy,
		Capabilities:            rs.capabilities,
		FirstDepthWriterInStack: rs.stacks.IsFirstDepthWriter(camera),
	})
	if err != nil {
		return nil, err
	}

	shared := rs.stacks.Begin(camera, rs.backbuffer)
	plan, err := rs.scheduler.Schedule(camera, strategy, summary, decisions, shared)
	if err != nil {
		return nil, err
	}
	if err := rs.stacks.Finalize(camera, plan, shared); err != nil {
		return nil, err
	}
	return plan, nil
}

// refreshBackbuffer rewraps the presentation surface as a handle with the
// current framebuffer extent. Not cache-managed; nothing to release.
func (rs *RendererSystem) refreshBackbuffer() {
	rs.backbuffer = &metadata.TargetHandle{
		Slot: "backbuffer",
		Descriptor: metadata.TargetDescriptor{
			Format:      vk.FormatB8g8r8a8Unorm,
			Width:       rs.framebufferWidth,
			Height:      rs.framebufferHeight,
			SampleCount: 1,
			Usage:       metadata.TARGET_USAGE_RENDER,
		},
		Texture: &metadata.Texture{Name: "backbuffer"},
	}
}

// Shutdown releases every transient target and detaches from the event bus.
func (rs *RendererSystem) Shutdown() {
	rs.stacks.Shutdown()
	rs.targets.ReleaseRenderTargets()
}
