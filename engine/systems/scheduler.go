package systems

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prisma/engine/containers"
	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/math"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
	"github.com/spaghettifunk/prisma/engine/renderer/passes"
)

const (
	shadowMapExtent = 2048
)

/**
 * @brief Builds the complete, resource-bound pass sequence for one camera
 * from the frame's decision set. Owns the built-in passes; external passes
 * are registered once and re-enqueued every frame at their declared event.
 * The plan is fully built before anything executes.
 */
type FrameSchedulerSystem struct {
	targets      *RenderTargetSystem
	capabilities metadata.CapabilityOracle

	shadow      *passes.ShadowPass
	prepass     *passes.DepthPrepass
	opaque      *passes.OpaquePass
	skybox      *passes.SkyboxPass
	transparent *passes.TransparentPass
	copyDepth   *passes.CopyDepthPass
	copyColor   *passes.CopyColorPass
	motion      *passes.MotionVectorsPass

	// External passes in registration order. Order breaks event ties.
	external []metadata.RenderPass
}

func NewFrameSchedulerSystem(targets *RenderTargetSystem, capabilities metadata.CapabilityOracle) (*FrameSchedulerSystem, error) {
	if targets == nil || capabilities == nil {
		return nil, fmt.Errorf("func NewFrameSchedulerSystem requires a target system and a capability oracle")
	}
	return &FrameSchedulerSystem{
		targets:      targets,
		capabilities: capabilities,
		shadow:       passes.NewShadowPass(),
		prepass:      passes.NewDepthPrepass(),
		opaque:       passes.NewOpaquePass(),
		skybox:       passes.NewSkyboxPass(),
		transparent:  passes.NewTransparentPass(),
		copyDepth:    passes.NewCopyDepthPass(),
		copyColor:    passes.NewCopyColorPass(),
		motion:       passes.NewMotionVectorsPass(),
	}, nil
}

// RegisterPass adds an external pass for all subsequent frames.
func (fs *FrameSchedulerSystem) RegisterPass(pass metadata.RenderPass) error {
	if pass == nil || pass.Declaration() == nil {
		return fmt.Errorf("cannot register a pass without a declaration")
	}
	fs.external = append(fs.external, pass)
	core.LogInfo("registered render pass '%s' at event %d", pass.Declaration().Name, pass.Declaration().Event)
	return nil
}

// ExternalDeclarations returns the declarations of every registered pass,
// in registration order. Input to the requirement aggregation.
func (fs *FrameSchedulerSystem) ExternalDeclarations() []*metadata.PassDeclaration {
	declarations := make([]*metadata.PassDeclaration, 0, len(fs.external))
	for _, pass := range fs.external {
		declarations = append(declarations, pass.Declaration())
	}
	return declarations
}

/**
 * @brief Emits the frame plan for one camera. Acquires every transient
 * target the decisions call for (borrowing for overlay cameras), binds the
 * built-in and external passes, orders them by event with registration
 * order breaking ties, and marks load/store behavior from the
 * forward-looking requirement summary.
 */
func (fs *FrameSchedulerSystem) Schedule(camera *metadata.CameraConfig, strategy metadata.RenderingStrategy,
	summary metadata.RequirementSummary, decisions metadata.FeatureDecisionSet, shared *StackResources) (*metadata.FramePlan, error) {

	width, height := math.ScaledExtent(camera.Width, camera.Height, camera.RenderScale)
	samples := camera.MSAASamples
	if samples < 1 {
		samples = 1
	}
	colorFormat := vk.FormatB8g8r8a8Unorm
	if camera.HDR {
		colorFormat = vk.FormatR16g16b16a16Sfloat
	}

	// Acquire the frame's transient targets. Overlay cameras borrow what the
	// base camera already owns; a failed allocation abandons the frame. An
	// overlay whose own settings would go straight to the backbuffer still
	// follows its stack into the intermediate the base camera rendered to.
	color := shared.Backbuffer
	usesIntermediate := decisions.IntermediateColor || (!camera.IsBase && shared.Color != nil)
	if usesIntermediate {
		handle, err := fs.acquireShared(camera, &shared.Color, camera.Stack+".color_front", metadata.TargetDescriptor{
			Format:      colorFormat,
			Width:       width,
			Height:      height,
			SampleCount: samples,
			Usage:       metadata.TARGET_USAGE_RENDER | metadata.TARGET_USAGE_SAMPLED,
			Filter:      metadata.TextureFilterModeLinear,
		})
		if err != nil {
			return nil, err
		}
		color = handle
	}
	var colorHistory *metadata.TargetHandle
	if camera.TemporalAA && usesIntermediate {
		handle, err := fs.acquireShared(camera, &shared.ColorHistory, camera.Stack+".color_back", color.Descriptor)
		if err != nil {
			return nil, err
		}
		colorHistory = handle
	}

	depth, err := fs.acquireShared(camera, &shared.Depth, camera.Stack+".depth", metadata.TargetDescriptor{
		DepthFormat: vk.FormatD32Sfloat,
		Width:       width,
		Height:      height,
		SampleCount: samples,
		Usage:       metadata.TARGET_USAGE_RENDER,
	})
	if err != nil {
		return nil, err
	}

	// The published depth texture never carries multisampling; under priming
	// the pre-pass writes the multisampled attachment instead and the copy
	// pass resolves into this one.
	var depthTexture *metadata.TargetHandle
	if decisions.DepthCopy || decisions.DepthPrepass || summary.NeedsDepth || camera.RequiresDepthTexture {
		depthTexture, err = fs.acquireShared(camera, &shared.DepthTexture, camera.Stack+".depth_texture", metadata.TargetDescriptor{
			DepthFormat: vk.FormatD32Sfloat,
			Width:       width,
			Height:      height,
			SampleCount: 1,
			Usage:       metadata.TARGET_USAGE_RENDER | metadata.TARGET_USAGE_SAMPLED | metadata.TARGET_USAGE_COPY,
		})
		if err != nil {
			return nil, err
		}
	}

	wantsNormals := summary.NeedsNormals || camera.DebugViewMode == metadata.RENDERER_VIEW_MODE_NORMALS
	var normals *metadata.TargetHandle
	if decisions.DepthPrepass && wantsNormals {
		normals, err = fs.acquireShared(camera, &shared.Normals, camera.Stack+".normals", metadata.TargetDescriptor{
			Format:      vk.FormatR8g8b8a8Snorm,
			Width:       width,
			Height:      height,
			SampleCount: 1,
			Usage:       metadata.TARGET_USAGE_RENDER | metadata.TARGET_USAGE_SAMPLED,
		})
		if err != nil {
			return nil, err
		}
	}

	var motionTarget *metadata.TargetHandle
	if decisions.MotionVectors {
		motionTarget, err = fs.acquireShared(camera, &shared.Motion, camera.Stack+".motion", metadata.TargetDescriptor{
			Format:      vk.FormatR16g16Sfloat,
			Width:       width,
			Height:      height,
			SampleCount: 1,
			Usage:       metadata.TARGET_USAGE_RENDER | metadata.TARGET_USAGE_SAMPLED,
		})
		if err != nil {
			return nil, err
		}
	}

	var colorSnapshot *metadata.TargetHandle
	if decisions.ColorCopy {
		colorSnapshot, err = fs.acquireShared(camera, &shared.ColorCopy, camera.Stack+".color_copy", metadata.TargetDescriptor{
			Format:      colorFormat,
			Width:       width,
			Height:      height,
			SampleCount: 1,
			Usage:       metadata.TARGET_USAGE_SAMPLED | metadata.TARGET_USAGE_COPY,
			Filter:      metadata.TextureFilterModeLinear,
		})
		if err != nil {
			return nil, err
		}
	}

	var layersTarget *metadata.TargetHandle
	if decisions.RenderingLayers {
		layersTarget, err = fs.acquireShared(camera, &shared.RenderingLayers, camera.Stack+".rendering_layers", metadata.TargetDescriptor{
			Format:      vk.FormatR8Uint,
			Width:       width,
			Height:      height,
			SampleCount: 1,
			Usage:       metadata.TARGET_USAGE_RENDER | metadata.TARGET_USAGE_SAMPLED,
		})
		if err != nil {
			return nil, err
		}
	}

	var shadowMap *metadata.TargetHandle
	if !decisions.ShadowsSuppressed {
		shadowMap, err = fs.acquireShared(camera, &shared.ShadowMap, camera.Stack+".shadow_map", metadata.TargetDescriptor{
			DepthFormat: vk.FormatD32Sfloat,
			Width:       shadowMapExtent,
			Height:      shadowMapExtent,
			SampleCount: 1,
			Usage:       metadata.TARGET_USAGE_RENDER | metadata.TARGET_USAGE_SAMPLED,
			Filter:      metadata.TextureFilterModeLinear,
		})
		if err != nil {
			return nil, err
		}
	}

	queue := containers.NewOrderedQueue[metadata.RenderPassEvent, *metadata.BoundPass]()
	sequence := 0
	enqueue := func(pass metadata.RenderPass, event metadata.RenderPassEvent, bindings metadata.PassBindings) {
		queue.Enqueue(event, &metadata.BoundPass{
			Pass:     pass,
			Event:    event,
			Sequence: sequence,
			Bindings: bindings,
		})
		sequence++
	}

	if !decisions.ShadowsSuppressed {
		enqueue(fs.shadow, metadata.PASS_EVENT_BEFORE_SHADOWS, metadata.PassBindings{
			Depth:      shadowMap,
			DepthLoad:  metadata.ATTACHMENT_LOAD_OPERATION_CLEAR,
			DepthStore: metadata.ATTACHMENT_STORE_OPERATION_STORE,
		})
	}

	if decisions.DepthPrepass {
		// A priming pre-pass writes the multisampled main attachment so the
		// opaque pass can load it; every other pre-pass publishes the
		// sampleable depth texture directly.
		prepassDepth := depthTexture
		if decisions.DepthPriming {
			prepassDepth = depth
		}
		var prepassLayers *metadata.TargetHandle
		if decisions.RenderingLayers && camera.RenderingLayersEvent == metadata.PASS_EVENT_BEFORE_PRE_PASSES {
			prepassLayers = layersTarget
		}
		enqueue(fs.prepass, metadata.PASS_EVENT_BEFORE_PRE_PASSES, metadata.PassBindings{
			Depth:              prepassDepth,
			Normals:            normals,
			Layers:             prepassLayers,
			DepthLoad:          metadata.ATTACHMENT_LOAD_OPERATION_CLEAR,
			DepthStore:         metadata.ATTACHMENT_STORE_OPERATION_STORE,
			ForwardOnlyObjects: decisions.PrepassForwardOnly,
		})
	}

	// Overlay cameras draw over the base camera's colour; only the base
	// clears. Primed depth must survive into the opaque pass untouched.
	colorLoad := metadata.ATTACHMENT_LOAD_OPERATION_CLEAR
	if !camera.IsBase {
		colorLoad = metadata.ATTACHMENT_LOAD_OPERATION_LOAD
	}
	depthLoad := metadata.ATTACHMENT_LOAD_OPERATION_CLEAR
	if decisions.DepthPriming {
		depthLoad = metadata.ATTACHMENT_LOAD_OPERATION_LOAD
	}
	var opaqueLayers *metadata.TargetHandle
	if decisions.RenderingLayers && camera.RenderingLayersEvent == metadata.PASS_EVENT_BEFORE_OPAQUES {
		opaqueLayers = layersTarget
	}
	enqueue(fs.opaque, metadata.PASS_EVENT_BEFORE_OPAQUES, metadata.PassBindings{
		Color:      color,
		Depth:      depth,
		Layers:     opaqueLayers,
		ColorLoad:  colorLoad,
		ColorStore: metadata.ATTACHMENT_STORE_OPERATION_STORE,
		DepthLoad:  depthLoad,
		DepthStore: metadata.ATTACHMENT_STORE_OPERATION_STORE,
	})

	if decisions.DepthCopy {
		enqueue(fs.copyDepth, decisions.CopyDepthEvent, metadata.PassBindings{
			Depth:       depth,
			Destination: depthTexture,
		})
	}

	enqueue(fs.skybox, metadata.PASS_EVENT_BEFORE_SKYBOX, metadata.PassBindings{
		Color:      color,
		Depth:      depth,
		ColorLoad:  metadata.ATTACHMENT_LOAD_OPERATION_LOAD,
		ColorStore: metadata.ATTACHMENT_STORE_OPERATION_STORE,
		DepthLoad:  metadata.ATTACHMENT_LOAD_OPERATION_LOAD,
		DepthStore: metadata.ATTACHMENT_STORE_OPERATION_STORE,
	})

	if decisions.ColorCopy {
		enqueue(fs.copyColor, metadata.PASS_EVENT_AFTER_SKYBOX, metadata.PassBindings{
			Color:       color,
			Destination: colorSnapshot,
		})
	}

	if decisions.MotionVectors {
		motionDepth := depthTexture
		if motionDepth == nil {
			motionDepth = depth
		}
		enqueue(fs.motion, metadata.PASS_EVENT_AFTER_OPAQUES, metadata.PassBindings{
			Color:      motionTarget,
			Depth:      motionDepth,
			ColorLoad:  metadata.ATTACHMENT_LOAD_OPERATION_CLEAR,
			ColorStore: metadata.ATTACHMENT_STORE_OPERATION_STORE,
		})
	}

	// The transparent pass is the last writer of the main attachments, so it
	// decides what reaches main memory: resolve multisampled colour when the
	// device can, and discard depth unless something still reads it later.
	colorStore := metadata.ATTACHMENT_STORE_OPERATION_STORE
	if samples > 1 && fs.capabilities.SupportsMultisampleAutoResolve() {
		colorStore = metadata.ATTACHMENT_STORE_OPERATION_STORE_RESOLVE
	}
	depthStore := metadata.ATTACHMENT_STORE_OPERATION_DONT_CARE
	if summary.NeededAfter(metadata.PASS_INPUT_DEPTH, metadata.PASS_EVENT_AFTER_TRANSPARENTS) ||
		(decisions.DepthCopy && decisions.CopyDepthEvent >= metadata.PASS_EVENT_AFTER_TRANSPARENTS) {
		depthStore = metadata.ATTACHMENT_STORE_OPERATION_STORE
	}
	enqueue(fs.transparent, metadata.PASS_EVENT_BEFORE_TRANSPARENTS, metadata.PassBindings{
		Color:      color,
		Depth:      depth,
		ColorLoad:  metadata.ATTACHMENT_LOAD_OPERATION_LOAD,
		ColorStore: colorStore,
		DepthLoad:  metadata.ATTACHMENT_LOAD_OPERATION_LOAD,
		DepthStore: depthStore,
	})

	for _, pass := range fs.external {
		declaration := pass.Declaration()
		bindings := metadata.PassBindings{
			Color:      color,
			ColorLoad:  metadata.ATTACHMENT_LOAD_OPERATION_LOAD,
			ColorStore: metadata.ATTACHMENT_STORE_OPERATION_STORE,
		}
		if declaration.Inputs.Has(metadata.PASS_INPUT_DEPTH) {
			bindings.Depth = depthTexture
		}
		if declaration.Inputs.Has(metadata.PASS_INPUT_NORMALS) {
			bindings.Normals = normals
		}
		if declaration.Inputs.Has(metadata.PASS_INPUT_COLOR) && colorSnapshot != nil {
			bindings.Destination = colorSnapshot
		}
		// Temporal passes sample the previous frame's colour.
		if colorHistory != nil && declaration.Inputs.Has(metadata.PASS_INPUT_COLOR|metadata.PASS_INPUT_MOTION) {
			bindings.History = colorHistory
		}
		enqueue(pass, declaration.Event, bindings)
	}

	plan := &metadata.FramePlan{
		Camera:    camera,
		Strategy:  strategy,
		Decisions: decisions,
		Passes:    append([]*metadata.BoundPass(nil), queue.Values()...),
	}
	return plan, nil
}

// acquireShared resolves one stack-shared target: overlay cameras borrow
// the base camera's handle unchanged, the base (or a stack rendering its
// first camera) acquires through the descriptor-keyed cache.
func (fs *FrameSchedulerSystem) acquireShared(camera *metadata.CameraConfig, slot **metadata.TargetHandle,
	name string, descriptor metadata.TargetDescriptor) (*metadata.TargetHandle, error) {
	if !camera.IsBase && *slot != nil {
		return (*slot).Borrow(), nil
	}
	handle, err := fs.targets.Acquire(name, descriptor)
	if err != nil {
		core.LogError("camera '%s': frame abandoned, could not acquire target '%s'", camera.Name, name)
		return nil, err
	}
	*slot = handle
	return handle, nil
}
