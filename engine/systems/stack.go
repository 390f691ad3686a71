package systems

import (
	"fmt"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
	"github.com/spaghettifunk/prisma/engine/renderer/passes"
)

/**
 * @brief The transient targets one camera stack shares across its cameras.
 * The base camera's scheduling run fills the handles; overlay cameras only
 * ever receive borrowed views of them.
 */
type StackResources struct {
	/** @brief The presentation surface, wrapped as a handle. Set every frame. */
	Backbuffer *metadata.TargetHandle
	/** @brief The intermediate colour target currently written to. */
	Color *metadata.TargetHandle
	/** @brief Previous frame's colour, kept when temporal AA is active. */
	ColorHistory *metadata.TargetHandle
	/** @brief The (possibly multisampled) depth attachment. */
	Depth *metadata.TargetHandle
	/** @brief The published single-sampled depth texture passes may sample. */
	DepthTexture *metadata.TargetHandle
	/** @brief The normals texture a depth-normals pre-pass produced. */
	Normals *metadata.TargetHandle
	/** @brief The motion vectors texture. */
	Motion *metadata.TargetHandle
	/** @brief The opaque colour snapshot produced by the colour copy pass. */
	ColorCopy *metadata.TargetHandle
	/** @brief The rendering-layers texture. */
	RenderingLayers *metadata.TargetHandle
	/** @brief The main light shadow map. */
	ShadowMap *metadata.TargetHandle
}

/**
 * @brief Coordinates the cameras of each stack: the base camera owns the
 * stack's transient targets, overlays borrow them, and the last camera
 * resolves the shared colour target to the presentation surface exactly
 * once. Cameras arrive in stack order inside the render packet.
 */
type CameraStackSystem struct {
	targets *RenderTargetSystem
	stacks  map[string]*StackResources

	finalBlit *passes.FinalBlitPass
	capture   *passes.CapturePass
}

func NewCameraStackSystem(targets *RenderTargetSystem) (*CameraStackSystem, error) {
	if targets == nil {
		return nil, fmt.Errorf("func NewCameraStackSystem requires a render target system")
	}
	return &CameraStackSystem{
		targets:   targets,
		stacks:    make(map[string]*StackResources),
		finalBlit: passes.NewFinalBlitPass(),
		capture:   passes.NewCapturePass(),
	}, nil
}

/**
 * @brief Fetches (or, for a base camera, resets) the shared resource record
 * of the camera's stack. An overlay arriving before its base is a packet
 * ordering bug; it gets a fresh record and a warning rather than a crash.
 */
func (cs *CameraStackSystem) Begin(camera *metadata.CameraConfig, backbuffer *metadata.TargetHandle) *StackResources {
	shared, ok := cs.stacks[camera.Stack]
	if camera.IsBase || !ok {
		if !camera.IsBase {
			core.LogWarn("overlay camera '%s' scheduled before its base; stack '%s' starts empty", camera.Name, camera.Stack)
		}
		shared = &StackResources{}
		cs.stacks[camera.Stack] = shared
	}
	shared.Backbuffer = backbuffer
	return shared
}

// IsFirstDepthWriter reports whether the camera writes its stack's depth
// attachment first. Depth priming is only correct for that camera.
func (cs *CameraStackSystem) IsFirstDepthWriter(camera *metadata.CameraConfig) bool {
	return camera.IsBase
}

/**
 * @brief Runs after a camera was scheduled. On the last camera of the stack
 * it appends the final resolve (and capture, when requested) to the plan and
 * swaps the colour double buffer so temporal passes can sample this frame's
 * result next frame.
 */
func (cs *CameraStackSystem) Finalize(camera *metadata.CameraConfig, plan *metadata.FramePlan, shared *StackResources) error {
	if !camera.IsLastInStack {
		return nil
	}

	// The blit follows the stack's resources, not the last camera's own
	// decisions: whenever anything rendered into the intermediate, its
	// contents must reach the presentation surface.
	if shared.Color != nil {
		blit := &metadata.BoundPass{
			Pass:     cs.finalBlit,
			Event:    metadata.PASS_EVENT_AFTER_RENDERING,
			Sequence: len(plan.Passes),
			Bindings: metadata.PassBindings{Color: shared.Color},
		}
		plan.Passes = append(plan.Passes, blit)
	}

	if camera.CaptureActions {
		if shared.Color == nil {
			return fmt.Errorf("camera '%s' requested capture but no intermediate colour target exists", camera.Name)
		}
		capture := &metadata.BoundPass{
			Pass:     cs.capture,
			Event:    metadata.PASS_EVENT_AFTER_RENDERING,
			Sequence: len(plan.Passes),
			Bindings: metadata.PassBindings{Color: shared.Color},
		}
		plan.Passes = append(plan.Passes, capture)
	}

	// Handle swap only; pixel data stays where it is.
	if shared.Color != nil && shared.ColorHistory != nil {
		if err := cs.targets.Swap(shared.Color.Slot, shared.ColorHistory.Slot); err != nil {
			return err
		}
		shared.Color, shared.ColorHistory = shared.ColorHistory, shared.Color
	}
	return nil
}

// Shutdown drops every stack record. Backing textures belong to the target
// system and are released there.
func (cs *CameraStackSystem) Shutdown() {
	cs.stacks = make(map[string]*StackResources)
}
