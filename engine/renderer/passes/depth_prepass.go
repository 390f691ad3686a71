package passes

import (
	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

/**
 * @brief Depth-only (or depth+normals) rendering of opaque geometry before
 * the colour passes. Produces the sampleable depth texture when the
 * platform cannot copy depth, the normals texture when any pass wants it,
 * and the primed depth buffer when depth priming is on.
 */
type DepthPrepass struct {
	declaration metadata.PassDeclaration
}

func NewDepthPrepass() *DepthPrepass {
	return &DepthPrepass{
		declaration: metadata.PassDeclaration{
			Name:  "Pass.Builtin.DepthPrepass",
			Event: metadata.PASS_EVENT_BEFORE_PRE_PASSES,
		},
	}
}

func (p *DepthPrepass) Declaration() *metadata.PassDeclaration {
	return &p.declaration
}

func (p *DepthPrepass) Execute(backend metadata.RendererBackend, frame *metadata.FrameInfo, bindings *metadata.PassBindings) error {
	if err := backend.PassBegin(boundPass(p, bindings)); err != nil {
		core.LogError("depth pre-pass failed to begin")
		return err
	}

	scope := metadata.DRAW_SCOPE_DEPTH_ONLY
	if bindings.Normals != nil {
		scope = metadata.DRAW_SCOPE_DEPTH_NORMALS
		if bindings.ForwardOnlyObjects {
			scope = metadata.DRAW_SCOPE_FORWARD_ONLY_DEPTH_NORMALS
		}
	}
	if err := backend.Draw(scope); err != nil {
		return err
	}
	return backend.PassEnd(boundPass(p, bindings))
}

/**
 * @brief Renders per-pixel motion vectors for temporal effects. Samples
 * depth to reconstruct the previous frame's positions.
 */
type MotionVectorsPass struct {
	declaration metadata.PassDeclaration
}

func NewMotionVectorsPass() *MotionVectorsPass {
	return &MotionVectorsPass{
		declaration: metadata.PassDeclaration{
			Name:   "Pass.Builtin.MotionVectors",
			Event:  metadata.PASS_EVENT_AFTER_OPAQUES,
			Inputs: metadata.PASS_INPUT_DEPTH,
		},
	}
}

func (p *MotionVectorsPass) Declaration() *metadata.PassDeclaration {
	return &p.declaration
}

func (p *MotionVectorsPass) Execute(backend metadata.RendererBackend, frame *metadata.FrameInfo, bindings *metadata.PassBindings) error {
	if err := backend.PassBegin(boundPass(p, bindings)); err != nil {
		core.LogError("motion vectors pass failed to begin")
		return err
	}
	if err := backend.Draw(metadata.DRAW_SCOPE_MOTION); err != nil {
		return err
	}
	return backend.PassEnd(boundPass(p, bindings))
}
