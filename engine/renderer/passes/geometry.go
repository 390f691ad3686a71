package passes

import (
	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

/**
 * @brief Draws all opaque scene geometry. Always scheduled; in deferred
 * mode its body is the gbuffer geometry pass, but the scheduler does not
 * care about the difference.
 */
type OpaquePass struct {
	declaration metadata.PassDeclaration
}

func NewOpaquePass() *OpaquePass {
	return &OpaquePass{
		declaration: metadata.PassDeclaration{
			Name:  "Pass.Builtin.Opaque",
			Event: metadata.PASS_EVENT_BEFORE_OPAQUES,
		},
	}
}

func (p *OpaquePass) Declaration() *metadata.PassDeclaration {
	return &p.declaration
}

func (p *OpaquePass) Execute(backend metadata.RendererBackend, frame *metadata.FrameInfo, bindings *metadata.PassBindings) error {
	if err := backend.PassBegin(boundPass(p, bindings)); err != nil {
		core.LogError("opaque pass failed to begin")
		return err
	}
	scope := metadata.DRAW_SCOPE_OPAQUE
	if frame.Strategy == metadata.STRATEGY_DEFERRED {
		scope = metadata.DRAW_SCOPE_GBUFFER
	}
	if err := backend.Draw(scope); err != nil {
		return err
	}
	return backend.PassEnd(boundPass(p, bindings))
}

/** @brief Draws the skybox between opaques and transparents. */
type SkyboxPass struct {
	declaration metadata.PassDeclaration
}

func NewSkyboxPass() *SkyboxPass {
	return &SkyboxPass{
		declaration: metadata.PassDeclaration{
			Name:  "Pass.Builtin.Skybox",
			Event: metadata.PASS_EVENT_BEFORE_SKYBOX,
		},
	}
}

func (p *SkyboxPass) Declaration() *metadata.PassDeclaration {
	return &p.declaration
}

func (p *SkyboxPass) Execute(backend metadata.RendererBackend, frame *metadata.FrameInfo, bindings *metadata.PassBindings) error {
	if err := backend.PassBegin(boundPass(p, bindings)); err != nil {
		core.LogError("skybox pass failed to begin")
		return err
	}
	if err := backend.Draw(metadata.DRAW_SCOPE_SKYBOX); err != nil {
		return err
	}
	return backend.PassEnd(boundPass(p, bindings))
}

/** @brief Draws transparent geometry back to front. */
type TransparentPass struct {
	declaration metadata.PassDeclaration
}

func NewTransparentPass() *TransparentPass {
	return &TransparentPass{
		declaration: metadata.PassDeclaration{
			Name:  "Pass.Builtin.Transparent",
			Event: metadata.PASS_EVENT_BEFORE_TRANSPARENTS,
		},
	}
}

func (p *TransparentPass) Declaration() *metadata.PassDeclaration {
	return &p.declaration
}

func (p *TransparentPass) Execute(backend metadata.RendererBackend, frame *metadata.FrameInfo, bindings *metadata.PassBindings) error {
	if err := backend.PassBegin(boundPass(p, bindings)); err != nil {
		core.LogError("transparent pass failed to begin")
		return err
	}
	if err := backend.Draw(metadata.DRAW_SCOPE_TRANSPARENT); err != nil {
		return err
	}
	return backend.PassEnd(boundPass(p, bindings))
}

/** @brief Renders the main light shadow map. */
type ShadowPass struct {
	declaration metadata.PassDeclaration
}

func NewShadowPass() *ShadowPass {
	return &ShadowPass{
		declaration: metadata.PassDeclaration{
			Name:  "Pass.Builtin.Shadows",
			Event: metadata.PASS_EVENT_BEFORE_SHADOWS,
		},
	}
}

func (p *ShadowPass) Declaration() *metadata.PassDeclaration {
	return &p.declaration
}

func (p *ShadowPass) Execute(backend metadata.RendererBackend, frame *metadata.FrameInfo, bindings *metadata.PassBindings) error {
	if err := backend.PassBegin(boundPass(p, bindings)); err != nil {
		core.LogError("shadow pass failed to begin")
		return err
	}
	if err := backend.Draw(metadata.DRAW_SCOPE_SHADOW_CASTERS); err != nil {
		return err
	}
	return backend.PassEnd(boundPass(p, bindings))
}

// boundPass rewraps a pass with the bindings the scheduler configured so
// backend begin/end calls see the same record the plan carries.
func boundPass(pass metadata.RenderPass, bindings *metadata.PassBindings) *metadata.BoundPass {
	return &metadata.BoundPass{
		Pass:     pass,
		Event:    pass.Declaration().Event,
		Bindings: *bindings,
	}
}
