/*
Demo application state for exercising the frame scheduler without a GPU:
a base world camera with a UI overlay, plus an external outline pass that
pulls depth and normals into the frame.
*/
package testbed

import (
	"github.com/spaghettifunk/prisma/engine/config"
	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
	"github.com/spaghettifunk/prisma/engine/systems"
)

/**
 * @brief An externally registered pass: draws silhouette outlines during
 * post processing by sampling the depth and normals textures. Its
 * declaration is what forces the pre-pass into the frame.
 */
type OutlinePass struct {
	declaration metadata.PassDeclaration
}

func NewOutlinePass() *OutlinePass {
	return &OutlinePass{
		declaration: metadata.PassDeclaration{
			Name:   "Pass.Testbed.Outline",
			Event:  metadata.PASS_EVENT_BEFORE_POST_PROCESSING,
			Inputs: metadata.PASS_INPUT_DEPTH | metadata.PASS_INPUT_NORMALS,
		},
	}
}

func (p *OutlinePass) Declaration() *metadata.PassDeclaration {
	return &p.declaration
}

func (p *OutlinePass) Execute(backend metadata.RendererBackend, frame *metadata.FrameInfo, bindings *metadata.PassBindings) error {
	if err := backend.PassBegin(&metadata.BoundPass{Pass: p, Event: p.declaration.Event, Bindings: *bindings}); err != nil {
		return err
	}
	if err := backend.Draw(metadata.DRAW_SCOPE_OPAQUE); err != nil {
		return err
	}
	return backend.PassEnd(&metadata.BoundPass{Pass: p, Event: p.declaration.Event, Bindings: *bindings})
}

type TestGame struct {
	world   *metadata.CameraConfig
	overlay *metadata.CameraConfig
}

func NewTestGame() *TestGame {
	return &TestGame{}
}

/**
 * @brief Builds the two-camera stack from the pipeline configuration and
 * registers the demo passes with the renderer.
 */
func (g *TestGame) Initialize(renderer *systems.RendererSystem, cfg *config.PipelineConfig, width, height uint32) error {
	g.world = &metadata.CameraConfig{
		Name:                 "world",
		Stack:                "world",
		IsBase:               true,
		Width:                width,
		Height:               height,
		RequiresDepthTexture: true,
	}
	if err := cfg.ApplyTo(g.world); err != nil {
		return err
	}

	g.overlay = &metadata.CameraConfig{
		Name:          "ui",
		Stack:         "world",
		IsLastInStack: true,
		Width:         width,
		Height:        height,
		RenderScale:   1.0,
		MSAASamples:   g.world.MSAASamples,
		HDR:           g.world.HDR,
	}

	if err := renderer.RegisterPass(NewOutlinePass()); err != nil {
		return err
	}
	core.LogInfo("testbed: world + ui stack at %dx%d, strategy %s", width, height, g.world.Strategy)
	return nil
}

// ApplyConfig pushes a hot-reloaded configuration onto the base camera.
func (g *TestGame) ApplyConfig(cfg *config.PipelineConfig) error {
	return cfg.ApplyTo(g.world)
}

// OnResize updates the camera extents to the new backbuffer size.
func (g *TestGame) OnResize(width, height uint32) {
	g.world.Width, g.world.Height = width, height
	g.overlay.Width, g.overlay.Height = width, height
}

// BuildPacket assembles the frame's render packet, base camera first.
func (g *TestGame) BuildPacket(deltaTime float64) *metadata.RenderPacket {
	return &metadata.RenderPacket{
		DeltaTime: deltaTime,
		Cameras:   []*metadata.CameraConfig{g.world, g.overlay},
	}
}
