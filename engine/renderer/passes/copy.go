package passes

import (
	"fmt"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

/**
 * @brief Copies (or resolves, under depth priming) the active depth buffer
 * into the published sampleable depth texture.
 */
type CopyDepthPass struct {
	declaration metadata.PassDeclaration
}

func NewCopyDepthPass() *CopyDepthPass {
	return &CopyDepthPass{
		declaration: metadata.PassDeclaration{
			Name:  "Pass.Builtin.CopyDepth",
			Event: metadata.PASS_EVENT_AFTER_OPAQUES,
		},
	}
}

func (p *CopyDepthPass) Declaration() *metadata.PassDeclaration {
	return &p.declaration
}

func (p *CopyDepthPass) Execute(backend metadata.RendererBackend, frame *metadata.FrameInfo, bindings *metadata.PassBindings) error {
	if bindings.Depth == nil || bindings.Destination == nil {
		err := fmt.Errorf("copy depth pass executed without source/destination bindings")
		core.LogError(err.Error())
		return err
	}
	return backend.Copy(bindings.Depth, bindings.Destination)
}

/**
 * @brief Snapshots the intermediate colour target so later passes can
 * sample what was rendered up to this point (grab-pass semantics).
 */
type CopyColorPass struct {
	declaration metadata.PassDeclaration
}

func NewCopyColorPass() *CopyColorPass {
	return &CopyColorPass{
		declaration: metadata.PassDeclaration{
			Name:  "Pass.Builtin.CopyColor",
			Event: metadata.PASS_EVENT_AFTER_SKYBOX,
		},
	}
}

func (p *CopyColorPass) Declaration() *metadata.PassDeclaration {
	return &p.declaration
}

func (p *CopyColorPass) Execute(backend metadata.RendererBackend, frame *metadata.FrameInfo, bindings *metadata.PassBindings) error {
	if bindings.Color == nil || bindings.Destination == nil {
		err := fmt.Errorf("copy color pass executed without source/destination bindings")
		core.LogError(err.Error())
		return err
	}
	return backend.Copy(bindings.Color, bindings.Destination)
}
