package passes

import (
	"fmt"
	"image"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

/**
 * @brief Resolves the stack's intermediate colour target to the
 * presentation surface. Only the last camera of a stack schedules it.
 */
type FinalBlitPass struct {
	declaration metadata.PassDeclaration
}

func NewFinalBlitPass() *FinalBlitPass {
	return &FinalBlitPass{
		declaration: metadata.PassDeclaration{
			Name:  "Pass.Builtin.FinalBlit",
			Event: metadata.PASS_EVENT_AFTER_RENDERING,
		},
	}
}

func (p *FinalBlitPass) Declaration() *metadata.PassDeclaration {
	return &p.declaration
}

func (p *FinalBlitPass) Execute(backend metadata.RendererBackend, frame *metadata.FrameInfo, bindings *metadata.PassBindings) error {
	if bindings.Color == nil {
		err := fmt.Errorf("final blit executed without a colour binding")
		core.LogError(err.Error())
		return err
	}
	return backend.BlitToPresentation(bindings.Color)
}

/**
 * @brief Reads the final colour target back and writes it out as PNG,
 * undoing the resolution scale so captures match the presented frame.
 * Runs after the final blit on the last camera of a stack.
 */
type CapturePass struct {
	declaration metadata.PassDeclaration
}

func NewCapturePass() *CapturePass {
	return &CapturePass{
		declaration: metadata.PassDeclaration{
			Name:   "Pass.Builtin.Capture",
			Event:  metadata.PASS_EVENT_AFTER_RENDERING,
			Inputs: metadata.PASS_INPUT_COLOR,
		},
	}
}

func (p *CapturePass) Declaration() *metadata.PassDeclaration {
	return &p.declaration
}

func (p *CapturePass) Execute(backend metadata.RendererBackend, frame *metadata.FrameInfo, bindings *metadata.PassBindings) error {
	if bindings.Color == nil {
		err := fmt.Errorf("capture pass executed without a colour binding")
		core.LogError(err.Error())
		return err
	}

	pixels, err := backend.ReadPixels(bindings.Color)
	if err != nil {
		core.LogError("capture readback failed: %s", err.Error())
		return err
	}

	src := &image.RGBA{
		Pix:    pixels,
		Stride: int(bindings.Color.Descriptor.Width) * 4,
		Rect:   image.Rect(0, 0, int(bindings.Color.Descriptor.Width), int(bindings.Color.Descriptor.Height)),
	}

	out := image.Image(src)
	camera := frame.Camera
	if camera != nil && camera.UsesScaling() {
		dst := image.NewRGBA(image.Rect(0, 0, int(camera.Width), int(camera.Height)))
		xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
		out = dst
	}

	path := "capture.png"
	if camera != nil && camera.CapturePath != "" {
		path = camera.CapturePath
	}
	file, err := os.Create(path)
	if err != nil {
		core.LogError("failed to create capture file '%s': %s", path, err.Error())
		return err
	}
	defer file.Close()

	if err := png.Encode(file, out); err != nil {
		core.LogError("failed to encode capture '%s': %s", path, err.Error())
		return err
	}
	core.LogInfo("frame %d captured to '%s'", frame.FrameNumber, path)
	return nil
}
