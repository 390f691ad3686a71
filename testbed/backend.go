package testbed

import (
	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

/**
 * @brief A backend that records what it is asked to do instead of talking
 * to a GPU. Lets the whole scheduling pipeline run headless; the demo
 * prints the emitted plan from these logs.
 */
type NoopBackend struct {
	// Draw scopes submitted since construction, in order.
	Draws []metadata.DrawScope
}

func NewNoopBackend() *NoopBackend {
	return &NoopBackend{}
}

func (b *NoopBackend) BeginFrame(deltaTime float64) error { return nil }
func (b *NoopBackend) EndFrame(deltaTime float64) error   { return nil }

func (b *NoopBackend) PassBegin(pass *metadata.BoundPass) error {
	core.LogDebug("begin %s (event %d)", pass.Pass.Declaration().Name, pass.Event)
	return nil
}

func (b *NoopBackend) PassEnd(pass *metadata.BoundPass) error {
	return nil
}

func (b *NoopBackend) Draw(scope metadata.DrawScope) error {
	b.Draws = append(b.Draws, scope)
	return nil
}

func (b *NoopBackend) Copy(src, dst *metadata.TargetHandle) error {
	core.LogDebug("copy %s -> %s", src.Slot, dst.Slot)
	return nil
}

func (b *NoopBackend) BlitToPresentation(src *metadata.TargetHandle) error {
	core.LogDebug("blit %s -> presentation", src.Slot)
	return nil
}

// ReadPixels returns a zeroed RGBA8 buffer of the target's extent.
func (b *NoopBackend) ReadPixels(src *metadata.TargetHandle) ([]uint8, error) {
	return make([]uint8, src.Descriptor.Width*src.Descriptor.Height*4), nil
}

var _ metadata.RendererBackend = (*NoopBackend)(nil)

/**
 * @brief A CPU-side target backing. Allocations are bookkeeping records
 * only; used by the demo and wherever no Vulkan device is around.
 */
type SoftwareBacking struct {
	Live int
}

func NewSoftwareBacking() *SoftwareBacking {
	return &SoftwareBacking{}
}

func (sb *SoftwareBacking) Create(name string, descriptor metadata.TargetDescriptor) (*metadata.Texture, error) {
	sb.Live++
	return &metadata.Texture{Name: name}, nil
}

func (sb *SoftwareBacking) Release(texture *metadata.Texture) {
	sb.Live--
}

var _ metadata.TargetBacking = (*SoftwareBacking)(nil)

/**
 * @brief A fixed capability profile. Field-per-answer so demos and tests
 * can model any device class without a driver present.
 */
type StaticCapabilities struct {
	DepthCopy            bool
	MSAAAutoResolve      bool
	MSAATextures         bool
	TiledGLES            bool
	IntermediateDeferred bool
	Deferred             bool
}

// DesktopProfile models a discrete desktop GPU.
func DesktopProfile() *StaticCapabilities {
	return &StaticCapabilities{
		DepthCopy:            true,
		MSAAAutoResolve:      true,
		MSAATextures:         true,
		IntermediateDeferred: true,
		Deferred:             true,
	}
}

// MobileProfile models a tiled GLES-class device.
func MobileProfile() *StaticCapabilities {
	return &StaticCapabilities{
		MSAATextures:         true,
		TiledGLES:            true,
		IntermediateDeferred: true,
	}
}

func (c *StaticCapabilities) SupportsDepthCopy() bool                    { return c.DepthCopy }
func (c *StaticCapabilities) SupportsMultisampleAutoResolve() bool       { return c.MSAAAutoResolve }
func (c *StaticCapabilities) SupportsMultisampledTextures() bool         { return c.MSAATextures }
func (c *StaticCapabilities) IsTiledGLESDevice() bool                    { return c.TiledGLES }
func (c *StaticCapabilities) RequiresIntermediateColorForDeferred() bool { return c.IntermediateDeferred }
func (c *StaticCapabilities) SupportsDeferred() bool                     { return c.Deferred }

var _ metadata.CapabilityOracle = (*StaticCapabilities)(nil)
