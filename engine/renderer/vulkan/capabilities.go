package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

/**
 * @brief metadata.CapabilityOracle backed by device and format properties.
 * All answers are computed once at construction; the resolver treats them
 * as frame-stable facts.
 */
type DeviceCapabilities struct {
	depthCopy         bool
	msaaAutoResolve   bool
	msaaTextures      bool
	tiledGLES         bool
	deferredSupported bool
}

func NewDeviceCapabilities(device *VulkanDevice) *DeviceCapabilities {
	caps := &DeviceCapabilities{}

	// Depth copy needs the depth format to be transfer-capable and sampleable.
	caps.depthCopy = device.formatSupportsOptimal(device.DepthFormat,
		vk.FormatFeatureTransferSrcBit|vk.FormatFeatureSampledImageBit)

	limits := device.Properties.Limits
	limits.Deref()
	colorCounts := vk.SampleCountFlagBits(limits.FramebufferColorSampleCounts)
	caps.msaaTextures = colorCounts&(vk.SampleCount2Bit|vk.SampleCount4Bit|vk.SampleCount8Bit) != 0
	// Vulkan resolves multisampled colour via an explicit resolve attachment,
	// which the backend wires for every subpass, so auto resolve tracks
	// multisample support directly.
	caps.msaaAutoResolve = caps.msaaTextures

	deviceType := device.Properties.DeviceType
	caps.tiledGLES = deviceType == vk.PhysicalDeviceTypeIntegratedGpu ||
		deviceType == vk.PhysicalDeviceTypeCpu

	// Deferred needs at least four simultaneous colour attachments for the
	// gbuffer layout.
	caps.deferredSupported = limits.MaxColorAttachments >= 4

	return caps
}

func (c *DeviceCapabilities) SupportsDepthCopy() bool              { return c.depthCopy }
func (c *DeviceCapabilities) SupportsMultisampleAutoResolve() bool { return c.msaaAutoResolve }
func (c *DeviceCapabilities) SupportsMultisampledTextures() bool   { return c.msaaTextures }
func (c *DeviceCapabilities) IsTiledGLESDevice() bool              { return c.tiledGLES }
func (c *DeviceCapabilities) SupportsDeferred() bool               { return c.deferredSupported }

// RequiresIntermediateColorForDeferred is kept as a per-backend switch; the
// Vulkan geometry/lighting pair renders y-flipped relative to the
// presentation surface, so the workaround stays on here.
func (c *DeviceCapabilities) RequiresIntermediateColorForDeferred() bool { return true }

var _ metadata.CapabilityOracle = (*DeviceCapabilities)(nil)
