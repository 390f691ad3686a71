package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/prisma/engine/core"
)

/**
 * @brief The slice of the Vulkan device the target backing and the
 * capability oracle need. The owning application creates instance, surface
 * and logical device; this package only consumes them.
 */
type VulkanDevice struct {
	PhysicalDevice vk.PhysicalDevice
	LogicalDevice  vk.Device
	Allocator      *vk.AllocationCallbacks

	Properties       vk.PhysicalDeviceProperties
	MemoryProperties vk.PhysicalDeviceMemoryProperties

	DepthFormat vk.Format
}

func NewVulkanDevice(physical vk.PhysicalDevice, logical vk.Device) (*VulkanDevice, error) {
	device := &VulkanDevice{
		PhysicalDevice: physical,
		LogicalDevice:  logical,
	}

	vk.GetPhysicalDeviceProperties(physical, &device.Properties)
	device.Properties.Deref()
	vk.GetPhysicalDeviceMemoryProperties(physical, &device.MemoryProperties)
	device.MemoryProperties.Deref()

	if !DeviceDetectDepthFormat(device) {
		err := fmt.Errorf("no depth/stencil format with attachment support found")
		core.LogError(err.Error())
		return nil, err
	}
	return device, nil
}

func DeviceDetectDepthFormat(device *VulkanDevice) bool {
	// Format candidates
	candidates := []vk.Format{
		vk.FormatD32Sfloat,
		vk.FormatD32SfloatS8Uint,
		vk.FormatD24UnormS8Uint,
	}
	flags := vk.FormatFeatureDepthStencilAttachmentBit
	for i := 0; i < len(candidates); i++ {
		var properties vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(device.PhysicalDevice, candidates[i], &properties)
		properties.Deref()
		if (vk.FormatFeatureFlagBits(properties.LinearTilingFeatures) & flags) == flags {
			device.DepthFormat = candidates[i]
			return true
		} else if (vk.FormatFeatureFlagBits(properties.OptimalTilingFeatures) & flags) == flags {
			device.DepthFormat = candidates[i]
			return true
		}
	}
	return false
}

func (device *VulkanDevice) findMemoryType(typeBits uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < device.MemoryProperties.MemoryTypeCount; i++ {
		memType := device.MemoryProperties.MemoryTypes[i]
		memType.Deref()
		if typeBits&(1<<i) != 0 && (memType.PropertyFlags&properties) == properties {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no suitable memory type found for type bits 0x%x", typeBits)
}

// formatSupportsOptimal reports whether the format carries all the given
// optimal-tiling features on this device.
func (device *VulkanDevice) formatSupportsOptimal(format vk.Format, flags vk.FormatFeatureFlagBits) bool {
	var properties vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(device.PhysicalDevice, format, &properties)
	properties.Deref()
	return (vk.FormatFeatureFlagBits(properties.OptimalTilingFeatures) & flags) == flags
}
