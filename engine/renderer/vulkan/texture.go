package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

type VulkanImage struct {
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Width  uint32
	Height uint32
}

/**
 * @brief metadata.TargetBacking implemented on a Vulkan device. Creates and
 * releases the images behind transient render targets; the scheduler core
 * never sees anything below the metadata.Texture it returns.
 */
type TextureBacking struct {
	device *VulkanDevice
}

func NewTextureBacking(device *VulkanDevice) *TextureBacking {
	return &TextureBacking{device: device}
}

func (tb *TextureBacking) Create(name string, descriptor metadata.TargetDescriptor) (*metadata.Texture, error) {
	isDepth := descriptor.DepthFormat != vk.FormatUndefined

	format := descriptor.Format
	aspect := vk.ImageAspectColorBit
	usage := vk.ImageUsageColorAttachmentBit
	if isDepth {
		format = descriptor.DepthFormat
		aspect = vk.ImageAspectDepthBit
		usage = vk.ImageUsageDepthStencilAttachmentBit
	}
	usageFlags := vk.ImageUsageFlags(usage)
	if descriptor.Usage&metadata.TARGET_USAGE_SAMPLED != 0 {
		usageFlags |= vk.ImageUsageFlags(vk.ImageUsageSampledBit)
	}
	if descriptor.Usage&metadata.TARGET_USAGE_COPY != 0 {
		usageFlags |= vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit | vk.ImageUsageTransferDstBit)
	}

	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  descriptor.Width,
			Height: descriptor.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       sampleCountFlag(descriptor.SampleCount),
		Tiling:        vk.ImageTilingOptimal,
		Usage:         usageFlags,
		InitialLayout: vk.ImageLayoutUndefined,
	}

	image := &VulkanImage{
		Width:  descriptor.Width,
		Height: descriptor.Height,
	}
	if res := vk.CreateImage(tb.device.LogicalDevice, &imageInfo, tb.device.Allocator, &image.Handle); res != vk.Success {
		err := fmt.Errorf("vkCreateImage failed for target '%s': %d", name, res)
		core.LogError(err.Error())
		return nil, err
	}

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(tb.device.LogicalDevice, image.Handle, &memReqs)
	memReqs.Deref()

	memTypeIndex, err := tb.device.findMemoryType(memReqs.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		vk.DestroyImage(tb.device.LogicalDevice, image.Handle, tb.device.Allocator)
		return nil, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memTypeIndex,
	}
	if res := vk.AllocateMemory(tb.device.LogicalDevice, &allocInfo, tb.device.Allocator, &image.Memory); res != vk.Success {
		vk.DestroyImage(tb.device.LogicalDevice, image.Handle, tb.device.Allocator)
		err := fmt.Errorf("vkAllocateMemory failed for target '%s': %d", name, res)
		core.LogError(err.Error())
		return nil, err
	}
	vk.BindImageMemory(tb.device.LogicalDevice, image.Handle, image.Memory, 0)

	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image.Handle,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(aspect),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	if res := vk.CreateImageView(tb.device.LogicalDevice, &viewInfo, tb.device.Allocator, &image.View); res != vk.Success {
		vk.FreeMemory(tb.device.LogicalDevice, image.Memory, tb.device.Allocator)
		vk.DestroyImage(tb.device.LogicalDevice, image.Handle, tb.device.Allocator)
		err := fmt.Errorf("vkCreateImageView failed for target '%s': %d", name, res)
		core.LogError(err.Error())
		return nil, err
	}

	return &metadata.Texture{
		Name:         name,
		InternalData: image,
	}, nil
}

func (tb *TextureBacking) Release(texture *metadata.Texture) {
	if texture == nil || texture.InternalData == nil {
		return
	}
	image, ok := texture.InternalData.(*VulkanImage)
	if !ok {
		core.LogWarn("release of texture '%s' with non-vulkan backing. Nothing was done", texture.Name)
		return
	}
	if image.View != vk.NullImageView {
		vk.DestroyImageView(tb.device.LogicalDevice, image.View, tb.device.Allocator)
	}
	if image.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(tb.device.LogicalDevice, image.Memory, tb.device.Allocator)
	}
	if image.Handle != vk.NullImage {
		vk.DestroyImage(tb.device.LogicalDevice, image.Handle, tb.device.Allocator)
	}
	texture.InternalData = nil
}

func sampleCountFlag(samples uint8) vk.SampleCountFlagBits {
	switch samples {
	case 2:
		return vk.SampleCount2Bit
	case 4:
		return vk.SampleCount4Bit
	case 8:
		return vk.SampleCount8Bit
	default:
		return vk.SampleCount1Bit
	}
}
