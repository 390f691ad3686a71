package metadata

import (
	vk "github.com/goki/vulkan"
)

/** @brief What a transient target may be used for. */
type TargetUsageFlag uint8

const (
	TARGET_USAGE_RENDER  TargetUsageFlag = 0x1
	TARGET_USAGE_SAMPLED TargetUsageFlag = 0x2
	TARGET_USAGE_COPY    TargetUsageFlag = 0x4
)

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = 0x0
	/** @brief Linear (i.e. bilinear) filtering. */
	TextureFilterModeLinear TextureFilter = 0x1
)

/**
 * @brief Semantic description of a transient GPU texture. Pure value type;
 * two descriptors describe the same allocation iff every field matches.
 */
type TargetDescriptor struct {
	/** @brief The colour pixel format, vk.FormatUndefined for depth-only targets. */
	Format vk.Format
	/** @brief The depth/stencil format, vk.FormatUndefined for colour targets. */
	DepthFormat vk.Format
	/** @brief The target Width in pixels. */
	Width uint32
	/** @brief The target Height in pixels. */
	Height uint32
	/** @brief MSAA sample count; 1 for single-sampled. */
	SampleCount uint8
	/** @brief Usage flags. */
	Usage TargetUsageFlag
	/** @brief Sampling filter used when the target is read. */
	Filter TextureFilter
}

// Equals compares field-wise. Cache hits depend on this, nothing else.
func (d TargetDescriptor) Equals(other TargetDescriptor) bool {
	return d == other
}

/**
 * @brief Represents an allocated GPU texture backing a transient target.
 * InternalData is the renderer-API-specific object (e.g. a VulkanImage)
 * and is never inspected outside the backend.
 */
type Texture struct {
	/** @brief The texture Name. Generated, unique per allocation. */
	Name string
	/** @brief The texture Generation. Incremented every reallocation of the slot. */
	Generation uint32
	/** @brief A pointer to internal, render API-specific data. */
	InternalData interface{}
}

/**
 * @brief An owned or borrowed reference to an allocated target, tagged with
 * the descriptor it was created from. The target system exclusively owns
 * backing storage; borrowed handles (overlay cameras) must never trigger
 * reallocation.
 */
type TargetHandle struct {
	/** @brief The logical slot this handle occupies, e.g. "color_front". */
	Slot string
	/** @brief The Descriptor the backing texture was created from. */
	Descriptor TargetDescriptor
	/** @brief The backing texture. */
	Texture *Texture
	/** @brief True when this handle borrows another camera's backing. */
	Borrowed bool
}

// Borrow returns a borrowed view of the handle for an overlay camera.
func (h *TargetHandle) Borrow() *TargetHandle {
	return &TargetHandle{
		Slot:       h.Slot,
		Descriptor: h.Descriptor,
		Texture:    h.Texture,
		Borrowed:   true,
	}
}

/**
 * @brief Side-effecting allocation interface to the external resource
 * manager. The scheduler core never inspects what Create returns beyond
 * descriptor equality on its handle.
 */
type TargetBacking interface {
	Create(name string, descriptor TargetDescriptor) (*Texture, error)
	Release(texture *Texture)
}
