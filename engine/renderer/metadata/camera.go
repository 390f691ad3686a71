package metadata

/** @brief How depth priming behaves for a camera. */
type DepthPrimingMode uint8

const (
	/** @brief Primed only where the platform tier recommends it. */
	DEPTH_PRIMING_AUTO DepthPrimingMode = iota
	/** @brief Primed whenever the platform can support it at all. */
	DEPTH_PRIMING_FORCED
	/** @brief Never primed. */
	DEPTH_PRIMING_DISABLED
)

/** @brief When the depth copy pass is injected. */
type CopyDepthMode uint8

const (
	/** @brief Chosen from the aggregated requirements. */
	COPY_DEPTH_AUTO CopyDepthMode = iota
	COPY_DEPTH_AFTER_OPAQUES
	COPY_DEPTH_AFTER_TRANSPARENTS
)

/** @brief Per-camera user overrides consumed by the capability resolver. */
type CameraOverrides struct {
	ForceDepthPrepass bool
	DepthPriming      DepthPrimingMode
	CopyDepth         CopyDepthMode
}

/**
 * @brief External per-frame input record for one camera: requested
 * strategy, overrides and stack membership. The scheduler never mutates it.
 */
type CameraConfig struct {
	/** @brief The camera Name, also the identity of its stack ("<name>" of the base). */
	Name string
	/** @brief The name of the stack this camera renders into. Equals Name for a base camera. */
	Stack string
	/** @brief The requested rendering Strategy. May be downgraded per frame. */
	Strategy RenderingStrategy
	/** @brief True for the base camera of a stack; false for overlays. */
	IsBase bool
	/** @brief True for the last camera of a stack; triggers final resolve. */
	IsLastInStack bool
	/** @brief The camera explicitly requests a sampleable depth texture. */
	RequiresDepthTexture bool
	/** @brief Editor/preview cameras schedule conservatively. */
	IsPreview bool
	/** @brief Reflection probe cameras never depth prime. */
	IsReflectionProbe bool
	/** @brief Temporal antialiasing active this frame. */
	TemporalAA bool
	/** @brief Render into an HDR intermediate. */
	HDR bool
	/** @brief MSAA sample count requested for the colour target; 1 disables. */
	MSAASamples uint8
	/** @brief Resolution scale applied to the backbuffer extent. 1.0 disables. */
	RenderScale float32
	/** @brief Backbuffer Width in pixels. */
	Width uint32
	/** @brief Backbuffer Height in pixels. */
	Height uint32
	/** @brief A capture hook wants this camera's final output. */
	CaptureActions bool
	/** @brief Target file for captures, empty for the default. */
	CapturePath string
	/** @brief Rendering-layers texture requested (decal/light layers). */
	RenderingLayers bool
	/** @brief The event producing the rendering-layers texture. Must be the pre-pass or opaque event. */
	RenderingLayersEvent RenderPassEvent
	/** @brief Active debug visualization mode. */
	DebugViewMode RendererDebugViewMode
	/** @brief Per-camera overrides. */
	Overrides CameraOverrides
}

// UsesScaling reports whether resolution scaling is active.
func (c *CameraConfig) UsesScaling() bool {
	return c.RenderScale > 0 && c.RenderScale != 1.0
}

/**
 * @brief A structure which is generated by the application and sent once
 * per frame to the renderer. Cameras appear in stack order, base first.
 */
type RenderPacket struct {
	DeltaTime float64
	Cameras   []*CameraConfig
}
