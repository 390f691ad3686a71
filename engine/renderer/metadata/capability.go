package metadata

/**
 * @brief Boolean queries about the running platform, consulted by the
 * capability resolver. Answers are pure and frame-stable; the core treats
 * them as externally supplied facts.
 */
type CapabilityOracle interface {
	/** @brief The device can copy a depth buffer into a sampleable texture. */
	SupportsDepthCopy() bool
	/** @brief Multisampled colour resolves automatically on store. */
	SupportsMultisampleAutoResolve() bool
	/** @brief Multisampled textures can be sampled directly. */
	SupportsMultisampledTextures() bool
	/** @brief Tile-based GLES-class device; bandwidth-conservative defaults apply. */
	IsTiledGLESDevice() bool
	/** @brief The deferred geometry/lighting pair needs an intermediate colour
	 * texture to avoid a y-flip mismatch on this backend. */
	RequiresIntermediateColorForDeferred() bool
	/** @brief The deferred lighting subsystem is usable at all. */
	SupportsDeferred() bool
}
