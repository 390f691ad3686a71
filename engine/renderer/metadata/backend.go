package metadata

/**
 * @brief The command-submission surface a pass body may touch while
 * executing. Everything here is an opaque side effect; the scheduler never
 * looks at what the backend does with it.
 */
type RendererBackend interface {
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error

	/** @brief Begins the pass with its configured bindings and load operations. */
	PassBegin(pass *BoundPass) error
	/** @brief Ends the pass, honoring the configured store operations. */
	PassEnd(pass *BoundPass) error

	/** @brief Draws the scope's geometry into the currently begun pass. */
	Draw(scope DrawScope) error
	/** @brief Copies or resolves src into dst. */
	Copy(src, dst *TargetHandle) error
	/** @brief Blits src to the presentation surface. */
	BlitToPresentation(src *TargetHandle) error
	/** @brief Reads back the pixels of a single-sampled colour target as RGBA8. */
	ReadPixels(src *TargetHandle) ([]uint8, error)
}

/** @brief What subset of the scene geometry a draw covers. */
type DrawScope uint8

const (
	DRAW_SCOPE_OPAQUE DrawScope = iota
	/** @brief Opaque geometry drawn into the deferred gbuffer targets. */
	DRAW_SCOPE_GBUFFER
	DRAW_SCOPE_TRANSPARENT
	DRAW_SCOPE_SKYBOX
	DRAW_SCOPE_DEPTH_ONLY
	DRAW_SCOPE_DEPTH_NORMALS
	/** @brief Only geometry flagged forward-only (deferred pre-pass restriction). */
	DRAW_SCOPE_FORWARD_ONLY_DEPTH_NORMALS
	DRAW_SCOPE_MOTION
	DRAW_SCOPE_SHADOW_CASTERS
)
