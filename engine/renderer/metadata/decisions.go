package metadata

/**
 * @brief Aggregate of every registered pass' declared needs for one frame.
 * Recomputed from scratch each frame; carries no identity.
 */
type RequirementSummary struct {
	NeedsDepth   bool
	NeedsNormals bool
	NeedsColor   bool
	NeedsMotion  bool

	// Earliest event at which each input is first sampled. Only meaningful
	// when the corresponding flag above is set. Drives producer placement.
	DepthEvent   RenderPassEvent
	NormalsEvent RenderPassEvent
	ColorEvent   RenderPassEvent
	MotionEvent  RenderPassEvent

	// Latest event at which each input is still sampled. Drives the
	// store/discard marking of attachments.
	DepthLastEvent   RenderPassEvent
	NormalsLastEvent RenderPassEvent
	ColorLastEvent   RenderPassEvent
	MotionLastEvent  RenderPassEvent

	/**
	 * @brief Set when any pass demands the intermediate colour texture be
	 * created eagerly regardless of the other colour rules.
	 */
	RequiresColorTextureCreated bool
}

// NeededAfter reports whether any aggregated requirement still reads the
// given input at or after the given event. Decided once per frame from the
// summary, never patched backward.
func (s *RequirementSummary) NeededAfter(input PassInputFlag, event RenderPassEvent) bool {
	switch input {
	case PASS_INPUT_DEPTH:
		return s.NeedsDepth && s.DepthLastEvent >= event
	case PASS_INPUT_NORMALS:
		return s.NeedsNormals && s.NormalsLastEvent >= event
	case PASS_INPUT_COLOR:
		return s.NeedsColor && s.ColorLastEvent >= event
	case PASS_INPUT_MOTION:
		return s.NeedsMotion && s.MotionLastEvent >= event
	}
	return false
}

/**
 * @brief The per-frame boolean feature record the resolver emits. Immutable
 * once computed; the scheduler only reads it.
 */
type FeatureDecisionSet struct {
	DepthPrepass      bool
	DepthCopy         bool
	ColorCopy         bool
	IntermediateColor bool
	DepthPriming      bool
	RenderingLayers   bool
	MotionVectors     bool
	/**
	 * @brief Restricts the pre-pass to forward-only geometry. Only set in
	 * deferred mode when normals are still required.
	 */
	PrepassForwardOnly bool
	/** @brief Suppresses the shadow pass for the frame (debug gate). */
	ShadowsSuppressed bool
	/** @brief The event the depth copy pass is injected at, when DepthCopy. */
	CopyDepthEvent RenderPassEvent
}
