package systems

import (
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

/**
 * @brief Scans the registered pass declarations plus the camera's own flags
 * and folds them into a single requirement summary for the frame. The
 * summary is recomputed from scratch every frame; nothing sticks from the
 * previous one.
 */
func AggregateRequirements(declarations []*metadata.PassDeclaration, camera *metadata.CameraConfig) metadata.RequirementSummary {
	summary := metadata.RequirementSummary{
		DepthEvent:   metadata.PASS_EVENT_AFTER_RENDERING,
		NormalsEvent: metadata.PASS_EVENT_AFTER_RENDERING,
		ColorEvent:   metadata.PASS_EVENT_AFTER_RENDERING,
		MotionEvent:  metadata.PASS_EVENT_AFTER_RENDERING,
	}

	for _, declaration := range declarations {
		if declaration == nil {
			continue
		}
		if declaration.Inputs.Has(metadata.PASS_INPUT_DEPTH) {
			summary.NeedsDepth = true
			foldEvent(&summary.DepthEvent, &summary.DepthLastEvent, declaration.Event)
		}
		if declaration.Inputs.Has(metadata.PASS_INPUT_NORMALS) {
			summary.NeedsNormals = true
			foldEvent(&summary.NormalsEvent, &summary.NormalsLastEvent, declaration.Event)
		}
		if declaration.Inputs.Has(metadata.PASS_INPUT_COLOR) {
			summary.NeedsColor = true
			foldEvent(&summary.ColorEvent, &summary.ColorLastEvent, declaration.Event)
		}
		if declaration.Inputs.Has(metadata.PASS_INPUT_MOTION) {
			summary.NeedsMotion = true
			foldEvent(&summary.MotionEvent, &summary.MotionLastEvent, declaration.Event)
		}
		if declaration.ForcesColorTextureCreation {
			summary.RequiresColorTextureCreated = true
		}
	}

	// Temporal antialiasing consumes motion vectors during post processing.
	if camera.TemporalAA {
		summary.NeedsMotion = true
		foldEvent(&summary.MotionEvent, &summary.MotionLastEvent, metadata.PASS_EVENT_BEFORE_POST_PROCESSING)
	}

	// Motion vector reconstruction samples depth while the motion pass runs,
	// so the depth texture must be filled no later than the motion producer,
	// regardless of when the motion vectors themselves are consumed.
	if summary.NeedsMotion {
		summary.NeedsDepth = true
		foldEvent(&summary.DepthEvent, &summary.DepthLastEvent, metadata.PASS_EVENT_AFTER_OPAQUES)
	}

	// The camera itself may demand a depth texture with no pass declaring it.
	if camera.RequiresDepthTexture {
		summary.NeedsDepth = true
		foldEvent(&summary.DepthEvent, &summary.DepthLastEvent, metadata.PASS_EVENT_AFTER_RENDERING)
	}

	return summary
}

// foldEvent widens the [earliest, latest] window to include the event.
func foldEvent(earliest, latest *metadata.RenderPassEvent, event metadata.RenderPassEvent) {
	if event < *earliest {
		*earliest = event
	}
	if event > *latest {
		*latest = event
	}
}
