package systems

import (
	"fmt"

	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

/**
 * @brief Everything the feature resolver is allowed to look at. The
 * resolver is a pure function over this record; it never reaches into
 * renderer state behind the caller's back.
 */
type FeatureInputs struct {
	Camera       *metadata.CameraConfig
	Summary      metadata.RequirementSummary
	Strategy     metadata.RenderingStrategy
	Capabilities metadata.CapabilityOracle
	/** @brief True when this camera is the first depth writer of its stack. */
	FirstDepthWriterInStack bool
}

/**
 * @brief Downgrades the requested strategy to one the device can run.
 * Deferred shading falls back to forward when the device lacks enough
 * colour attachments for the gbuffer.
 */
func ResolveStrategy(camera *metadata.CameraConfig, capabilities metadata.CapabilityOracle) metadata.RenderingStrategy {
	strategy := camera.Strategy
	if strategy == metadata.STRATEGY_DEFERRED && !capabilities.SupportsDeferred() {
		core.LogWarn("camera '%s': deferred shading unsupported on this device, falling back to forward", camera.Name)
		return metadata.STRATEGY_FORWARD
	}
	return strategy
}

/**
 * @brief Turns the aggregated requirements, camera settings and device
 * capabilities into the frame's feature decision set. Rules run in a fixed
 * order; later rules read the outcome of earlier ones but never rewrite it,
 * so the result is reproducible from the inputs alone.
 */
func ResolveFeatures(in FeatureInputs) (metadata.FeatureDecisionSet, error) {
	camera := in.Camera
	summary := in.Summary
	caps := in.Capabilities
	decisions := metadata.FeatureDecisionSet{}

	// Rule 1: does anything need a sampleable depth texture at all?
	primingForced := camera.Overrides.DepthPriming == metadata.DEPTH_PRIMING_FORCED
	needsDepthTexture := summary.NeedsDepth || camera.RequiresDepthTexture || primingForced

	// Rule 2: depth priming. Only on forward variants, only for the stack's
	// first depth writer, never for reflection probes, and only when the
	// device can later resolve the primed buffer out. AUTO never introduces
	// a pre-pass of its own; it rides one the other rules already demand.
	prepassOtherwiseRequired := (needsDepthTexture && !caps.SupportsDepthCopy()) ||
		camera.Overrides.ForceDepthPrepass ||
		camera.IsPreview ||
		summary.NeedsNormals
	decisions.DepthPriming = resolveDepthPriming(in, prepassOtherwiseRequired)

	// Rule 3: the depth pre-pass.
	decisions.DepthPrepass = (needsDepthTexture && !caps.SupportsDepthCopy()) ||
		camera.Overrides.ForceDepthPrepass ||
		camera.IsPreview ||
		summary.NeedsNormals ||
		decisions.DepthPriming

	// Rule 4: deferred exception. The gbuffer pass already lays down depth,
	// so a pre-pass only survives when normals are wanted earlier than the
	// gbuffer can provide them, and then restricted to forward-only objects.
	if in.Strategy == metadata.STRATEGY_DEFERRED {
		if summary.NeedsNormals {
			decisions.PrepassForwardOnly = true
		} else {
			decisions.DepthPrepass = false
		}
	}

	// Rule 5: the depth copy. A full pre-pass already publishes depth; the
	// priming pre-pass does not (it renders into the multisampled
	// attachment), so priming always pairs with a copy to resolve it out.
	deferredProvidesDepth := in.Strategy == metadata.STRATEGY_DEFERRED
	prepassPublishesDepth := decisions.DepthPrepass && !decisions.DepthPriming && !decisions.PrepassForwardOnly
	decisions.DepthCopy = needsDepthTexture && caps.SupportsDepthCopy() &&
		!prepassPublishesDepth && !deferredProvidesDepth
	if decisions.DepthPriming {
		decisions.DepthCopy = true
	}
	if decisions.DepthCopy {
		decisions.CopyDepthEvent = resolveCopyDepthEvent(camera, summary, decisions.DepthPriming)
	}

	// Rule 6: colour snapshot and motion vectors follow the summary directly.
	decisions.ColorCopy = summary.NeedsColor
	decisions.MotionVectors = summary.NeedsMotion

	// Rule 7: the intermediate colour target.
	decisions.IntermediateColor = !camera.IsLastInStack ||
		(in.Strategy == metadata.STRATEGY_DEFERRED && caps.RequiresIntermediateColorForDeferred()) ||
		summary.NeedsColor ||
		summary.RequiresColorTextureCreated ||
		camera.UsesScaling() ||
		camera.HDR ||
		camera.CaptureActions ||
		(camera.MSAASamples > 1 && !caps.SupportsMultisampleAutoResolve())

	// Rendering layers must be produced by the pre-pass or the opaque pass;
	// anything else is a configuration bug and the frame is refused.
	if camera.RenderingLayers {
		switch camera.RenderingLayersEvent {
		case metadata.PASS_EVENT_BEFORE_PRE_PASSES:
			decisions.RenderingLayers = true
			decisions.DepthPrepass = true
		case metadata.PASS_EVENT_BEFORE_OPAQUES:
			decisions.RenderingLayers = true
		default:
			err := fmt.Errorf("camera '%s': rendering layers requested at event %d; only the pre-pass and opaque events can produce them", camera.Name, camera.RenderingLayersEvent)
			core.LogError(err.Error())
			return metadata.FeatureDecisionSet{}, err
		}
	}

	applyDebugGate(camera, &decisions)
	return decisions, nil
}

func resolveDepthPriming(in FeatureInputs, prepassRequired bool) bool {
	camera := in.Camera
	caps := in.Capabilities
	mode := camera.Overrides.DepthPriming
	if mode == metadata.DEPTH_PRIMING_DISABLED {
		return false
	}
	if !in.Strategy.IsForwardVariant() {
		return false
	}
	if !caps.SupportsDepthCopy() {
		if mode == metadata.DEPTH_PRIMING_FORCED {
			core.LogWarn("camera '%s': depth priming forced but the device cannot resolve depth out, falling back to a plain pre-pass", camera.Name)
		}
		return false
	}
	if camera.IsReflectionProbe || !in.FirstDepthWriterInStack {
		return false
	}
	if mode == metadata.DEPTH_PRIMING_AUTO {
		// Priming only pays off on top of a pre-pass already being rendered;
		// it must never be the reason one exists.
		if !prepassRequired {
			return false
		}
		// AUTO also declines on tiled GPUs, where priming defeats the on-chip
		// depth optimizations it is meant to help.
		if caps.IsTiledGLESDevice() {
			return false
		}
	}
	return true
}

// resolveCopyDepthEvent places the copy pass. The override wins; otherwise
// the earliest depth consumer decides, and a priming resolve happens right
// after the pre-pass that primed.
func resolveCopyDepthEvent(camera *metadata.CameraConfig, summary metadata.RequirementSummary, priming bool) metadata.RenderPassEvent {
	switch camera.Overrides.CopyDepth {
	case metadata.COPY_DEPTH_AFTER_OPAQUES:
		return metadata.PASS_EVENT_AFTER_OPAQUES
	case metadata.COPY_DEPTH_AFTER_TRANSPARENTS:
		return metadata.PASS_EVENT_AFTER_TRANSPARENTS
	}
	if priming {
		return metadata.PASS_EVENT_AFTER_PRE_PASSES
	}
	if summary.NeedsDepth && summary.DepthEvent <= metadata.PASS_EVENT_AFTER_OPAQUES {
		return metadata.PASS_EVENT_AFTER_OPAQUES
	}
	return metadata.PASS_EVENT_AFTER_TRANSPARENTS
}

/**
 * @brief Debug visualization rewires the decision set last, after the
 * functional rules have run. Depth and normals views force the pre-pass
 * that produces what they display; the unlit views drop shadows and the
 * copy passes since nothing will sample them.
 */
func applyDebugGate(camera *metadata.CameraConfig, decisions *metadata.FeatureDecisionSet) {
	switch camera.DebugViewMode {
	case metadata.RENDERER_VIEW_MODE_DEPTH, metadata.RENDERER_VIEW_MODE_NORMALS:
		// The forced pre-pass produces the visualized texture itself; a copy
		// alongside it would make two producers for the same camera-frame.
		decisions.DepthPrepass = true
		decisions.DepthPriming = false
		decisions.DepthCopy = false
		decisions.ShadowsSuppressed = true
	case metadata.RENDERER_VIEW_MODE_WIREFRAME:
		decisions.DepthCopy = false
		decisions.ColorCopy = false
		decisions.MotionVectors = false
		decisions.ShadowsSuppressed = true
	}
}
