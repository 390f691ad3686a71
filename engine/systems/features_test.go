package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

type fakeOracle struct {
	depthCopy            bool
	msaaAutoResolve      bool
	msaaTextures         bool
	tiledGLES            bool
	intermediateDeferred bool
	deferred             bool
}

func (f *fakeOracle) SupportsDepthCopy() bool                    { return f.depthCopy }
func (f *fakeOracle) SupportsMultisampleAutoResolve() bool       { return f.msaaAutoResolve }
func (f *fakeOracle) SupportsMultisampledTextures() bool         { return f.msaaTextures }
func (f *fakeOracle) IsTiledGLESDevice() bool                    { return f.tiledGLES }
func (f *fakeOracle) RequiresIntermediateColorForDeferred() bool { return f.intermediateDeferred }
func (f *fakeOracle) SupportsDeferred() bool                     { return f.deferred }

// A desktop-class device: everything supported, nothing tiled.
func desktopOracle() *fakeOracle {
	return &fakeOracle{depthCopy: true, msaaAutoResolve: true, msaaTextures: true,
		intermediateDeferred: true, deferred: true}
}

func baseCamera() *metadata.CameraConfig {
	return &metadata.CameraConfig{
		Name:          "main",
		Stack:         "main",
		IsBase:        true,
		IsLastInStack: true,
		Width:         1920,
		Height:        1080,
		RenderScale:   1.0,
		MSAASamples:   1,
		Overrides:     metadata.CameraOverrides{DepthPriming: metadata.DEPTH_PRIMING_DISABLED},
	}
}

func resolve(t *testing.T, camera *metadata.CameraConfig, summary metadata.RequirementSummary,
	strategy metadata.RenderingStrategy, oracle metadata.CapabilityOracle, firstWriter bool) metadata.FeatureDecisionSet {
	t.Helper()
	decisions, err := ResolveFeatures(FeatureInputs{
		Camera:                  camera,
		Summary:                 summary,
		Strategy:                strategy,
		Capabilities:            oracle,
		FirstDepthWriterInStack: firstWriter,
	})
	require.NoError(t, err)
	return decisions
}

func TestMinimalFrameResolvesEverythingOff(t *testing.T) {
	camera := baseCamera()
	// No overrides at all; the zero-valued priming mode is AUTO.
	camera.Overrides = metadata.CameraOverrides{}
	decisions := resolve(t, camera, metadata.RequirementSummary{}, metadata.STRATEGY_FORWARD, desktopOracle(), true)

	assert.False(t, decisions.DepthPrepass)
	assert.False(t, decisions.DepthCopy)
	assert.False(t, decisions.ColorCopy)
	assert.False(t, decisions.IntermediateColor)
	assert.False(t, decisions.DepthPriming)
	assert.False(t, decisions.MotionVectors)
	assert.False(t, decisions.RenderingLayers)
	assert.False(t, decisions.ShadowsSuppressed)
}

func TestNormalsForcePrepassUnderEveryStrategy(t *testing.T) {
	summary := metadata.RequirementSummary{NeedsNormals: true}
	strategies := []metadata.RenderingStrategy{
		metadata.STRATEGY_FORWARD,
		metadata.STRATEGY_FORWARD_PLUS,
		metadata.STRATEGY_DEFERRED,
	}
	for _, strategy := range strategies {
		decisions := resolve(t, baseCamera(), summary, strategy, desktopOracle(), true)
		assert.True(t, decisions.DepthPrepass, "strategy %s", strategy)
		if strategy == metadata.STRATEGY_DEFERRED {
			assert.True(t, decisions.PrepassForwardOnly, "deferred restricts the pre-pass")
		} else {
			assert.False(t, decisions.PrepassForwardOnly)
		}
	}
}

func TestDeferredWithoutNormalsSkipsPrepassAndCopy(t *testing.T) {
	summary := metadata.RequirementSummary{NeedsDepth: true, DepthEvent: metadata.PASS_EVENT_BEFORE_POST_PROCESSING, DepthLastEvent: metadata.PASS_EVENT_BEFORE_POST_PROCESSING}
	decisions := resolve(t, baseCamera(), summary, metadata.STRATEGY_DEFERRED, desktopOracle(), true)

	assert.False(t, decisions.DepthPrepass, "gbuffer already writes depth")
	assert.False(t, decisions.DepthCopy, "deferred depth is inherently sampleable")
}

func TestDepthNeedPrefersCopyWhenSupported(t *testing.T) {
	summary := metadata.RequirementSummary{NeedsDepth: true, DepthEvent: metadata.PASS_EVENT_BEFORE_POST_PROCESSING, DepthLastEvent: metadata.PASS_EVENT_BEFORE_POST_PROCESSING}

	withCopy := resolve(t, baseCamera(), summary, metadata.STRATEGY_FORWARD, desktopOracle(), true)
	assert.True(t, withCopy.DepthCopy)
	assert.False(t, withCopy.DepthPrepass)

	noCopy := resolve(t, baseCamera(), summary, metadata.STRATEGY_FORWARD, &fakeOracle{}, true)
	assert.True(t, noCopy.DepthPrepass)
	assert.False(t, noCopy.DepthCopy)
}

func TestPrepassAndCopyCoexistOnlyUnderPriming(t *testing.T) {
	summary := metadata.RequirementSummary{NeedsDepth: true, DepthEvent: metadata.PASS_EVENT_AFTER_OPAQUES, DepthLastEvent: metadata.PASS_EVENT_AFTER_OPAQUES}
	camera := baseCamera()
	camera.Overrides.DepthPriming = metadata.DEPTH_PRIMING_FORCED

	decisions := resolve(t, camera, summary, metadata.STRATEGY_FORWARD, desktopOracle(), true)
	assert.True(t, decisions.DepthPriming)
	assert.True(t, decisions.DepthPrepass)
	assert.True(t, decisions.DepthCopy, "priming renders into the attachment; a resolve copy publishes it")
	assert.Equal(t, metadata.PASS_EVENT_AFTER_PRE_PASSES, decisions.CopyDepthEvent)

	// Without priming the pre-pass publishes depth itself; never both.
	camera.Overrides.DepthPriming = metadata.DEPTH_PRIMING_DISABLED
	camera.Overrides.ForceDepthPrepass = true
	decisions = resolve(t, camera, summary, metadata.STRATEGY_FORWARD, desktopOracle(), true)
	assert.True(t, decisions.DepthPrepass)
	assert.False(t, decisions.DepthCopy)
}

func TestDepthPrimingDeclines(t *testing.T) {
	summary := metadata.RequirementSummary{}

	probe := baseCamera()
	probe.Overrides.DepthPriming = metadata.DEPTH_PRIMING_FORCED
	probe.IsReflectionProbe = true
	assert.False(t, resolve(t, probe, summary, metadata.STRATEGY_FORWARD, desktopOracle(), true).DepthPriming)

	overlay := baseCamera()
	overlay.Overrides.DepthPriming = metadata.DEPTH_PRIMING_FORCED
	overlay.IsBase = false
	assert.False(t, resolve(t, overlay, summary, metadata.STRATEGY_FORWARD, desktopOracle(), false).DepthPriming)

	tiled := baseCamera()
	tiled.Overrides.DepthPriming = metadata.DEPTH_PRIMING_AUTO
	tiled.Overrides.ForceDepthPrepass = true
	oracle := desktopOracle()
	oracle.tiledGLES = true
	assert.False(t, resolve(t, tiled, summary, metadata.STRATEGY_FORWARD, oracle, true).DepthPriming)

	// FORCED overrides the tiled-device heuristic but not missing support.
	forced := baseCamera()
	forced.Overrides.DepthPriming = metadata.DEPTH_PRIMING_FORCED
	assert.True(t, resolve(t, forced, summary, metadata.STRATEGY_FORWARD, oracle, true).DepthPriming)
	assert.False(t, resolve(t, forced, summary, metadata.STRATEGY_DEFERRED, desktopOracle(), true).DepthPriming)
}

func TestAutoPrimingNeverIntroducesPrepass(t *testing.T) {
	summary := metadata.RequirementSummary{NeedsDepth: true,
		DepthEvent: metadata.PASS_EVENT_AFTER_OPAQUES, DepthLastEvent: metadata.PASS_EVENT_AFTER_OPAQUES}

	// A depth need alone resolves to a copy pass; AUTO priming must not
	// turn that into a pre-pass.
	camera := baseCamera()
	camera.Overrides.DepthPriming = metadata.DEPTH_PRIMING_AUTO
	decisions := resolve(t, camera, summary, metadata.STRATEGY_FORWARD, desktopOracle(), true)
	assert.False(t, decisions.DepthPriming)
	assert.False(t, decisions.DepthPrepass)
	assert.True(t, decisions.DepthCopy)
	assert.Equal(t, metadata.PASS_EVENT_AFTER_OPAQUES, decisions.CopyDepthEvent)

	// Once a pre-pass is demanded anyway, AUTO rides it.
	camera.Overrides.ForceDepthPrepass = true
	decisions = resolve(t, camera, summary, metadata.STRATEGY_FORWARD, desktopOracle(), true)
	assert.True(t, decisions.DepthPriming)
	assert.True(t, decisions.DepthPrepass)
}

func TestIntermediateColorTriggers(t *testing.T) {
	oracle := desktopOracle()
	summary := metadata.RequirementSummary{}

	hdr := baseCamera()
	hdr.HDR = true
	assert.True(t, resolve(t, hdr, summary, metadata.STRATEGY_FORWARD, oracle, true).IntermediateColor)

	scaled := baseCamera()
	scaled.RenderScale = 0.75
	assert.True(t, resolve(t, scaled, summary, metadata.STRATEGY_FORWARD, oracle, true).IntermediateColor)

	capture := baseCamera()
	capture.CaptureActions = true
	assert.True(t, resolve(t, capture, summary, metadata.STRATEGY_FORWARD, oracle, true).IntermediateColor)

	notLast := baseCamera()
	notLast.IsLastInStack = false
	assert.True(t, resolve(t, notLast, summary, metadata.STRATEGY_FORWARD, oracle, true).IntermediateColor)

	msaa := baseCamera()
	msaa.MSAASamples = 4
	noResolve := desktopOracle()
	noResolve.msaaAutoResolve = false
	assert.True(t, resolve(t, msaa, summary, metadata.STRATEGY_FORWARD, noResolve, true).IntermediateColor)
	assert.False(t, resolve(t, msaa, summary, metadata.STRATEGY_FORWARD, oracle, true).IntermediateColor)

	assert.True(t, resolve(t, baseCamera(), summary, metadata.STRATEGY_DEFERRED, oracle, true).IntermediateColor)

	eager := metadata.RequirementSummary{RequiresColorTextureCreated: true}
	assert.True(t, resolve(t, baseCamera(), eager, metadata.STRATEGY_FORWARD, oracle, true).IntermediateColor)
}

func TestRenderingLayersEventValidation(t *testing.T) {
	camera := baseCamera()
	camera.RenderingLayers = true
	camera.RenderingLayersEvent = metadata.PASS_EVENT_BEFORE_PRE_PASSES

	decisions := resolve(t, camera, metadata.RequirementSummary{}, metadata.STRATEGY_FORWARD, desktopOracle(), true)
	assert.True(t, decisions.RenderingLayers)
	assert.True(t, decisions.DepthPrepass, "pre-pass must exist to produce the layers texture")

	camera.RenderingLayersEvent = metadata.PASS_EVENT_BEFORE_TRANSPARENTS
	_, err := ResolveFeatures(FeatureInputs{
		Camera:                  camera,
		Summary:                 metadata.RequirementSummary{},
		Strategy:                metadata.STRATEGY_FORWARD,
		Capabilities:            desktopOracle(),
		FirstDepthWriterInStack: true,
	})
	assert.Error(t, err)
}

func TestDebugGateRewiring(t *testing.T) {
	depthView := baseCamera()
	depthView.DebugViewMode = metadata.RENDERER_VIEW_MODE_DEPTH
	decisions := resolve(t, depthView, metadata.RequirementSummary{}, metadata.STRATEGY_FORWARD, desktopOracle(), true)
	assert.True(t, decisions.DepthPrepass)
	assert.True(t, decisions.ShadowsSuppressed)

	// The forced pre-pass replaces a copy that a depth need would otherwise
	// have resolved to; two producers must never coexist without priming.
	needsDepth := metadata.RequirementSummary{NeedsDepth: true,
		DepthEvent: metadata.PASS_EVENT_AFTER_OPAQUES, DepthLastEvent: metadata.PASS_EVENT_AFTER_OPAQUES}
	decisions = resolve(t, depthView, needsDepth, metadata.STRATEGY_FORWARD, desktopOracle(), true)
	assert.True(t, decisions.DepthPrepass)
	assert.False(t, decisions.DepthCopy)
	assert.False(t, decisions.DepthPriming)

	wireframe := baseCamera()
	wireframe.DebugViewMode = metadata.RENDERER_VIEW_MODE_WIREFRAME
	wireframe.TemporalAA = true
	summary := metadata.RequirementSummary{NeedsColor: true, NeedsMotion: true, NeedsDepth: true,
		ColorLastEvent: metadata.PASS_EVENT_BEFORE_POST_PROCESSING,
		DepthLastEvent: metadata.PASS_EVENT_BEFORE_POST_PROCESSING}
	decisions = resolve(t, wireframe, summary, metadata.STRATEGY_FORWARD, desktopOracle(), true)
	assert.False(t, decisions.DepthCopy)
	assert.False(t, decisions.ColorCopy)
	assert.False(t, decisions.MotionVectors)
	assert.True(t, decisions.ShadowsSuppressed)
}

func TestCopyDepthEventPlacement(t *testing.T) {
	early := metadata.RequirementSummary{NeedsDepth: true,
		DepthEvent: metadata.PASS_EVENT_AFTER_OPAQUES, DepthLastEvent: metadata.PASS_EVENT_AFTER_OPAQUES}
	decisions := resolve(t, baseCamera(), early, metadata.STRATEGY_FORWARD, desktopOracle(), true)
	assert.True(t, decisions.DepthCopy)
	assert.Equal(t, metadata.PASS_EVENT_AFTER_OPAQUES, decisions.CopyDepthEvent)

	late := metadata.RequirementSummary{NeedsDepth: true,
		DepthEvent: metadata.PASS_EVENT_BEFORE_POST_PROCESSING, DepthLastEvent: metadata.PASS_EVENT_BEFORE_POST_PROCESSING}
	decisions = resolve(t, baseCamera(), late, metadata.STRATEGY_FORWARD, desktopOracle(), true)
	assert.Equal(t, metadata.PASS_EVENT_AFTER_TRANSPARENTS, decisions.CopyDepthEvent)

	overridden := baseCamera()
	overridden.Overrides.CopyDepth = metadata.COPY_DEPTH_AFTER_TRANSPARENTS
	decisions = resolve(t, overridden, early, metadata.STRATEGY_FORWARD, desktopOracle(), true)
	assert.Equal(t, metadata.PASS_EVENT_AFTER_TRANSPARENTS, decisions.CopyDepthEvent)
}

func TestResolveStrategyFallsBackFromDeferred(t *testing.T) {
	camera := baseCamera()
	camera.Strategy = metadata.STRATEGY_DEFERRED

	noDeferred := desktopOracle()
	noDeferred.deferred = false
	assert.Equal(t, metadata.STRATEGY_FORWARD, ResolveStrategy(camera, noDeferred))
	assert.Equal(t, metadata.STRATEGY_DEFERRED, ResolveStrategy(camera, desktopOracle()))
}
