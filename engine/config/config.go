package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

/**
 * @brief On-disk pipeline settings. Loaded once at startup and hot-reloaded
 * by the watcher; converted to per-camera configuration by the application.
 */
type PipelineConfig struct {
	Strategy          string  `toml:"strategy"`
	MSAASamples       uint8   `toml:"msaa"`
	HDR               bool    `toml:"hdr"`
	RenderScale       float32 `toml:"render_scale"`
	DepthPriming      string  `toml:"depth_priming"`
	ForceDepthPrepass bool    `toml:"force_depth_prepass"`
	CopyDepthMode     string  `toml:"copy_depth_mode"`
	RenderingLayers   string  `toml:"rendering_layers"`
	DebugViewMode     string  `toml:"debug_view_mode"`
}

func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		Strategy:    "forward",
		MSAASamples: 1,
		RenderScale: 1.0,
	}
}

// Load reads and validates a pipeline configuration file.
func Load(path string) (*PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		core.LogError("failed to read pipeline config '%s': %s", path, err.Error())
		return nil, err
	}
	cfg := DefaultPipelineConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		core.LogError("failed to parse pipeline config '%s': %s", path, err.Error())
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

/**
 * @brief Validate fails fast on combinations that signal a build defect
 * rather than a runtime condition. Capability mismatches are NOT checked
 * here; those downgrade silently at resolve time.
 */
func (cfg *PipelineConfig) Validate() error {
	if _, err := metadata.ParseRenderingStrategy(cfg.Strategy); err != nil {
		return err
	}
	switch cfg.MSAASamples {
	case 0, 1, 2, 4, 8:
	default:
		return fmt.Errorf("msaa sample count %d is not a power of two <= 8", cfg.MSAASamples)
	}
	if cfg.RenderScale < 0 || cfg.RenderScale > 2.0 {
		return fmt.Errorf("render_scale %f out of range (0, 2]", cfg.RenderScale)
	}
	if _, err := cfg.RenderingLayersEvent(); err != nil {
		return err
	}
	if _, err := cfg.DepthPrimingMode(); err != nil {
		return err
	}
	if _, err := cfg.CopyDepth(); err != nil {
		return err
	}
	if _, err := cfg.DebugMode(); err != nil {
		return err
	}
	return nil
}

// RenderingLayersEvent maps the configured rendering-layers producer to a
// pass event. Only the pre-pass and opaque events can legally produce the
// texture; anything else is a configuration defect.
func (cfg *PipelineConfig) RenderingLayersEvent() (metadata.RenderPassEvent, error) {
	switch cfg.RenderingLayers {
	case "":
		return 0, nil
	case "prepass":
		return metadata.PASS_EVENT_BEFORE_PRE_PASSES, nil
	case "opaque":
		return metadata.PASS_EVENT_BEFORE_OPAQUES, nil
	}
	return 0, fmt.Errorf("rendering_layers '%s' cannot produce a rendering-layers texture; use 'prepass' or 'opaque'", cfg.RenderingLayers)
}

func (cfg *PipelineConfig) DepthPrimingMode() (metadata.DepthPrimingMode, error) {
	switch cfg.DepthPriming {
	case "", "auto":
		return metadata.DEPTH_PRIMING_AUTO, nil
	case "forced":
		return metadata.DEPTH_PRIMING_FORCED, nil
	case "disabled":
		return metadata.DEPTH_PRIMING_DISABLED, nil
	}
	return 0, fmt.Errorf("unknown depth_priming mode '%s'", cfg.DepthPriming)
}

func (cfg *PipelineConfig) CopyDepth() (metadata.CopyDepthMode, error) {
	switch cfg.CopyDepthMode {
	case "", "auto":
		return metadata.COPY_DEPTH_AUTO, nil
	case "after_opaques":
		return metadata.COPY_DEPTH_AFTER_OPAQUES, nil
	case "after_transparents":
		return metadata.COPY_DEPTH_AFTER_TRANSPARENTS, nil
	}
	return 0, fmt.Errorf("unknown copy_depth_mode '%s'", cfg.CopyDepthMode)
}

func (cfg *PipelineConfig) DebugMode() (metadata.RendererDebugViewMode, error) {
	switch cfg.DebugViewMode {
	case "", "default":
		return metadata.RENDERER_VIEW_MODE_DEFAULT, nil
	case "lighting":
		return metadata.RENDERER_VIEW_MODE_LIGHTING, nil
	case "normals":
		return metadata.RENDERER_VIEW_MODE_NORMALS, nil
	case "depth":
		return metadata.RENDERER_VIEW_MODE_DEPTH, nil
	case "wireframe":
		return metadata.RENDERER_VIEW_MODE_WIREFRAME, nil
	}
	return 0, fmt.Errorf("unknown debug_view_mode '%s'", cfg.DebugViewMode)
}

// ApplyTo copies the file-level settings onto a camera configuration.
func (cfg *PipelineConfig) ApplyTo(camera *metadata.CameraConfig) error {
	strategy, err := metadata.ParseRenderingStrategy(cfg.Strategy)
	if err != nil {
		return err
	}
	priming, err := cfg.DepthPrimingMode()
	if err != nil {
		return err
	}
	copyDepth, err := cfg.CopyDepth()
	if err != nil {
		return err
	}
	debugMode, err := cfg.DebugMode()
	if err != nil {
		return err
	}
	layersEvent, err := cfg.RenderingLayersEvent()
	if err != nil {
		return err
	}

	camera.Strategy = strategy
	camera.MSAASamples = cfg.MSAASamples
	if camera.MSAASamples == 0 {
		camera.MSAASamples = 1
	}
	camera.HDR = cfg.HDR
	camera.RenderScale = cfg.RenderScale
	camera.DebugViewMode = debugMode
	camera.RenderingLayers = cfg.RenderingLayers != ""
	camera.RenderingLayersEvent = layersEvent
	camera.Overrides = metadata.CameraOverrides{
		ForceDepthPrepass: cfg.ForceDepthPrepass,
		DepthPriming:      priming,
		CopyDepth:         copyDepth,
	}
	return nil
}
