package metadata

import "fmt"

/**
 * @brief Mutually-exclusive top-level rendering algorithms. Exactly one
 * strategy is active per camera per frame.
 */
type RenderingStrategy uint8

const (
	/** @brief Immediate forward rendering, one light loop per draw. */
	STRATEGY_FORWARD RenderingStrategy = iota
	/** @brief Clustered forward rendering (forward+). */
	STRATEGY_FORWARD_PLUS
	/** @brief Deferred rendering via a multi-target geometry pass. */
	STRATEGY_DEFERRED
)

func (s RenderingStrategy) String() string {
	switch s {
	case STRATEGY_FORWARD:
		return "forward"
	case STRATEGY_FORWARD_PLUS:
		return "forward+"
	case STRATEGY_DEFERRED:
		return "deferred"
	}
	return "unknown"
}

// IsForwardVariant reports whether the strategy shades in the geometry
// pass itself (plain or clustered forward).
func (s RenderingStrategy) IsForwardVariant() bool {
	return s == STRATEGY_FORWARD || s == STRATEGY_FORWARD_PLUS
}

func ParseRenderingStrategy(name string) (RenderingStrategy, error) {
	switch name {
	case "forward", "":
		return STRATEGY_FORWARD, nil
	case "forward+", "forwardplus", "clustered":
		return STRATEGY_FORWARD_PLUS, nil
	case "deferred":
		return STRATEGY_DEFERRED, nil
	}
	return STRATEGY_FORWARD, fmt.Errorf("unknown rendering strategy '%s'", name)
}

type RendererDebugViewMode uint32

const (
	RENDERER_VIEW_MODE_DEFAULT   RendererDebugViewMode = 0
	RENDERER_VIEW_MODE_LIGHTING  RendererDebugViewMode = 1
	RENDERER_VIEW_MODE_NORMALS   RendererDebugViewMode = 2
	RENDERER_VIEW_MODE_DEPTH     RendererDebugViewMode = 3
	RENDERER_VIEW_MODE_WIREFRAME RendererDebugViewMode = 4
)
