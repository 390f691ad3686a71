package core

import "time"

/**
 * @brief Per-frame scheduling metrics. Updated once per drawn frame by the
 * renderer system; read by whoever wants to report them.
 */
type FrameMetrics struct {
	// Monotonic frame counter since startup.
	FrameNumber uint64
	// Number of passes enqueued for the last frame, across all cameras.
	PassCount int
	// Number of transient target (re)allocations performed last frame.
	TargetAllocations int
	// Wall time spent building the last frame's plan.
	ScheduleDuration time.Duration
}

func (m *FrameMetrics) BeginFrame() time.Time {
	m.FrameNumber++
	m.PassCount = 0
	m.TargetAllocations = 0
	return time.Now()
}

func (m *FrameMetrics) EndFrame(start time.Time) {
	m.ScheduleDuration = time.Since(start)
}
