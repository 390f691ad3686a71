package core

import "sync"

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Window resized/resolution changed from the OS.
	/* Context usage:
	 * extent := context.Data.(*ResizeEvent)
	 */
	EVENT_CODE_RESIZED SystemEventCode = 0x02

	// Cached render targets must be thrown away and reacquired,
	// typically after a swapchain recreation.
	EVENT_CODE_DEFAULT_RENDERTARGET_REFRESH_REQUIRED SystemEventCode = 0x03

	// The debug visualization mode changed.
	/* Context usage:
	 * mode := context.Data.(metadata.RendererDebugViewMode)
	 */
	EVENT_CODE_SET_RENDER_MODE SystemEventCode = 0x04

	// The pipeline configuration file was rewritten on disk and reloaded.
	EVENT_CODE_PIPELINE_CONFIG_RELOADED SystemEventCode = 0x05

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type EventContext struct {
	Type SystemEventCode
	Data interface{}
}

type FnOnEvent func(context EventContext)

type eventCodeEntry struct {
	callbacks []FnOnEvent
}

// State structure.
type eventSystemState struct {
	mutex sync.RWMutex
	// Lookup table for event codes.
	registered map[SystemEventCode]*eventCodeEntry
}

var onceEvent sync.Once
var eventState *eventSystemState

func getEventState() *eventSystemState {
	onceEvent.Do(func() {
		eventState = &eventSystemState{
			registered: make(map[SystemEventCode]*eventCodeEntry),
		}
	})
	return eventState
}

// EventRegister registers the callback to be invoked whenever an event
// with the provided code is fired.
func EventRegister(code SystemEventCode, onEvent FnOnEvent) {
	state := getEventState()
	state.mutex.Lock()
	defer state.mutex.Unlock()

	entry, ok := state.registered[code]
	if !ok {
		entry = &eventCodeEntry{}
		state.registered[code] = entry
	}
	entry.callbacks = append(entry.callbacks, onEvent)
}

// EventFire fires an event to all listeners of the given code.
func EventFire(context EventContext) {
	state := getEventState()
	state.mutex.RLock()
	entry, ok := state.registered[context.Type]
	var callbacks []FnOnEvent
	if ok {
		callbacks = append(callbacks, entry.callbacks...)
	}
	state.mutex.RUnlock()

	for _, cb := range callbacks {
		cb(context)
	}
}

// EventShutdown drops every registered listener.
func EventShutdown() error {
	state := getEventState()
	state.mutex.Lock()
	defer state.mutex.Unlock()
	for code := range state.registered {
		delete(state.registered, code)
	}
	return nil
}

// ResizeEvent is the payload of EVENT_CODE_RESIZED.
type ResizeEvent struct {
	Width  uint32
	Height uint32
}
