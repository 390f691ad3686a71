package systems

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

/**
 * @brief Owns every transient render target by logical slot. Acquire is
 * descriptor-keyed: a slot whose descriptor is unchanged returns the same
 * handle frame after frame, so allocation cost amortizes while camera
 * resolution and settings are stable.
 */
type RenderTargetSystem struct {
	backing metadata.TargetBacking
	slots   map[string]*metadata.TargetHandle

	// (Re)allocations since the counter was last taken. Feeds frame metrics.
	allocations int
	generations map[string]uint32
}

func NewRenderTargetSystem(backing metadata.TargetBacking) (*RenderTargetSystem, error) {
	if backing == nil {
		err := fmt.Errorf("func NewRenderTargetSystem requires a target backing")
		return nil, err
	}
	return &RenderTargetSystem{
		backing:     backing,
		slots:       make(map[string]*metadata.TargetHandle),
		generations: make(map[string]uint32),
	}, nil
}

/**
 * @brief Returns the handle for the slot, (re)allocating the backing
 * texture only when the descriptor changed. Allocation failure is fatal
 * for the frame; the caller must abandon it rather than render with a
 * missing resource.
 */
func (ts *RenderTargetSystem) Acquire(slot string, descriptor metadata.TargetDescriptor) (*metadata.TargetHandle, error) {
	existing, ok := ts.slots[slot]
	if ok && existing.Descriptor.Equals(descriptor) {
		return existing, nil
	}

	// Descriptor changed (or first use): drop the old backing first.
	if ok {
		core.LogDebug("target slot '%s' descriptor changed, reallocating", slot)
		ts.backing.Release(existing.Texture)
		delete(ts.slots, slot)
	}

	// Generate a UUID to act as the texture name.
	name := uuid.New().String()
	texture, err := ts.backing.Create(name, descriptor)
	if err != nil {
		core.LogError("failed to create backing texture for slot '%s'", slot)
		return nil, err
	}
	ts.generations[slot]++
	texture.Generation = ts.generations[slot]

	handle := &metadata.TargetHandle{
		Slot:       slot,
		Descriptor: descriptor,
		Texture:    texture,
	}
	ts.slots[slot] = handle
	ts.allocations++
	return handle, nil
}

// Get returns the live handle for a slot without allocating, or nil.
func (ts *RenderTargetSystem) Get(slot string) *metadata.TargetHandle {
	return ts.slots[slot]
}

/**
 * @brief Swap exchanges the handle identities of two slots. Used to
 * double-buffer the primary colour target: the swap moves handles, never
 * pixel data.
 */
func (ts *RenderTargetSystem) Swap(slotA, slotB string) error {
	a, okA := ts.slots[slotA]
	b, okB := ts.slots[slotB]
	if !okA || !okB {
		return fmt.Errorf("cannot swap target slots '%s' and '%s'; both must be allocated", slotA, slotB)
	}
	a.Slot, b.Slot = slotB, slotA
	ts.slots[slotA], ts.slots[slotB] = b, a
	return nil
}

// TakeAllocationCount returns and resets the allocation counter.
func (ts *RenderTargetSystem) TakeAllocationCount() int {
	n := ts.allocations
	ts.allocations = 0
	return n
}

/**
 * @brief Explicit teardown hook. Releases every backing texture; handles
 * held elsewhere become invalid.
 */
func (ts *RenderTargetSystem) ReleaseRenderTargets() {
	for slot, handle := range ts.slots {
		ts.backing.Release(handle.Texture)
		delete(ts.slots, slot)
	}
}
