package systems

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

type fakeBacking struct {
	creates  int
	releases int
	failNext bool
}

func (f *fakeBacking) Create(name string, descriptor metadata.TargetDescriptor) (*metadata.Texture, error) {
	if f.failNext {
		f.failNext = false
		return nil, errors.New("device out of memory")
	}
	f.creates++
	return &metadata.Texture{Name: name}, nil
}

func (f *fakeBacking) Release(texture *metadata.Texture) {
	f.releases++
}

func colorDescriptor(width, height uint32, samples uint8) metadata.TargetDescriptor {
	return metadata.TargetDescriptor{
		Format:      vk.FormatB8g8r8a8Unorm,
		Width:       width,
		Height:      height,
		SampleCount: samples,
		Usage:       metadata.TARGET_USAGE_RENDER | metadata.TARGET_USAGE_SAMPLED,
	}
}

func TestAcquireReturnsSameHandleWhileDescriptorUnchanged(t *testing.T) {
	backing := &fakeBacking{}
	ts, err := NewRenderTargetSystem(backing)
	require.NoError(t, err)

	first, err := ts.Acquire("main.color_front", colorDescriptor(1920, 1080, 1))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := ts.Acquire("main.color_front", colorDescriptor(1920, 1080, 1))
		require.NoError(t, err)
		assert.Same(t, first, again)
	}
	assert.Equal(t, 1, backing.creates)
	assert.Equal(t, 0, backing.releases)
}

func TestAcquireReallocatesExactlyOnceOnSampleCountChange(t *testing.T) {
	backing := &fakeBacking{}
	ts, err := NewRenderTargetSystem(backing)
	require.NoError(t, err)

	first, err := ts.Acquire("main.color_front", colorDescriptor(1920, 1080, 1))
	require.NoError(t, err)

	second, err := ts.Acquire("main.color_front", colorDescriptor(1920, 1080, 4))
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 2, backing.creates)
	assert.Equal(t, 1, backing.releases)

	// The new descriptor is stable again; no further churn.
	third, err := ts.Acquire("main.color_front", colorDescriptor(1920, 1080, 4))
	require.NoError(t, err)
	assert.Same(t, second, third)
	assert.Equal(t, 2, backing.creates)
}

func TestAcquireBumpsGenerationPerReallocation(t *testing.T) {
	backing := &fakeBacking{}
	ts, err := NewRenderTargetSystem(backing)
	require.NoError(t, err)

	first, err := ts.Acquire("main.depth", colorDescriptor(800, 600, 1))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), first.Texture.Generation)

	second, err := ts.Acquire("main.depth", colorDescriptor(1024, 768, 1))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), second.Texture.Generation)
	assert.NotEqual(t, first.Texture.Name, second.Texture.Name)
}

func TestAcquireFailurePropagates(t *testing.T) {
	backing := &fakeBacking{failNext: true}
	ts, err := NewRenderTargetSystem(backing)
	require.NoError(t, err)

	handle, err := ts.Acquire("main.color_front", colorDescriptor(1920, 1080, 1))
	assert.Error(t, err)
	assert.Nil(t, handle)
	assert.Nil(t, ts.Get("main.color_front"))
}

func TestSwapExchangesHandlesWithoutAllocating(t *testing.T) {
	backing := &fakeBacking{}
	ts, err := NewRenderTargetSystem(backing)
	require.NoError(t, err)

	front, err := ts.Acquire("main.color_front", colorDescriptor(1920, 1080, 1))
	require.NoError(t, err)
	back, err := ts.Acquire("main.color_back", colorDescriptor(1920, 1080, 1))
	require.NoError(t, err)

	require.NoError(t, ts.Swap("main.color_front", "main.color_back"))
	assert.Same(t, back, ts.Get("main.color_front"))
	assert.Same(t, front, ts.Get("main.color_back"))
	assert.Equal(t, "main.color_front", back.Slot)
	assert.Equal(t, 2, backing.creates)

	assert.Error(t, ts.Swap("main.color_front", "main.missing"))
}

func TestReleaseRenderTargetsDropsEverything(t *testing.T) {
	backing := &fakeBacking{}
	ts, err := NewRenderTargetSystem(backing)
	require.NoError(t, err)

	_, err = ts.Acquire("main.color_front", colorDescriptor(1920, 1080, 1))
	require.NoError(t, err)
	_, err = ts.Acquire("main.depth", colorDescriptor(1920, 1080, 1))
	require.NoError(t, err)

	ts.ReleaseRenderTargets()
	assert.Equal(t, 2, backing.releases)
	assert.Nil(t, ts.Get("main.color_front"))

	// Reacquiring after a teardown allocates fresh backings.
	_, err = ts.Acquire("main.color_front", colorDescriptor(1920, 1080, 1))
	require.NoError(t, err)
	assert.Equal(t, 3, backing.creates)
}

func TestTakeAllocationCountResets(t *testing.T) {
	backing := &fakeBacking{}
	ts, err := NewRenderTargetSystem(backing)
	require.NoError(t, err)

	_, err = ts.Acquire("main.color_front", colorDescriptor(1920, 1080, 1))
	require.NoError(t, err)
	_, err = ts.Acquire("main.depth", colorDescriptor(1920, 1080, 1))
	require.NoError(t, err)

	assert.Equal(t, 2, ts.TakeAllocationCount())
	assert.Equal(t, 0, ts.TakeAllocationCount())
}
