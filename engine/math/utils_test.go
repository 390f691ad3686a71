package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(10, 0, 5))
	assert.Equal(t, 0, Clamp(-1, 0, 5))
	assert.Equal(t, 3, Clamp(3, 0, 5))
	assert.Equal(t, 1.5, Clamp(1.5, 1.0, 2.0))
}

func TestScaledExtent(t *testing.T) {
	w, h := ScaledExtent(1920, 1080, 0.5)
	assert.Equal(t, uint32(960), w)
	assert.Equal(t, uint32(540), h)

	w, h = ScaledExtent(1920, 1080, 0)
	assert.Equal(t, uint32(1920), w)
	assert.Equal(t, uint32(1080), h)

	w, h = ScaledExtent(3, 2, 0.1)
	assert.Equal(t, uint32(1), w)
	assert.Equal(t, uint32(1), h)
}
