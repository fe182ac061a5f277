package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSourceLetterboxed(t *testing.T) {
	// 1920x1080 source fitted into a 960x640 preview: scale 0.5, 50px bars
	// above and below.
	source := Size{Width: 1920, Height: 1080}
	preview := Size{Width: 960, Height: 640}

	r, ok := ToSource(RectF{X: 0, Y: 50, Width: 960, Height: 540}, preview, source)
	require.True(t, ok)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, r)

	r, ok = ToSource(RectF{X: 100, Y: 100, Width: 200, Height: 150}, preview, source)
	require.True(t, ok)
	assert.Equal(t, Rect{X: 200, Y: 100, Width: 400, Height: 300}, r)
}

func TestToSourceClampsToBounds(t *testing.T) {
	source := Size{Width: 640, Height: 480}
	preview := Size{Width: 640, Height: 480}

	r, ok := ToSource(RectF{X: -50, Y: -50, Width: 800, Height: 700}, preview, source)
	require.True(t, ok)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 640, Height: 480}, r)
}

func TestToSourceDegenerate(t *testing.T) {
	source := Size{Width: 640, Height: 480}
	preview := Size{Width: 320, Height: 240}

	// Zero-area drag is not an error, it means "full frame".
	_, ok := ToSource(RectF{X: 10, Y: 10, Width: 0, Height: 0}, preview, source)
	assert.False(t, ok)

	// Entirely inside the letterbox bar.
	wide := Size{Width: 320, Height: 400}
	_, ok = ToSource(RectF{X: 0, Y: 0, Width: 320, Height: 5}, wide, Size{Width: 640, Height: 360})
	assert.False(t, ok)

	// Invalid sizes.
	_, ok = ToSource(RectF{X: 0, Y: 0, Width: 10, Height: 10}, Size{}, source)
	assert.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	source := Size{Width: 1920, Height: 1080}
	previews := []Size{
		{Width: 960, Height: 640},
		{Width: 1280, Height: 720},
		{Width: 333, Height: 777},
	}
	rects := []Rect{
		{X: 10, Y: 10, Width: 200, Height: 150},
		{X: 0, Y: 0, Width: 1920, Height: 1080},
		{X: 500, Y: 300, Width: 640, Height: 480},
	}

	for _, preview := range previews {
		for _, orig := range rects {
			back, ok := ToSource(ToPreview(orig, preview, source), preview, source)
			require.True(t, ok)
			// Rounding through a downscaled preview may shift edges by a
			// couple of source pixels.
			assert.InDelta(t, orig.X, back.X, 4)
			assert.InDelta(t, orig.Y, back.Y, 4)
			assert.InDelta(t, orig.Width, back.Width, 8)
			assert.InDelta(t, orig.Height, back.Height, 8)
		}
	}
}

func TestToPreviewAfterResize(t *testing.T) {
	// A crop stored against one preview size redraws correctly on another.
	source := Size{Width: 1920, Height: 1080}
	crop := Rect{X: 192, Y: 108, Width: 960, Height: 540}

	small := ToPreview(crop, Size{Width: 960, Height: 540}, source)
	assert.InDelta(t, 96, small.X, 0.01)
	assert.InDelta(t, 54, small.Y, 0.01)

	large := ToPreview(crop, Size{Width: 1920, Height: 1080}, source)
	assert.InDelta(t, 192, large.X, 0.01)
	assert.InDelta(t, 540, large.Height, 0.01)
}
