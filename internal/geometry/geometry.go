// Package geometry maps crop rectangles between the preview surface the user
// draws on and native source pixels. The preview may be uniformly scaled and
// letterboxed; the mapping accounts for both.
package geometry

import "math"

// Size is a pixel dimension pair.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect is a rectangle in source-pixel coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RectF is a rectangle on the preview surface.
type RectF struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// scaleAndOffset returns the uniform scale factor applied to the source frame
// when fitted into the preview, plus the letterbox offsets.
func scaleAndOffset(preview, source Size) (scale, offX, offY float64, ok bool) {
	if preview.Width <= 0 || preview.Height <= 0 || source.Width <= 0 || source.Height <= 0 {
		return 0, 0, 0, false
	}
	scale = math.Min(
		float64(preview.Width)/float64(source.Width),
		float64(preview.Height)/float64(source.Height),
	)
	offX = (float64(preview.Width) - float64(source.Width)*scale) / 2
	offY = (float64(preview.Height) - float64(source.Height)*scale) / 2
	return scale, offX, offY, true
}

// ToSource converts a preview-surface rectangle to source pixels, clamped to
// the source bounds. ok is false for degenerate input (a zero-area drag or an
// area entirely outside the frame), which callers treat as "full frame".
func ToSource(r RectF, preview, source Size) (Rect, bool) {
	scale, offX, offY, valid := scaleAndOffset(preview, source)
	if !valid || scale <= 0 {
		return Rect{}, false
	}

	x1 := (r.X - offX) / scale
	y1 := (r.Y - offY) / scale
	x2 := (r.X + r.Width - offX) / scale
	y2 := (r.Y + r.Height - offY) / scale

	xa := clampInt(int(math.Round(x1)), 0, source.Width)
	ya := clampInt(int(math.Round(y1)), 0, source.Height)
	xb := clampInt(int(math.Round(x2)), 0, source.Width)
	yb := clampInt(int(math.Round(y2)), 0, source.Height)

	out := Rect{X: xa, Y: ya, Width: xb - xa, Height: yb - ya}
	if out.Empty() {
		return Rect{}, false
	}
	return out, true
}

// ToPreview converts a source-pixel rectangle to preview-surface coordinates
// for a preview of the given size. Inverse of ToSource up to rounding.
func ToPreview(r Rect, preview, source Size) RectF {
	scale, offX, offY, valid := scaleAndOffset(preview, source)
	if !valid {
		return RectF{}
	}
	return RectF{
		X:      float64(r.X)*scale + offX,
		Y:      float64(r.Y)*scale + offY,
		Width:  float64(r.Width) * scale,
		Height: float64(r.Height) * scale,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
