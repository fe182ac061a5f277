package types

import (
	"context"

	"vidprep/internal/geometry"
)

// VideoInfo is the probed metadata of a source video.
type VideoInfo struct {
	TotalFrames int     `json:"total_frames"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Fps         float64 `json:"fps"`
	Duration    float64 `json:"duration"`
}

// Resolution returns the native resolution as a size.
func (v VideoInfo) Resolution() geometry.Size {
	return geometry.Size{Width: v.Width, Height: v.Height}
}

// TranscodeSpec describes one trim+crop+scale transcode request issued to the
// video processing backend.
type TranscodeSpec struct {
	InputPath       string
	StartSeconds    float64
	DurationSeconds float64
	OutputFps       int            // >0 normalizes the output frame rate
	Crop            *geometry.Rect // nil = full frame
	MaxLongEdge     int            // >0 scales the longest edge down to this
	OutputPath      string
}

// FrameSpec describes a single-frame extraction request.
type FrameSpec struct {
	InputPath   string
	Seconds     float64
	Crop        *geometry.Rect
	MaxLongEdge int
	OutputPath  string
}

// Transcoder is the external video processing backend.
type Transcoder interface {
	Probe(ctx context.Context, path string) (VideoInfo, error)
	Transcode(ctx context.Context, spec TranscodeSpec) error
	ExtractFrame(ctx context.Context, spec FrameSpec) error
	// Resample rewrites a whole file at the target frame rate. copyAudio
	// selects stream-copying the audio track instead of re-encoding it.
	Resample(ctx context.Context, inputPath, outputPath string, targetFps int, copyAudio bool) error
}

// MediaKind tells the captioner what it is describing.
type MediaKind uint8

const (
	MediaImage MediaKind = iota + 1
	MediaClip
)

// Captioner is the external captioning backend.
type Captioner interface {
	Caption(ctx context.Context, mediaPath string, kind MediaKind, prompt string) (string, error)
}
