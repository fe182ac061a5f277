package service

import (
	"context"
	"testing"

	"vidprep/internal/mocks"
	"vidprep/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestClipFrameCaptionerPassesImagesThrough(t *testing.T) {
	backend := &mocks.MockCaptioner{}
	backend.On("Caption", mock.Anything, "frame.png", types.MediaImage, "p").
		Return("an image", nil)

	c := &clipFrameCaptioner{Backend: backend, Transcoder: &mocks.MockTranscoder{}}
	text, err := c.Caption(context.Background(), "frame.png", types.MediaImage, "p")
	require.NoError(t, err)
	assert.Equal(t, "an image", text)
	backend.AssertExpectations(t)
}

func TestClipFrameCaptionerExtractsMiddleFrame(t *testing.T) {
	tr := &mocks.MockTranscoder{}
	tr.On("Probe", mock.Anything, "clip.mp4").
		Return(types.VideoInfo{Duration: 10, Fps: 30, TotalFrames: 300, Width: 1, Height: 1}, nil)
	tr.On("ExtractFrame", mock.Anything, mock.MatchedBy(func(spec types.FrameSpec) bool {
		return spec.InputPath == "clip.mp4" && spec.Seconds == 5
	})).Return(nil)

	backend := &mocks.MockCaptioner{}
	backend.On("Caption", mock.Anything, mock.Anything, types.MediaImage, "p").
		Return("a clip, described via its middle frame", nil)

	c := &clipFrameCaptioner{Backend: backend, Transcoder: tr}
	text, err := c.Caption(context.Background(), "clip.mp4", types.MediaClip, "p")
	require.NoError(t, err)
	assert.Equal(t, "a clip, described via its middle frame", text)
	tr.AssertExpectations(t)
	backend.AssertExpectations(t)
}
