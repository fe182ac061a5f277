// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"vidprep/internal/types"

	"github.com/stretchr/testify/mock"
)

// MockTranscoder is a mock implementation of types.Transcoder
type MockTranscoder struct {
	mock.Mock
}

func (m *MockTranscoder) Probe(ctx context.Context, path string) (types.VideoInfo, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(types.VideoInfo), args.Error(1)
}

func (m *MockTranscoder) Transcode(ctx context.Context, spec types.TranscodeSpec) error {
	args := m.Called(ctx, spec)
	return args.Error(0)
}

func (m *MockTranscoder) ExtractFrame(ctx context.Context, spec types.FrameSpec) error {
	args := m.Called(ctx, spec)
	return args.Error(0)
}

func (m *MockTranscoder) Resample(ctx context.Context, inputPath, outputPath string, targetFps int, copyAudio bool) error {
	args := m.Called(ctx, inputPath, outputPath, targetFps, copyAudio)
	return args.Error(0)
}

// MockCaptioner is a mock implementation of types.Captioner
type MockCaptioner struct {
	mock.Mock
}

func (m *MockCaptioner) Caption(ctx context.Context, mediaPath string, kind types.MediaKind, prompt string) (string, error) {
	args := m.Called(ctx, mediaPath, kind, prompt)
	return args.String(0), args.Error(1)
}
