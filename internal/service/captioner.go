package service

import (
	"context"
	"os"
	"path/filepath"

	"vidprep/internal/types"
	"vidprep/pkg/errors"
	"vidprep/pkg/util"
)

// clipFrameCaptioner adapts a still-image-only captioning backend to clip
// requests by extracting the clip's middle frame into a temp file and
// captioning that instead.
type clipFrameCaptioner struct {
	Backend    types.Captioner
	Transcoder types.Transcoder
}

func (c *clipFrameCaptioner) Caption(ctx context.Context, mediaPath string, kind types.MediaKind, prompt string) (string, error) {
	if kind == types.MediaImage {
		return c.Backend.Caption(ctx, mediaPath, kind, prompt)
	}

	info, err := c.Transcoder.Probe(ctx, mediaPath)
	if err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp("", "vidprep-caption-*")
	if err != nil {
		return "", errors.Wrap(errors.CodeCaptionFailed, "cannot create temp dir", err)
	}
	defer os.RemoveAll(tmpDir)

	framePath := filepath.Join(tmpDir, util.Stem(mediaPath)+".png")
	err = c.Transcoder.ExtractFrame(ctx, types.FrameSpec{
		InputPath:  mediaPath,
		Seconds:    info.Duration / 2,
		OutputPath: framePath,
	})
	if err != nil {
		return "", err
	}
	return c.Backend.Caption(ctx, framePath, types.MediaImage, prompt)
}
