package service

import (
	"context"

	"vidprep/config"
	"vidprep/internal/fpsconv"
)

// ConvertFps resamples every video in the folder into a subfolder at the
// target frame rate. The caller is expected to open a new session rooted at
// the returned output folder afterwards.
func (svc *Service) ConvertFps(ctx context.Context, folder, subfolder string, targetFps int) (fpsconv.Report, error) {
	converter := &fpsconv.Converter{
		Transcoder:  svc.Transcoder,
		Concurrency: config.Conf.Export.Concurrency,
	}
	return converter.Run(ctx, folder, subfolder, targetFps)
}
