// Package fpsconv rewrites a folder of videos at a target frame rate into a
// subfolder, as a batch pre-processing step independent of any session.
package fpsconv

import (
	"context"
	"os"
	"path/filepath"

	"vidprep/internal/session"
	"vidprep/internal/types"
	"vidprep/log"
	"vidprep/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultSubfolder is where converted files land under the source folder.
const DefaultSubfolder = "fps_converted"

// FileResult is the outcome for one source file.
type FileResult struct {
	InputPath  string
	OutputPath string
	Skipped    bool // output already existed
	Err        error
}

// Report aggregates per-file outcomes in folder scan order.
type Report struct {
	Results []FileResult
	OutDir  string
}

// Counts returns succeeded (including skipped) and failed file counts.
func (r *Report) Counts() (succeeded, failed int) {
	for i := range r.Results {
		if r.Results[i].Err == nil {
			succeeded++
		} else {
			failed++
		}
	}
	return
}

// Converter resamples every video in a folder to the target frame rate.
type Converter struct {
	Transcoder  types.Transcoder
	Concurrency int
}

// Run converts all videos directly inside sourceFolder into
// sourceFolder/subfolder keeping filenames. Outputs that already exist are
// skipped and counted as successes, so an interrupted batch can be resumed.
// One file's failure is recorded and the batch continues; a failed resample
// is retried once re-encoding the audio track, which recovers sources whose
// audio codec cannot be stream-copied into the output container.
func (c *Converter) Run(ctx context.Context, sourceFolder, subfolder string, targetFps int) (Report, error) {
	if targetFps < 1 {
		return Report{}, errors.New(errors.CodeInvalidParams, "target fps must be positive")
	}
	if subfolder == "" {
		subfolder = DefaultSubfolder
	}

	files, err := session.ScanFolder(sourceFolder)
	if err != nil {
		return Report{}, err
	}

	outDir := filepath.Join(sourceFolder, subfolder)
	if err = os.MkdirAll(outDir, 0o755); err != nil {
		return Report{}, errors.WrapWithDetail(errors.CodeFpsConvertFailed,
			"cannot create output folder", outDir, err)
	}

	report := Report{Results: make([]FileResult, len(files)), OutDir: outDir}

	concurrency := c.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, input := range files {
		i, input := i, input
		g.Go(func() error {
			report.Results[i] = c.convertFile(gctx, input, outDir, targetFps)
			return nil
		})
	}
	g.Wait()

	succeeded, failed := report.Counts()
	log.GetLogger().Info("FpsConvert: batch finished",
		zap.String("folder", sourceFolder),
		zap.Int("target_fps", targetFps),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed))
	return report, nil
}

func (c *Converter) convertFile(ctx context.Context, input, outDir string, targetFps int) FileResult {
	res := FileResult{
		InputPath:  input,
		OutputPath: filepath.Join(outDir, filepath.Base(input)),
	}

	if info, err := os.Stat(res.OutputPath); err == nil && info.Size() > 0 {
		res.Skipped = true
		return res
	}

	err := c.Transcoder.Resample(ctx, input, res.OutputPath, targetFps, true)
	if err != nil && ctx.Err() == nil {
		log.GetLogger().Warn("FpsConvert: retrying with audio re-encode",
			zap.String("input", input),
			zap.Error(err))
		err = c.Transcoder.Resample(ctx, input, res.OutputPath, targetFps, false)
	}
	if err != nil {
		res.Err = errors.WrapWithDetail(errors.CodeFpsConvertFailed,
			"resample failed", input, err)
	}
	return res
}
