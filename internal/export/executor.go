package export

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"vidprep/internal/types"
	"vidprep/log"
	"vidprep/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CaptionSink consumes a successfully exported artifact and writes its
// caption sidecar. generate selects full caption generation over a static
// trigger-word sidecar; implementations decide whether either applies.
type CaptionSink interface {
	Sidecar(ctx context.Context, mediaPath string, kind types.MediaKind, generate bool) error
}

// Result is the outcome of one job. Err is the export failure if the
// artifact could not be produced; CaptionErr is a caption-step failure
// recorded separately, with the media artifact retained either way.
type Result struct {
	Job        Job
	Err        error
	CaptionErr error
}

// Succeeded reports whether the media artifact was produced. A caption
// failure does not count against the artifact.
func (r *Result) Succeeded() bool {
	return r.Err == nil
}

// Report is the full per-job outcome of a batch, in planning order.
type Report struct {
	Results []Result
}

// Counts returns the number of succeeded and failed jobs.
func (r *Report) Counts() (succeeded, failed int) {
	for i := range r.Results {
		if r.Results[i].Succeeded() {
			succeeded++
		} else {
			failed++
		}
	}
	return
}

// Executor runs planned jobs against the transcoding backend with bounded
// parallelism. One job's failure never aborts the batch; cancellation stops
// dispatching new jobs and the backend kills in-flight processes, while
// already-produced artifacts are kept.
type Executor struct {
	Transcoder  types.Transcoder
	Captions    CaptionSink // nil disables the caption step entirely
	Concurrency int
	OnResult    func(Result) // optional progress hook, called per finished job

	// jobs writing the same output path must not run concurrently
	pathLocks sync.Map
}

// Run executes every job and returns the aggregated report. The report
// always has one result per planned job: jobs never dispatched because of
// cancellation are recorded as canceled.
func (e *Executor) Run(ctx context.Context, jobs []Job) Report {
	report := Report{Results: make([]Result, len(jobs))}

	concurrency := e.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	dispatched := 0
	for i := range jobs {
		if ctx.Err() != nil {
			break
		}
		dispatched++
		i := i
		g.Go(func() error {
			res := e.runJob(gctx, jobs[i])
			report.Results[i] = res
			if e.OnResult != nil {
				e.OnResult(res)
			}
			return nil
		})
	}
	g.Wait()

	for i := dispatched; i < len(jobs); i++ {
		res := Result{
			Job: jobs[i],
			Err: errors.Wrap(errors.CodeExportCanceled, "batch canceled before dispatch", ctx.Err()),
		}
		report.Results[i] = res
		if e.OnResult != nil {
			e.OnResult(res)
		}
	}

	succeeded, failed := report.Counts()
	log.GetLogger().Info("Executor: batch finished",
		zap.Int("jobs", len(jobs)),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed))
	return report
}

func (e *Executor) runJob(ctx context.Context, job Job) Result {
	res := Result{Job: job}

	unlock := e.lockPath(job.OutputPath)
	defer unlock()

	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0o755); err != nil {
		res.Err = errors.WrapWithDetail(errors.CodeExportJobFailed,
			"cannot create output folder", filepath.Dir(job.OutputPath), err)
		return res
	}

	var err error
	switch job.Kind {
	case KindFrame:
		err = e.Transcoder.ExtractFrame(ctx, types.FrameSpec{
			InputPath:   job.VideoPath,
			Seconds:     job.StartSeconds(),
			Crop:        job.Crop,
			MaxLongEdge: job.MaxLongEdge,
			OutputPath:  job.OutputPath,
		})
	default:
		err = e.Transcoder.Transcode(ctx, types.TranscodeSpec{
			InputPath:       job.VideoPath,
			StartSeconds:    job.StartSeconds(),
			DurationSeconds: job.DurationSeconds(),
			OutputFps:       outputFps(job.VideoFps),
			Crop:            job.Crop,
			MaxLongEdge:     job.MaxLongEdge,
			OutputPath:      job.OutputPath,
		})
	}
	if err != nil {
		if ctx.Err() != nil {
			res.Err = errors.WrapWithDetail(errors.CodeExportCanceled,
				"job canceled", job.OutputPath, err)
		} else {
			res.Err = errors.WrapWithDetail(errors.CodeExportJobFailed,
				"backend invocation failed", job.OutputPath, err)
		}
		log.GetLogger().Warn("Executor: job failed",
			zap.String("kind", string(job.Kind)),
			zap.String("output", job.OutputPath),
			zap.Error(res.Err))
		return res
	}

	// the external process can exit zero and still leave nothing usable
	if err = checkOutput(job.OutputPath); err != nil {
		res.Err = err
		log.GetLogger().Warn("Executor: job produced no output",
			zap.String("output", job.OutputPath))
		return res
	}

	if e.Captions != nil {
		kind := types.MediaClip
		if job.Kind == KindFrame {
			kind = types.MediaImage
		}
		if err = e.Captions.Sidecar(ctx, job.OutputPath, kind, job.CaptionRequested); err != nil {
			res.CaptionErr = err
			log.GetLogger().Warn("Executor: caption step failed, artifact kept",
				zap.String("output", job.OutputPath),
				zap.Error(err))
		}
	}
	return res
}

func (e *Executor) lockPath(path string) func() {
	mu, _ := e.pathLocks.LoadOrStore(path, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// outputFps normalizes clips to the rounded source frame rate so fractional
// rates (29.97, 23.976) come out at a whole number. Unprobed sources fall
// back to 30.
func outputFps(sourceFps float64) int {
	if sourceFps <= 0 {
		return 30
	}
	fps := int(sourceFps + 0.5)
	if fps < 1 {
		fps = 1
	}
	return fps
}

func checkOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.WrapWithDetail(errors.CodeEmptyOutput, "output file missing", path, err)
	}
	if info.Size() == 0 {
		return errors.WrapWithDetail(errors.CodeEmptyOutput, "output file is empty", path, nil)
	}
	return nil
}
