// Package export plans and executes export batches: expanding a session into
// an ordered job list, running jobs against the transcoding backend with
// bounded parallelism, and aggregating a per-job report.
package export

import (
	"fmt"
	"path/filepath"

	"vidprep/internal/geometry"
	"vidprep/internal/session"
	"vidprep/pkg/errors"
	"vidprep/pkg/util"
)

// JobKind tags what a single job produces.
type JobKind string

const (
	KindCroppedClip   JobKind = "cropped_clip"
	KindUncroppedClip JobKind = "uncropped_clip"
	KindFrame         JobKind = "frame"
)

// Output subfolders under the session root.
const (
	CroppedDir   = "cropped"
	UncroppedDir = "uncropped"
	FramesDir    = "frames"
)

// Job is one planned unit of export work: one range × one export kind.
// Jobs are immutable snapshots; workers never see the live session.
type Job struct {
	Index            int
	VideoPath        string
	VideoFps         float64
	RangeID          string
	RangeIndex       int // 1-based position within the video
	Kind             JobKind
	StartFrame       int
	DurationFrames   int
	Crop             *geometry.Rect // nil = full frame
	MaxLongEdge      int
	OutputPath       string
	CaptionRequested bool
}

// StartSeconds is the range start as a timestamp.
func (j *Job) StartSeconds() float64 {
	return util.FramesToSeconds(j.StartFrame, j.VideoFps)
}

// DurationSeconds is the range length as a duration.
func (j *Job) DurationSeconds() float64 {
	return util.FramesToSeconds(j.DurationFrames, j.VideoFps)
}

// Plan expands the session's selected videos into an ordered job list. It
// performs no I/O; the only failure mode is a malformed settings snapshot.
//
// Kind order per range is fixed: cropped clip, uncropped clip, frame. A
// cropped export for a range without a crop falls back to full-frame content
// under the cropped name rather than failing. When captioning is enabled,
// exactly one job per range carries the caption request, preferring the
// cropped clip, then the uncropped clip, then the frame.
func Plan(s *session.Session, settings session.ExportSettings) ([]Job, error) {
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	prefix := ""
	if settings.FilenamePrefix != "" {
		prefix = util.SanitizeFilename(settings.FilenamePrefix)
	}

	var jobs []Job
	counter := 0
	for vidIdx, v := range s.SelectedVideos() {
		for rangeIdx, r := range v.Ranges {
			counter++
			stem := rangeStem(prefix, counter, vidIdx+1, v.Path, rangeIdx+1)

			captionPending := settings.CaptionEnabled
			add := func(kind JobKind, crop *geometry.Rect, outputPath string) {
				j := Job{
					Index:          len(jobs),
					VideoPath:      v.Path,
					VideoFps:       v.Fps,
					RangeID:        r.ID,
					RangeIndex:     rangeIdx + 1,
					Kind:           kind,
					StartFrame:     r.StartFrame,
					DurationFrames: r.DurationFrames,
					Crop:           crop,
					MaxLongEdge:    settings.MaxLongEdge,
					OutputPath:     outputPath,
				}
				if captionPending {
					j.CaptionRequested = true
					captionPending = false
				}
				jobs = append(jobs, j)
			}

			if settings.ExportCropped {
				add(KindCroppedClip, r.Crop,
					filepath.Join(s.RootFolder, CroppedDir, stem+"_cropped.mp4"))
			}
			if settings.ExportUncropped {
				add(KindUncroppedClip, nil,
					filepath.Join(s.RootFolder, UncroppedDir, stem+".mp4"))
			}
			if settings.ExportFrame {
				add(KindFrame, r.Crop,
					filepath.Join(s.RootFolder, FramesDir, stem+".png"))
			}
		}
	}
	return jobs, nil
}

func validateSettings(settings session.ExportSettings) error {
	if !settings.ExportCropped && !settings.ExportUncropped && !settings.ExportFrame {
		return errors.New(errors.CodeInvalidConfig, "no export kind enabled")
	}
	if settings.MaxLongEdge < 0 {
		return errors.WrapWithDetail(errors.CodeInvalidConfig,
			"max long edge must not be negative",
			fmt.Sprintf("max_long_edge=%d", settings.MaxLongEdge), nil)
	}
	if settings.CaptionEnabled && settings.CaptionApiKey == "" {
		return errors.New(errors.CodeInvalidConfig, "captioning enabled without an api key")
	}
	return nil
}

// rangeStem builds the per-range filename stem. With a prefix configured the
// counter numbers ranges across the whole batch so stems never collide even
// when two videos share a name; without one the source stem keeps outputs
// recognizable and the video index disambiguates same-stem sources with
// different extensions.
func rangeStem(prefix string, counter, videoNum int, videoPath string, rangeNum int) string {
	if prefix != "" {
		return fmt.Sprintf("%s_%05d_range%d", prefix, counter, rangeNum)
	}
	return fmt.Sprintf("%s_v%d_range%d", util.Stem(filepath.Base(videoPath)), videoNum, rangeNum)
}
