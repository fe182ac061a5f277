// Package ffmpeg implements the video processing backend on top of the
// ffmpeg/ffprobe command line tools.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"vidprep/internal/geometry"
	"vidprep/internal/types"
	"vidprep/log"
	"vidprep/pkg/errors"

	ffmpeg_go "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// Transcoder shells out to ffmpeg for every request. It satisfies
// types.Transcoder.
type Transcoder struct {
	FfmpegPath  string
	FfprobePath string
}

func New(ffmpegPath, ffprobePath string) *Transcoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Transcoder{FfmpegPath: ffmpegPath, FfprobePath: ffprobePath}
}

// Probe reads stream metadata with ffprobe. Frame count falls back to
// duration × frame rate when the container does not record nb_frames.
func (t *Transcoder) Probe(ctx context.Context, path string) (types.VideoInfo, error) {
	raw, err := t.runProbe(ctx, path)
	if err != nil {
		return types.VideoInfo{}, errors.WrapWithDetail(errors.CodeProbeFailed,
			"ffprobe invocation failed", path, err)
	}

	var data struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
			NbFrames  string `json:"nb_frames"`
			RFrameRC  string `json:"r_frame_rate"`
			Duration  string `json:"duration"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err = json.Unmarshal(raw, &data); err != nil {
		return types.VideoInfo{}, errors.WrapWithDetail(errors.CodeProbeFailed,
			"cannot parse ffprobe output", path, err)
	}

	for _, s := range data.Streams {
		if s.CodecType != "video" {
			continue
		}
		info := types.VideoInfo{Width: s.Width, Height: s.Height}
		info.Fps = parseFrameRate(s.RFrameRC)
		info.Duration, _ = strconv.ParseFloat(strings.TrimSpace(s.Duration), 64)
		if info.Duration == 0 {
			info.Duration, _ = strconv.ParseFloat(strings.TrimSpace(data.Format.Duration), 64)
		}
		if n, err := strconv.Atoi(strings.TrimSpace(s.NbFrames)); err == nil && n > 0 {
			info.TotalFrames = n
		} else if info.Fps > 0 && info.Duration > 0 {
			info.TotalFrames = int(math.Round(info.Duration * info.Fps))
		}
		if info.Width <= 0 || info.Height <= 0 {
			return types.VideoInfo{}, errors.WrapWithDetail(errors.CodeProbeFailed,
				"video stream has no dimensions", path, nil)
		}
		return info, nil
	}
	return types.VideoInfo{}, errors.WrapWithDetail(errors.CodeProbeFailed,
		"no video stream found", path, nil)
}

// Transcode trims, optionally crops and scales, and re-encodes one clip.
func (t *Transcoder) Transcode(ctx context.Context, spec types.TranscodeSpec) error {
	inputArgs := ffmpeg_go.KwArgs{"ss": formatSeconds(spec.StartSeconds)}
	if spec.DurationSeconds > 0 {
		inputArgs["t"] = formatSeconds(spec.DurationSeconds)
	}

	outputArgs := ffmpeg_go.KwArgs{
		"c:v":          "libx264",
		"crf":          23,
		"preset":       "medium",
		"map_metadata": -1,
	}
	if filters := videoFilters(spec.Crop, spec.MaxLongEdge, spec.OutputFps); filters != "" {
		outputArgs["vf"] = filters
	}
	if spec.OutputFps > 0 {
		outputArgs["vsync"] = "cfr"
	}

	stream := ffmpeg_go.Input(spec.InputPath, inputArgs).
		Output(spec.OutputPath, outputArgs).
		OverWriteOutput()
	return t.runStream(ctx, stream, spec.OutputPath)
}

// ExtractFrame grabs a single frame at the given timestamp as an image.
func (t *Transcoder) ExtractFrame(ctx context.Context, spec types.FrameSpec) error {
	outputArgs := ffmpeg_go.KwArgs{"vframes": 1}
	if filters := videoFilters(spec.Crop, spec.MaxLongEdge, 0); filters != "" {
		outputArgs["vf"] = filters
	}

	stream := ffmpeg_go.Input(spec.InputPath, ffmpeg_go.KwArgs{"ss": formatSeconds(spec.Seconds)}).
		Output(spec.OutputPath, outputArgs).
		OverWriteOutput()
	return t.runStream(ctx, stream, spec.OutputPath)
}

// Resample rewrites a whole file at the target frame rate, rounding frame
// timestamps up so the output never runs shorter than the source.
func (t *Transcoder) Resample(ctx context.Context, inputPath, outputPath string, targetFps int, copyAudio bool) error {
	outputArgs := ffmpeg_go.KwArgs{
		"vf":     fmt.Sprintf("fps=%d:round=up", targetFps),
		"c:v":    "libx264",
		"crf":    23,
		"preset": "medium",
	}
	if copyAudio {
		outputArgs["c:a"] = "copy"
	} else {
		outputArgs["c:a"] = "aac"
	}

	stream := ffmpeg_go.Input(inputPath).
		Output(outputPath, outputArgs).
		OverWriteOutput()
	return t.runStream(ctx, stream, outputPath)
}

// runStream compiles the stream into an exec.Cmd and supervises it, killing
// the ffmpeg process when the context is canceled. ffmpeg-go itself has no
// context support.
func (t *Transcoder) runStream(ctx context.Context, stream *ffmpeg_go.Stream, outputPath string) error {
	cmd := stream.SetFfmpegPath(t.FfmpegPath).Compile()

	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	log.GetLogger().Debug("Ffmpeg: running",
		zap.Strings("args", cmd.Args),
		zap.String("output", outputPath))

	if err := cmd.Start(); err != nil {
		return errors.Wrap(errors.CodeBackendUnavailable, "cannot start ffmpeg", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return errors.WrapWithDetail(errors.CodeExportJobFailed,
				"ffmpeg exited with an error", tail(stderr.String(), 400), err)
		}
		return nil
	}
}

func (t *Transcoder) runProbe(ctx context.Context, path string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, t.FfprobePath,
		"-v", "error",
		"-show_streams", "-show_format",
		"-of", "json",
		path)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// videoFilters builds the linear -vf chain: crop, then scale to the long
// edge, then fps normalization. Scale keeps aspect with the short edge
// rounded to an even value for the encoder.
func videoFilters(crop *geometry.Rect, maxLongEdge, outputFps int) string {
	var filters []string
	if crop != nil && !crop.Empty() {
		filters = append(filters,
			fmt.Sprintf("crop=%d:%d:%d:%d", crop.Width, crop.Height, crop.X, crop.Y))
	}
	if maxLongEdge > 0 {
		filters = append(filters, fmt.Sprintf(
			"scale='if(gte(iw,ih),min(%d,iw),-2)':'if(gte(iw,ih),-2,min(%d,ih))'",
			maxLongEdge, maxLongEdge))
	}
	if outputFps > 0 {
		filters = append(filters, fmt.Sprintf("fps=%d:round=up", outputFps))
	}
	return strings.Join(filters, ",")
}

func parseFrameRate(ratio string) float64 {
	parts := strings.Split(strings.TrimSpace(ratio), "/")
	if len(parts) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 6, 64)
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
