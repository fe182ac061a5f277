// Package session holds the editing data model: a working folder, its source
// videos, and the user-defined clip ranges on each. All mutations here are
// synchronous and run on the caller's goroutine; export workers only ever see
// immutable job snapshots, never a live Session.
package session

import (
	"fmt"
	"path/filepath"
	"strings"

	"vidprep/internal/geometry"
	"vidprep/internal/types"
	"vidprep/pkg/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Range is a user-defined contiguous frame interval within one source video,
// with an optional crop rectangle in source pixels.
type Range struct {
	ID             string         `json:"id"`
	StartFrame     int            `json:"start_frame"`
	DurationFrames int            `json:"duration_frames"`
	Crop           *geometry.Rect `json:"crop,omitempty"`
}

// EndFrame is the inclusive last frame of the range.
func (r *Range) EndFrame() int {
	return r.StartFrame + r.DurationFrames - 1
}

// VideoEntry is one source video plus its ordered ranges. Range order is
// creation order and drives export numbering.
type VideoEntry struct {
	Path           string        `json:"path"`
	TotalFrames    int           `json:"total_frames"`
	Resolution     geometry.Size `json:"native_resolution"`
	Fps            float64       `json:"fps"`
	ExportSelected bool          `json:"export_selected"`
	Ranges         []*Range      `json:"ranges"`
}

// ExportSettings is the per-session export configuration. A snapshot of it is
// handed to the planner at export time.
type ExportSettings struct {
	ExportCropped   bool   `json:"export_cropped"`
	ExportUncropped bool   `json:"export_uncropped"`
	ExportFrame     bool   `json:"export_frame"`
	MaxLongEdge     int    `json:"max_long_edge"`
	FilenamePrefix  string `json:"filename_prefix"`
	TriggerWord     string `json:"trigger_word"`
	CharacterName   string `json:"character_name"`
	CaptionEnabled  bool   `json:"caption_enabled"`
	CaptionApiKey   string `json:"caption_api_key"`
}

// Session is the full working set of one folder.
type Session struct {
	RootFolder string         `json:"root_folder"`
	Videos     []*VideoEntry  `json:"videos"`
	Export     ExportSettings `json:"export_config"`
}

// New constructs an empty session rooted at the given folder.
func New(rootFolder string) *Session {
	return &Session{
		RootFolder: filepath.Clean(rootFolder),
	}
}

// Clone returns a deep copy. Handlers serialize responses after releasing
// the session lock, so anything handed out must be a copy, never the live
// session.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Videos = lo.Map(s.Videos, func(v *VideoEntry, _ int) *VideoEntry { return v.Clone() })
	return &cp
}

// Clone returns a deep copy of the entry and its ranges.
func (v *VideoEntry) Clone() *VideoEntry {
	cp := *v
	cp.Ranges = lo.Map(v.Ranges, func(r *Range, _ int) *Range { return r.Clone() })
	return &cp
}

// Clone returns a deep copy of the range.
func (r *Range) Clone() *Range {
	cp := *r
	if r.Crop != nil {
		crop := *r.Crop
		cp.Crop = &crop
	}
	return &cp
}

// AddVideo appends a video entry. The path must lie under the session root.
func (s *Session) AddVideo(path string, info types.VideoInfo) (*VideoEntry, error) {
	cleaned := filepath.Clean(path)
	if !s.containsPath(cleaned) {
		return nil, errors.WrapWithDetail(errors.CodeInvalidParams,
			"video path is outside the session root", cleaned, nil)
	}
	if s.VideoByPath(cleaned) != nil {
		return nil, errors.WrapWithDetail(errors.CodeInvalidParams,
			"video already present in session", cleaned, nil)
	}

	entry := &VideoEntry{
		Path:        cleaned,
		TotalFrames: info.TotalFrames,
		Resolution:  info.Resolution(),
		Fps:         info.Fps,
	}
	s.Videos = append(s.Videos, entry)
	return entry, nil
}

// VideoByPath returns the entry for the given path, or nil.
func (s *Session) VideoByPath(path string) *VideoEntry {
	cleaned := filepath.Clean(path)
	entry, _ := lo.Find(s.Videos, func(v *VideoEntry) bool { return v.Path == cleaned })
	return entry
}

// RemoveVideo destroys the entry and all its ranges.
func (s *Session) RemoveVideo(path string) bool {
	cleaned := filepath.Clean(path)
	before := len(s.Videos)
	s.Videos = lo.Reject(s.Videos, func(v *VideoEntry, _ int) bool { return v.Path == cleaned })
	return len(s.Videos) < before
}

// SelectedVideos returns entries flagged for export, in session order.
func (s *Session) SelectedVideos() []*VideoEntry {
	return lo.Filter(s.Videos, func(v *VideoEntry, _ int) bool { return v.ExportSelected })
}

func (s *Session) containsPath(path string) bool {
	rel, err := filepath.Rel(s.RootFolder, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// AddRange appends a crop-less range. Fails with an invalid-range error when
// start is out of bounds or duration < 1; the end frame is clamped to the
// video length and the duration recomputed to match.
func (v *VideoEntry) AddRange(startFrame, durationFrames int) (*Range, error) {
	return v.AddRangeWithCrop(startFrame, durationFrames, nil)
}

// AddRangeWithCrop appends a range carrying a crop rectangle in source
// pixels (already mapped via geometry.ToSource).
func (v *VideoEntry) AddRangeWithCrop(startFrame, durationFrames int, crop *geometry.Rect) (*Range, error) {
	if startFrame < 0 || startFrame >= v.TotalFrames {
		return nil, errors.WrapWithDetail(errors.CodeInvalidRange,
			"start frame out of bounds",
			fmt.Sprintf("start=%d total=%d", startFrame, v.TotalFrames), nil)
	}
	if durationFrames < 1 {
		return nil, errors.WrapWithDetail(errors.CodeInvalidRange,
			"duration must be at least one frame",
			fmt.Sprintf("duration=%d", durationFrames), nil)
	}

	endFrame := startFrame + durationFrames - 1
	if endFrame > v.TotalFrames-1 {
		endFrame = v.TotalFrames - 1
	}

	if crop != nil && crop.Empty() {
		crop = nil
	}

	r := &Range{
		ID:             uuid.New().String(),
		StartFrame:     startFrame,
		DurationFrames: endFrame - startFrame + 1,
		Crop:           crop,
	}
	v.Ranges = append(v.Ranges, r)
	return r, nil
}

// RangeByID returns the range with the given id, or nil.
func (v *VideoEntry) RangeByID(id string) *Range {
	r, _ := lo.Find(v.Ranges, func(r *Range) bool { return r.ID == id })
	return r
}

// RemoveRange destroys the range. Remaining ranges keep their order.
func (v *VideoEntry) RemoveRange(id string) bool {
	before := len(v.Ranges)
	v.Ranges = lo.Reject(v.Ranges, func(r *Range, _ int) bool { return r.ID == id })
	return len(v.Ranges) < before
}

// NudgeStart shifts the start frame by delta while keeping the end frame
// fixed, recomputing the duration. The start clamps to [0, end].
func (v *VideoEntry) NudgeStart(r *Range, delta int) {
	end := r.EndFrame()
	start := r.StartFrame + delta
	if start < 0 {
		start = 0
	}
	if start > end {
		start = end
	}
	r.StartFrame = start
	r.DurationFrames = end - start + 1
}

// NudgeEnd shifts the end frame by delta while keeping the start fixed. The
// end clamps to [start, total_frames-1].
func (v *VideoEntry) NudgeEnd(r *Range, delta int) {
	end := r.EndFrame() + delta
	if end < r.StartFrame {
		end = r.StartFrame
	}
	if end > v.TotalFrames-1 {
		end = v.TotalFrames - 1
	}
	r.DurationFrames = end - r.StartFrame + 1
}

// SetCrop overwrites the crop. A nil or empty rect clears it (full frame).
func (r *Range) SetCrop(crop *geometry.Rect) {
	if crop != nil && crop.Empty() {
		crop = nil
	}
	r.Crop = crop
}

// ClearCrop resets the range to full frame.
func (r *Range) ClearCrop() {
	r.Crop = nil
}
