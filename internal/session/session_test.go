package session

import (
	"testing"

	"vidprep/internal/geometry"
	"vidprep/internal/types"
	"vidprep/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry(t *testing.T, totalFrames int) *VideoEntry {
	t.Helper()
	s := New(t.TempDir())
	entry, err := s.AddVideo(s.RootFolder+"/clip.mp4", types.VideoInfo{
		TotalFrames: totalFrames,
		Width:       1920,
		Height:      1080,
		Fps:         30,
	})
	require.NoError(t, err)
	return entry
}

func TestAddRange(t *testing.T) {
	v := newTestEntry(t, 300)

	r, err := v.AddRange(10, 50)
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, 10, r.StartFrame)
	assert.Equal(t, 50, r.DurationFrames)
	assert.Equal(t, 59, r.EndFrame())
	assert.Nil(t, r.Crop)
}

func TestAddRangeValidation(t *testing.T) {
	v := newTestEntry(t, 300)

	_, err := v.AddRange(-1, 10)
	assert.True(t, errors.Is(err, errors.CodeInvalidRange))

	_, err = v.AddRange(300, 10)
	assert.True(t, errors.Is(err, errors.CodeInvalidRange))

	_, err = v.AddRange(10, 0)
	assert.True(t, errors.Is(err, errors.CodeInvalidRange))

	assert.Empty(t, v.Ranges)
}

func TestAddRangeClampsEndToVideoLength(t *testing.T) {
	v := newTestEntry(t, 300)

	r, err := v.AddRange(290, 100)
	require.NoError(t, err)
	assert.Equal(t, 290, r.StartFrame)
	assert.Equal(t, 10, r.DurationFrames)
	assert.Equal(t, 299, r.EndFrame())
}

func TestAddRangeWithCrop(t *testing.T) {
	v := newTestEntry(t, 300)

	crop := &geometry.Rect{X: 100, Y: 50, Width: 640, Height: 480}
	r, err := v.AddRangeWithCrop(0, 30, crop)
	require.NoError(t, err)
	require.NotNil(t, r.Crop)
	assert.Equal(t, *crop, *r.Crop)

	// an empty rect means full frame
	r2, err := v.AddRangeWithCrop(0, 30, &geometry.Rect{})
	require.NoError(t, err)
	assert.Nil(t, r2.Crop)
}

func TestNudgeStartKeepsEndFixed(t *testing.T) {
	v := newTestEntry(t, 300)
	r, err := v.AddRange(100, 50)
	require.NoError(t, err)
	end := r.EndFrame()

	v.NudgeStart(r, -10)
	assert.Equal(t, 90, r.StartFrame)
	assert.Equal(t, end, r.EndFrame())

	v.NudgeStart(r, 30)
	assert.Equal(t, 120, r.StartFrame)
	assert.Equal(t, end, r.EndFrame())
}

func TestNudgeStartClamps(t *testing.T) {
	v := newTestEntry(t, 300)
	r, err := v.AddRange(5, 20)
	require.NoError(t, err)

	v.NudgeStart(r, -100)
	assert.Equal(t, 0, r.StartFrame)
	assert.Equal(t, 24, r.EndFrame())

	// pushing past the end degenerates to a single frame, never less
	v.NudgeStart(r, 1000)
	assert.Equal(t, 24, r.StartFrame)
	assert.Equal(t, 1, r.DurationFrames)
}

func TestNudgeEndClamps(t *testing.T) {
	v := newTestEntry(t, 300)
	r, err := v.AddRange(100, 50)
	require.NoError(t, err)

	v.NudgeEnd(r, 10)
	assert.Equal(t, 159, r.EndFrame())

	v.NudgeEnd(r, 1000)
	assert.Equal(t, 299, r.EndFrame())

	v.NudgeEnd(r, -1000)
	assert.Equal(t, 100, r.EndFrame())
	assert.Equal(t, 1, r.DurationFrames)
}

func TestRemoveRangePreservesOrder(t *testing.T) {
	v := newTestEntry(t, 300)

	first, err := v.AddRange(0, 30)
	require.NoError(t, err)
	second, err := v.AddRange(100, 50)
	require.NoError(t, err)

	assert.True(t, v.RemoveRange(first.ID))
	require.Len(t, v.Ranges, 1)
	assert.Equal(t, second.ID, v.Ranges[0].ID)

	assert.False(t, v.RemoveRange(first.ID))
}

func TestSetCrop(t *testing.T) {
	v := newTestEntry(t, 300)
	r, err := v.AddRange(0, 30)
	require.NoError(t, err)

	crop := &geometry.Rect{X: 10, Y: 20, Width: 320, Height: 240}
	r.SetCrop(crop)
	require.NotNil(t, r.Crop)

	r.SetCrop(&geometry.Rect{})
	assert.Nil(t, r.Crop)

	r.SetCrop(crop)
	r.SetCrop(nil)
	assert.Nil(t, r.Crop)

	r.SetCrop(crop)
	r.ClearCrop()
	assert.Nil(t, r.Crop)
}

func TestCloneIsIndependent(t *testing.T) {
	v := newTestEntry(t, 300)
	r, err := v.AddRangeWithCrop(0, 30, &geometry.Rect{X: 10, Y: 10, Width: 100, Height: 100})
	require.NoError(t, err)

	cp := r.Clone()
	assert.NotSame(t, r, cp)
	assert.Equal(t, r, cp)
	cp.Crop.X = 99
	assert.Equal(t, 10, r.Crop.X)

	s := New(t.TempDir())
	entry, err := s.AddVideo(s.RootFolder+"/clip.mp4", types.VideoInfo{TotalFrames: 300, Fps: 30})
	require.NoError(t, err)
	_, err = entry.AddRange(0, 30)
	require.NoError(t, err)

	snap := s.Clone()
	assert.Equal(t, s, snap)
	_, err = entry.AddRange(50, 30)
	require.NoError(t, err)
	assert.Len(t, snap.Videos[0].Ranges, 1, "snapshot unaffected by later mutation")
}

func TestAddVideoRejectsOutsideRoot(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.AddVideo("/elsewhere/clip.mp4", types.VideoInfo{TotalFrames: 10})
	assert.True(t, errors.Is(err, errors.CodeInvalidParams))
}

func TestAddVideoRejectsDuplicate(t *testing.T) {
	s := New(t.TempDir())
	path := s.RootFolder + "/clip.mp4"
	_, err := s.AddVideo(path, types.VideoInfo{TotalFrames: 10})
	require.NoError(t, err)
	_, err = s.AddVideo(path, types.VideoInfo{TotalFrames: 10})
	assert.True(t, errors.Is(err, errors.CodeInvalidParams))
}

func TestSelectedVideos(t *testing.T) {
	s := New(t.TempDir())
	a, err := s.AddVideo(s.RootFolder+"/a.mp4", types.VideoInfo{TotalFrames: 10})
	require.NoError(t, err)
	_, err = s.AddVideo(s.RootFolder+"/b.mp4", types.VideoInfo{TotalFrames: 10})
	require.NoError(t, err)

	a.ExportSelected = true
	selected := s.SelectedVideos()
	require.Len(t, selected, 1)
	assert.Equal(t, a.Path, selected[0].Path)
}
