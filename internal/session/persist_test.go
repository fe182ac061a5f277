package session

import (
	"os"
	"path/filepath"
	"testing"

	"vidprep/internal/geometry"
	"vidprep/internal/types"
	"vidprep/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	s.Export = ExportSettings{
		ExportCropped:  true,
		ExportFrame:    true,
		MaxLongEdge:    1024,
		FilenamePrefix: "shot",
		TriggerWord:    "mystyle",
		CharacterName:  "Ada",
		CaptionEnabled: true,
	}

	v, err := s.AddVideo(filepath.Join(root, "clip.mp4"), types.VideoInfo{
		TotalFrames: 300, Width: 1920, Height: 1080, Fps: 29.97,
	})
	require.NoError(t, err)
	v.ExportSelected = true
	_, err = v.AddRange(0, 30)
	require.NoError(t, err)
	_, err = v.AddRangeWithCrop(100, 50, &geometry.Rect{X: 10, Y: 20, Width: 640, Height: 480})
	require.NoError(t, err)

	require.NoError(t, s.Save())
	assert.FileExists(t, filepath.Join(root, SessionFileName))

	loaded, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, s.RootFolder, loaded.RootFolder)
	assert.Equal(t, s.Export, loaded.Export)
	require.Len(t, loaded.Videos, 1)
	assert.Equal(t, v.Path, loaded.Videos[0].Path)
	assert.Equal(t, v.TotalFrames, loaded.Videos[0].TotalFrames)
	assert.Equal(t, v.Fps, loaded.Videos[0].Fps)
	assert.True(t, loaded.Videos[0].ExportSelected)
	require.Len(t, loaded.Videos[0].Ranges, 2)
	assert.Equal(t, v.Ranges[0], loaded.Videos[0].Ranges[0])
	assert.Equal(t, v.Ranges[1], loaded.Videos[0].Ranges[1])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, errors.CodeFileNotFound))
}

func TestLoadCorruptFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, SessionFileName), []byte("{nope"), 0o644))

	_, err := Load(root)
	assert.True(t, errors.Is(err, errors.CodeSessionLoadFailed))
}

func TestSaveReplacesExistingFile(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	_, err := s.AddVideo(filepath.Join(root, "a.mp4"), types.VideoInfo{TotalFrames: 10})
	require.NoError(t, err)
	require.NoError(t, s.Save())

	_, err = s.AddVideo(filepath.Join(root, "b.mp4"), types.VideoInfo{TotalFrames: 20})
	require.NoError(t, err)
	require.NoError(t, s.Save())

	loaded, err := Load(root)
	require.NoError(t, err)
	assert.Len(t, loaded.Videos, 2)

	// no stray temp files left behind
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSessionFileSurvivesFolderMove(t *testing.T) {
	parent := t.TempDir()
	oldRoot := filepath.Join(parent, "old")
	require.NoError(t, os.Mkdir(oldRoot, 0o755))

	s := New(oldRoot)
	_, err := s.AddVideo(filepath.Join(oldRoot, "clip.mp4"), types.VideoInfo{TotalFrames: 100})
	require.NoError(t, err)
	require.NoError(t, s.Save())

	newRoot := filepath.Join(parent, "new")
	require.NoError(t, os.Rename(oldRoot, newRoot))

	loaded, err := Load(newRoot)
	require.NoError(t, err)
	require.Len(t, loaded.Videos, 1)
	assert.Equal(t, filepath.Join(newRoot, "clip.mp4"), loaded.Videos[0].Path)
}
