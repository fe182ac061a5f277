package session

import (
	"os"
	"path/filepath"
	"testing"

	"vidprep/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScanFolder(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.mp4"))
	touch(t, filepath.Join(root, "a.mkv"))
	touch(t, filepath.Join(root, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub.mp4"), 0o755))

	files, err := ScanFolder(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.mkv"),
		filepath.Join(root, "b.mp4"),
	}, files)
}

func TestReconcileAddsNewFiles(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	newFile := filepath.Join(root, "fresh.mp4")

	report := s.Reconcile([]string{newFile})
	assert.Equal(t, []string{newFile}, report.Added)
	require.Len(t, s.Videos, 1)
	assert.Equal(t, newFile, s.Videos[0].Path)
	assert.False(t, s.Videos[0].ExportSelected)
	assert.Zero(t, s.Videos[0].TotalFrames)
}

func TestReconcileRelinksRenamedFile(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	oldPath := filepath.Join(root, "holiday_footage.mp4")
	v, err := s.AddVideo(oldPath, types.VideoInfo{TotalFrames: 200})
	require.NoError(t, err)
	_, err = v.AddRange(0, 30)
	require.NoError(t, err)

	newPath := filepath.Join(root, "holiday_footage_v2.mp4")
	report := s.Reconcile([]string{newPath})

	assert.Equal(t, newPath, report.Relinked[oldPath])
	assert.Empty(t, report.Added)
	assert.Empty(t, report.Missing)
	require.Len(t, s.Videos, 1)
	assert.Equal(t, newPath, s.Videos[0].Path)
	assert.Len(t, s.Videos[0].Ranges, 1, "ranges survive a rename")
}

func TestReconcileReportsMissingWhenNoSimilarName(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	gone := filepath.Join(root, "holiday_footage.mp4")
	_, err := s.AddVideo(gone, types.VideoInfo{TotalFrames: 200})
	require.NoError(t, err)

	other := filepath.Join(root, "zzz.mp4")
	report := s.Reconcile([]string{other})

	assert.Equal(t, []string{gone}, report.Missing)
	assert.Equal(t, []string{other}, report.Added)
	require.Len(t, s.Videos, 2)
}

func TestReconcileKeepsUnchangedEntries(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	path := filepath.Join(root, "clip.mp4")
	_, err := s.AddVideo(path, types.VideoInfo{TotalFrames: 200})
	require.NoError(t, err)

	report := s.Reconcile([]string{path})
	assert.Empty(t, report.Added)
	assert.Empty(t, report.Missing)
	assert.Empty(t, report.Relinked)
}
