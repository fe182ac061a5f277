package session

import (
	"os"
	"path/filepath"
	"sort"

	"vidprep/pkg/errors"
	"vidprep/pkg/util"

	"github.com/samber/lo"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// ScanReport summarizes a reconciliation pass against the folder contents.
type ScanReport struct {
	Added    []string          // files discovered with no session entry
	Relinked map[string]string // old path -> new path for renamed files
	Missing  []string          // entries whose file is gone and unmatched
}

// ScanFolder lists video files directly inside the folder, sorted by name.
func ScanFolder(rootFolder string) ([]string, error) {
	entries, err := os.ReadDir(rootFolder)
	if err != nil {
		return nil, errors.WrapWithDetail(errors.CodeFileNotFound,
			"cannot read folder", rootFolder, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !util.IsVideoFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(rootFolder, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Reconcile aligns the session with the current folder contents. New files
// get fresh entries (not export-selected, metadata unprobed). Entries whose
// file vanished are re-linked to the closest-named new file when the names
// are similar enough, so a rename keeps its ranges; otherwise the entry is
// kept and reported missing so the caller can decide.
func (s *Session) Reconcile(foundFiles []string) ScanReport {
	report := ScanReport{Relinked: map[string]string{}}

	known := lo.SliceToMap(s.Videos, func(v *VideoEntry) (string, *VideoEntry) {
		return v.Path, v
	})
	onDisk := lo.SliceToMap(foundFiles, func(p string) (string, struct{}) {
		return filepath.Clean(p), struct{}{}
	})

	var unmatched []string
	for _, f := range foundFiles {
		cleaned := filepath.Clean(f)
		if _, ok := known[cleaned]; !ok {
			unmatched = append(unmatched, cleaned)
		}
	}

	// Re-link renamed files before creating new entries, closest name first.
	for _, v := range s.Videos {
		if _, ok := onDisk[v.Path]; ok {
			continue
		}
		best, rest := closestName(v.Path, unmatched)
		if best == "" {
			report.Missing = append(report.Missing, v.Path)
			continue
		}
		report.Relinked[v.Path] = best
		v.Path = best
		unmatched = rest
	}

	for _, f := range unmatched {
		entry := &VideoEntry{Path: f}
		s.Videos = append(s.Videos, entry)
		report.Added = append(report.Added, f)
	}
	return report
}

// closestName finds the candidate whose base name is within edit distance
// threshold of the target's base name, returning it along with the remaining
// candidates. Returns "" when nothing is close enough.
func closestName(target string, candidates []string) (string, []string) {
	targetStem := util.Stem(filepath.Base(target))

	bestIdx := -1
	bestDist := -1
	for i, c := range candidates {
		d := levenshtein.DistanceForStrings(
			[]rune(targetStem), []rune(util.Stem(filepath.Base(c))),
			levenshtein.DefaultOptions)
		if bestIdx == -1 || d < bestDist {
			bestIdx, bestDist = i, d
		}
	}
	if bestIdx == -1 || bestDist > renameThreshold(targetStem) {
		return "", candidates
	}

	best := candidates[bestIdx]
	rest := append(append([]string{}, candidates[:bestIdx]...), candidates[bestIdx+1:]...)
	return best, rest
}

// renameThreshold scales with name length so short names must match almost
// exactly while long names tolerate small edits.
func renameThreshold(stem string) int {
	t := len(stem) / 3
	if t < 2 {
		t = 2
	}
	return t
}
