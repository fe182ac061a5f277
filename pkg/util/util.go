package util

import (
	"path/filepath"
	"regexp"
	"strings"
)

var videoExtensions = map[string]struct{}{
	".mp4": {},
	".avi": {},
	".mov": {},
	".mkv": {},
}

// IsVideoFile reports whether the filename carries a supported video extension.
func IsVideoFile(name string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Stem returns the base filename without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename replaces characters that are unsafe in output filenames.
func SanitizeFilename(name string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(name, "_")
	sanitized = strings.Trim(sanitized, "._")
	if sanitized == "" {
		return "untitled"
	}
	return sanitized
}

// FramesToSeconds converts a frame offset to seconds at the given frame rate.
// A non-positive fps yields 0 rather than a division error.
func FramesToSeconds(frames int, fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(frames) / fps
}
