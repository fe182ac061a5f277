package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"vidprep/internal/types"
	"vidprep/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mediaFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("binary"), 0o644))
	return path
}

func TestCaption(t *testing.T) {
	var gotPath string
	var gotBody generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "  a walking person  "}},
				},
			}},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", "gemini-1.5-flash-latest", "")
	text, err := c.Caption(context.Background(), mediaFile(t, "clip.mp4"), types.MediaClip, "describe")
	require.NoError(t, err)
	assert.Equal(t, "a walking person", text)
	assert.Equal(t, "/v1beta/models/gemini-1.5-flash-latest:generateContent", gotPath)

	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 2)
	assert.Equal(t, "describe", gotBody.Contents[0].Parts[0].Text)
	require.NotNil(t, gotBody.Contents[0].Parts[1].InlineData)
	assert.Equal(t, "video/mp4", gotBody.Contents[0].Parts[1].InlineData.MimeType)
}

func TestCaptionApiError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 403, "message": "API key invalid"},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "bad-key", "gemini-1.5-flash-latest", "")
	_, err := c.Caption(context.Background(), mediaFile(t, "frame.png"), types.MediaImage, "describe")
	assert.True(t, errors.Is(err, errors.CodeCaptionFailed))
}

func TestCaptionNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer server.Close()

	c := NewClient(server.URL, "k", "m", "")
	_, err := c.Caption(context.Background(), mediaFile(t, "frame.png"), types.MediaImage, "p")
	assert.True(t, errors.Is(err, errors.CodeCaptionFailed))
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "image/jpeg", mimeType("a.JPG", types.MediaImage))
	assert.Equal(t, "image/png", mimeType("a.png", types.MediaImage))
	assert.Equal(t, "video/x-matroska", mimeType("a.mkv", types.MediaClip))
	assert.Equal(t, "video/mp4", mimeType("a.mp4", types.MediaClip))
}
