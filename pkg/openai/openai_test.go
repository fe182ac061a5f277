package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidprep/internal/types"
	"vidprep/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransportProxy(t *testing.T) {
	assert.Nil(t, newTransport("").Proxy)

	tr := newTransport("http://127.0.0.1:7890")
	require.NotNil(t, tr.Proxy)
	req, err := http.NewRequest(http.MethodGet, "https://api.openai.com/v1/chat/completions", nil)
	require.NoError(t, err)
	proxyUrl, err := tr.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:7890", proxyUrl.String())

	assert.Nil(t, newTransport("://bad").Proxy)
}

func TestCaption(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{"role": "assistant", "content": "  a red ball  "},
			}},
		})
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))

	c := NewClient(server.URL+"/v1", "test-key", "gpt-4o-mini", "")
	text, err := c.Caption(context.Background(), path, types.MediaImage, "describe")
	require.NoError(t, err)
	assert.Equal(t, "a red ball", text)
}

func TestCaptionRejectsClips(t *testing.T) {
	c := NewClient("", "k", "m", "")
	_, err := c.Caption(context.Background(), "clip.mp4", types.MediaClip, "p")
	assert.True(t, errors.Is(err, errors.CodeCaptionFailed))
}

func TestDataURL(t *testing.T) {
	assert.True(t, strings.HasPrefix(dataURL("a.jpg", nil), "data:image/jpeg;base64,"))
	assert.True(t, strings.HasPrefix(dataURL("a.JPEG", nil), "data:image/jpeg;base64,"))
	assert.True(t, strings.HasPrefix(dataURL("a.webp", nil), "data:image/webp;base64,"))
	assert.True(t, strings.HasPrefix(dataURL("a.png", nil), "data:image/png;base64,"))
}
