// Package openai implements the captioning backend on the OpenAI chat
// completion API with vision input.
package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"vidprep/internal/types"
	"vidprep/pkg/errors"

	"github.com/sashabaranov/go-openai"
)

// Client implements types.Captioner for still images. The chat API takes no
// video input, so clip requests must be reduced to a representative frame by
// the caller before they reach this client.
type Client struct {
	client *openai.Client
	model  string
}

func NewClient(baseUrl, apiKey, model, proxyAddr string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}

	cfg.HTTPClient = &http.Client{Transport: newTransport(proxyAddr)}

	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// newTransport routes requests through the given proxy when one is set. An
// unparsable address falls back to a direct connection.
func newTransport(proxyAddr string) *http.Transport {
	transport := &http.Transport{}
	if proxyAddr == "" {
		return transport
	}
	if proxyUrl, err := url.Parse(proxyAddr); err == nil {
		transport.Proxy = http.ProxyURL(proxyUrl)
	}
	return transport
}

func (c *Client) Caption(ctx context.Context, mediaPath string, kind types.MediaKind, prompt string) (string, error) {
	if kind != types.MediaImage {
		return "", errors.New(errors.CodeCaptionFailed,
			"openai captioning only accepts still images")
	}

	data, err := os.ReadFile(mediaPath)
	if err != nil {
		return "", errors.WrapWithDetail(errors.CodeCaptionFailed,
			"cannot read media file", mediaPath, err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: dataURL(mediaPath, data),
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", errors.Wrap(errors.CodeBackendUnavailable, "openai request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(errors.CodeCaptionFailed, "openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func dataURL(path string, data []byte) string {
	mime := "image/png"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	case ".webp":
		mime = "image/webp"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}
