// Package gemini implements the captioning backend on the Gemini
// generateContent REST API, which accepts both images and short video clips
// as inline data.
package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vidprep/internal/types"
	"vidprep/pkg/errors"

	"github.com/go-resty/resty/v2"
)

const defaultBaseUrl = "https://generativelanguage.googleapis.com"

type Client struct {
	http   *resty.Client
	apiKey string
	model  string
}

func NewClient(baseUrl, apiKey, model, proxyAddr string) *Client {
	if baseUrl == "" {
		baseUrl = defaultBaseUrl
	}
	http := resty.New().SetBaseURL(baseUrl)
	if proxyAddr != "" {
		http.SetProxy(proxyAddr)
	}
	return &Client{http: http, apiKey: apiKey, model: model}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Caption(ctx context.Context, mediaPath string, kind types.MediaKind, prompt string) (string, error) {
	data, err := os.ReadFile(mediaPath)
	if err != nil {
		return "", errors.WrapWithDetail(errors.CodeCaptionFailed,
			"cannot read media file", mediaPath, err)
	}

	body := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{
					MimeType: mimeType(mediaPath, kind),
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
	}

	var result generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(body).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.model))
	if err != nil {
		return "", errors.Wrap(errors.CodeBackendUnavailable, "gemini request failed", err)
	}
	if resp.IsError() {
		msg := resp.Status()
		if result.Error != nil {
			msg = result.Error.Message
		}
		return "", errors.WrapWithDetail(errors.CodeCaptionFailed,
			"gemini rejected the request", msg, nil)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.New(errors.CodeCaptionFailed, "gemini returned no candidates")
	}
	return strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text), nil
}

func mimeType(path string, kind types.MediaKind) string {
	ext := strings.ToLower(filepath.Ext(path))
	if kind == types.MediaImage {
		switch ext {
		case ".jpg", ".jpeg":
			return "image/jpeg"
		case ".webp":
			return "image/webp"
		default:
			return "image/png"
		}
	}
	switch ext {
	case ".mkv":
		return "video/x-matroska"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	default:
		return "video/mp4"
	}
}
