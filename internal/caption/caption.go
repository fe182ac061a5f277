// Package caption composes prompts for the captioning backend and writes the
// resulting caption as a sidecar text file next to each exported artifact.
package caption

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vidprep/internal/types"
	"vidprep/log"
	"vidprep/pkg/errors"
	"vidprep/pkg/util"

	"go.uber.org/zap"
)

// Settings is the caption-relevant slice of the export configuration.
type Settings struct {
	Enabled       bool
	TriggerWord   string
	CharacterName string
	MaxRetries    int
}

// Adapter turns exported artifacts into caption sidecars. With captioning
// enabled it asks the backend to describe the media; otherwise it falls back
// to a static trigger-word sidecar when a trigger word is configured.
type Adapter struct {
	Backend  types.Captioner
	Settings Settings

	// swappable for tests
	sleep func(time.Duration)
}

// New builds an adapter. backend may be nil when captioning is disabled.
func New(backend types.Captioner, settings Settings) *Adapter {
	if settings.MaxRetries < 1 {
		settings.MaxRetries = 3
	}
	return &Adapter{Backend: backend, Settings: settings, sleep: time.Sleep}
}

// Sidecar implements export.CaptionSink. generate requests full caption
// generation; without it (or with captioning disabled) only the static
// trigger-word sidecar is considered.
func (a *Adapter) Sidecar(ctx context.Context, mediaPath string, kind types.MediaKind, generate bool) error {
	if !generate || !a.Settings.Enabled || a.Backend == nil {
		if a.Settings.TriggerWord == "" {
			return nil
		}
		return a.writeSidecar(mediaPath, a.Settings.TriggerWord)
	}

	text, err := a.generate(ctx, mediaPath, kind)
	if err != nil {
		return err
	}
	return a.writeSidecar(mediaPath, a.compose(text))
}

// generate calls the backend with retries and exponential backoff.
func (a *Adapter) generate(ctx context.Context, mediaPath string, kind types.MediaKind) (string, error) {
	prompt := a.Prompt(kind)

	var lastErr error
	for attempt := 1; attempt <= a.Settings.MaxRetries; attempt++ {
		text, err := a.Backend.Caption(ctx, mediaPath, kind, prompt)
		if err == nil {
			text = strings.TrimSpace(text)
			if text == "" {
				err = errors.New(errors.CodeCaptionFailed, "backend returned an empty caption")
			} else {
				return text, nil
			}
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < a.Settings.MaxRetries {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			log.GetLogger().Warn("Caption: attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(err))
			a.sleep(backoff)
		}
	}
	return "", errors.WrapWithDetail(errors.CodeCaptionFailed,
		"caption generation exhausted retries", mediaPath, lastErr)
}

// Prompt builds the backend instruction for the media kind, weaving in the
// character name when one is configured.
func (a *Adapter) Prompt(kind types.MediaKind) string {
	subjectClause := " Describe the main subject(s), including"
	actionSubject := "the subject(s)"
	if name := strings.TrimSpace(a.Settings.CharacterName); name != "" {
		subjectClause = fmt.Sprintf(" The main subject is named %s. Describe %s, including their", name, name)
		actionSubject = name
	}

	if kind == types.MediaImage {
		return fmt.Sprintf(types.ImageCaptionPrompt, subjectClause)
	}
	return fmt.Sprintf(types.ClipCaptionPrompt, subjectClause, actionSubject)
}

// compose prepends the trigger word to the generated text.
func (a *Adapter) compose(text string) string {
	if a.Settings.TriggerWord == "" {
		return text
	}
	return a.Settings.TriggerWord + ", " + text
}

// writeSidecar writes the caption next to the artifact, same stem, .txt.
func (a *Adapter) writeSidecar(mediaPath, text string) error {
	path := SidecarPath(mediaPath)
	if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
		return errors.WrapWithDetail(errors.CodeCaptionFailed,
			"cannot write caption sidecar", path, err)
	}
	return nil
}

// SidecarPath is the caption file location for a media artifact.
func SidecarPath(mediaPath string) string {
	return filepath.Join(filepath.Dir(mediaPath), util.Stem(mediaPath)+".txt")
}
