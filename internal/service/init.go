package service

import (
	"sync"

	"vidprep/config"
	"vidprep/internal/types"
	"vidprep/log"
	"vidprep/pkg/ffmpeg"
	"vidprep/pkg/gemini"
	"vidprep/pkg/openai"

	"go.uber.org/zap"
)

// Service owns the processing backends and the in-memory registries for open
// sessions and running export batches.
type Service struct {
	Transcoder types.Transcoder
	Captioner  types.Captioner

	sessions sync.Map // root folder -> *sessionEntry
	batches  sync.Map // batch id -> *batchState
}

func NewService() *Service {
	transcoder := ffmpeg.New(config.Conf.App.FfmpegPath, config.Conf.App.FfprobePath)
	log.GetLogger().Info("Service: caption provider selected",
		zap.String("provider", config.Conf.Caption.Provider))

	return &Service{
		Transcoder: transcoder,
		Captioner:  buildCaptioner(transcoder, ""),
	}
}

// buildCaptioner constructs the configured caption backend. A non-empty
// apiKey overrides the key from the config file, which lets a session carry
// its own credential.
func buildCaptioner(transcoder types.Transcoder, apiKey string) types.Captioner {
	switch config.Conf.Caption.Provider {
	case "openai":
		key := config.Conf.Caption.Openai.ApiKey
		if apiKey != "" {
			key = apiKey
		}
		// the chat API takes no video input; reduce clips to a frame first
		return &clipFrameCaptioner{
			Backend: openai.NewClient(
				config.Conf.Caption.Openai.BaseUrl,
				key,
				config.Conf.Caption.Openai.Model,
				config.Conf.App.Proxy),
			Transcoder: transcoder,
		}
	case "gemini":
		key := config.Conf.Caption.Gemini.ApiKey
		if apiKey != "" {
			key = apiKey
		}
		return gemini.NewClient(
			config.Conf.Caption.Gemini.BaseUrl,
			key,
			config.Conf.Caption.Gemini.Model,
			config.Conf.App.Proxy)
	}
	return nil
}
