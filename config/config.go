package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"vidprep/internal/appdirs"
	"vidprep/log"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

type AppConfig struct {
	FfmpegPath  string `toml:"ffmpeg_path"`
	FfprobePath string `toml:"ffprobe_path"`
	Proxy       string `toml:"proxy"`

	ParsedProxy *url.URL `toml:"-"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type OpenaiCompatibleConfig struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

type GeminiConfig struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

type CaptionConfig struct {
	Provider   string                 `toml:"provider"` // openai | gemini
	MaxRetries int                    `toml:"max_retries"`
	Openai     OpenaiCompatibleConfig `toml:"openai"`
	Gemini     GeminiConfig           `toml:"gemini"`
}

type ExportConfig struct {
	Concurrency     int `toml:"concurrency"`
	DefaultLongEdge int `toml:"default_long_edge"`
}

type Config struct {
	App     AppConfig     `toml:"app"`
	Server  ServerConfig  `toml:"server"`
	Caption CaptionConfig `toml:"caption"`
	Export  ExportConfig  `toml:"export"`
}

var Conf Config

var resolveConfigPath = func() (string, error) {
	dirs, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return dirs.ConfigFile, nil
}

func defaultConfig() Config {
	return Config{
		App: AppConfig{
			FfmpegPath:  "ffmpeg",
			FfprobePath: "ffprobe",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Caption: CaptionConfig{
			Provider:   "gemini",
			MaxRetries: 3,
			Gemini: GeminiConfig{
				Model: "gemini-1.5-flash-latest",
			},
			Openai: OpenaiCompatibleConfig{
				Model: "gpt-4o-mini",
			},
		},
		Export: ExportConfig{
			Concurrency:     2,
			DefaultLongEdge: 1024,
		},
	}
}

// LoadConfig reads the TOML config file, writing defaults when it is absent.
// Returns false when the config exists but cannot be parsed.
func LoadConfig() bool {
	configPath, err := resolveConfigPath()
	if err != nil {
		log.GetLogger().Error("failed to resolve config path", zap.Error(err))
		return false
	}

	if _, err = os.Stat(configPath); os.IsNotExist(err) {
		Conf = defaultConfig()
		if err = SaveConfig(); err != nil {
			log.GetLogger().Error("failed to write default config", zap.String("path", configPath), zap.Error(err))
			return false
		}
		log.GetLogger().Info("default config created", zap.String("path", configPath))
		return true
	}

	Conf = defaultConfig()
	if _, err = toml.DecodeFile(configPath, &Conf); err != nil {
		log.GetLogger().Error("failed to parse config file", zap.String("path", configPath), zap.Error(err))
		return false
	}

	log.GetLogger().Info("config loaded", zap.String("path", configPath))
	return true
}

// SaveConfig writes the current Conf back to the config file, creating
// parent directories as needed.
func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(Conf)
}

// CheckConfig validates Conf and normalizes derived fields.
func CheckConfig() error {
	if Conf.App.FfmpegPath == "" {
		Conf.App.FfmpegPath = "ffmpeg"
	}
	if Conf.App.FfprobePath == "" {
		Conf.App.FfprobePath = "ffprobe"
	}
	if Conf.App.Proxy != "" {
		parsed, err := url.Parse(Conf.App.Proxy)
		if err != nil {
			return fmt.Errorf("invalid proxy address %q: %w", Conf.App.Proxy, err)
		}
		Conf.App.ParsedProxy = parsed
	}

	if Conf.Server.Port <= 0 || Conf.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", Conf.Server.Port)
	}

	switch Conf.Caption.Provider {
	case "", "openai", "gemini":
	default:
		return fmt.Errorf("unknown caption provider: %q", Conf.Caption.Provider)
	}
	if Conf.Caption.MaxRetries <= 0 {
		Conf.Caption.MaxRetries = 3
	}

	if Conf.Export.Concurrency <= 0 {
		Conf.Export.Concurrency = 2
	}

	return nil
}
