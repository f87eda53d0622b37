package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"speech-relay/internal/app/api/baidu"
	apperrors "speech-relay/internal/app/errors"
)

const (
	DefaultTokenURL = "https://aip.baidubce.com/oauth/2.0/token"
	DefaultASRURL   = "https://vop.baidu.com/server_api"

	// DefaultSizeLimit caps both the upload body and the transcoded PCM; the
	// recognition API rejects anything larger.
	DefaultSizeLimit int64 = 10 * 1024 * 1024
)

// Settings is the complete runtime configuration.
// Secrets are never read from the YAML file.
type Settings struct {
	APIKey    string `yaml:"-" validate:"required"`
	SecretKey string `yaml:"-" validate:"required"`

	Server ServerSettings `yaml:"server"`
	Baidu  BaiduSettings  `yaml:"baidu"`
	Audio  AudioSettings  `yaml:"audio"`
}

// ServerSettings configures the HTTP listener and upload staging
type ServerSettings struct {
	Host           string        `yaml:"host" validate:"required"`
	Port           string        `yaml:"port" validate:"required,numeric"`
	Environment    string        `yaml:"environment" validate:"oneof=development production"`
	UploadDir      string        `yaml:"upload_dir" validate:"required"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" validate:"gt=0"`
	ReadTimeout    time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout   time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" validate:"gt=0"`
}

// BaiduSettings configures the credential and recognition endpoints
type BaiduSettings struct {
	TokenURL         string        `yaml:"token_url" validate:"required,url"`
	ASRURL           string        `yaml:"asr_url" validate:"required,url"`
	CUID             string        `yaml:"cuid" validate:"required,max=60"`
	TokenLifetime    time.Duration `yaml:"token_lifetime" validate:"gt=0"`
	TokenTimeout     time.Duration `yaml:"token_timeout" validate:"gt=0"`
	RecognizeTimeout time.Duration `yaml:"recognize_timeout" validate:"gt=0"`
	MaxPCMBytes      int64         `yaml:"max_pcm_bytes" validate:"gt=0"`
}

// AudioSettings configures the ffmpeg transcoder
type AudioSettings struct {
	FFmpegBinary string `yaml:"ffmpeg_binary" validate:"required"`
	// WorkDir is the parent of the per-call temporary directories; empty means os.TempDir().
	WorkDir string `yaml:"work_dir"`
}

// Development reports whether the server runs in development mode
func (s *Settings) Development() bool {
	return s.Server.Environment != "production"
}

// Address returns host:port for the HTTP listener
func (s *Settings) Address() string {
	return fmt.Sprintf("%s:%s", s.Server.Host, s.Server.Port)
}

// Defaults returns settings populated with built-in defaults and no secrets
func Defaults() *Settings {
	return &Settings{
		Server: ServerSettings{
			Host:           "127.0.0.1",
			Port:           "5000",
			Environment:    "development",
			UploadDir:      "uploads",
			MaxUploadBytes: DefaultSizeLimit,
			ReadTimeout:    60 * time.Second,
			WriteTimeout:   90 * time.Second,
			IdleTimeout:    120 * time.Second,
		},
		Baidu: BaiduSettings{
			TokenURL:         DefaultTokenURL,
			ASRURL:           DefaultASRURL,
			CUID:             "speech-relay",
			TokenLifetime:    baidu.DefaultTokenLifetime,
			TokenTimeout:     15 * time.Second,
			RecognizeTimeout: 30 * time.Second,
			MaxPCMBytes:      DefaultSizeLimit,
		},
		Audio: AudioSettings{
			FFmpegBinary: "ffmpeg",
		},
	}
}

// LoadEnv loads environment variables from .env file if it exists
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
	}

	// Environment variables might be set system-wide, so a missing file is fine
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}

	return nil
}

// LoadFile overlays a YAML configuration file onto settings
func LoadFile(settings *Settings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, settings); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings with values from the process environment
func ApplyEnv(settings *Settings) error {
	settings.APIKey = strings.TrimSpace(os.Getenv("BAIDU_API_KEY"))
	settings.SecretKey = strings.TrimSpace(os.Getenv("BAIDU_SECRET_KEY"))

	overrides := map[string]*string{
		"SPEECH_RELAY_HOST":       &settings.Server.Host,
		"SPEECH_RELAY_PORT":       &settings.Server.Port,
		"SPEECH_RELAY_ENV":        &settings.Server.Environment,
		"SPEECH_RELAY_UPLOAD_DIR": &settings.Server.UploadDir,
		"SPEECH_RELAY_WORK_DIR":   &settings.Audio.WorkDir,
		"FFMPEG_BINARY":           &settings.Audio.FFmpegBinary,
		"BAIDU_CUID":              &settings.Baidu.CUID,
		"BAIDU_TOKEN_URL":         &settings.Baidu.TokenURL,
		"BAIDU_ASR_URL":           &settings.Baidu.ASRURL,
	}
	for key, target := range overrides {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			*target = value
		}
	}

	if value := strings.TrimSpace(os.Getenv("BAIDU_TOKEN_LIFETIME")); value != "" {
		lifetime, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid BAIDU_TOKEN_LIFETIME %q: %w", value, err)
		}
		settings.Baidu.TokenLifetime = lifetime
	}
	if value := strings.TrimSpace(os.Getenv("SPEECH_RELAY_MAX_UPLOAD_BYTES")); value != "" {
		limit, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid SPEECH_RELAY_MAX_UPLOAD_BYTES %q: %w", value, err)
		}
		settings.Server.MaxUploadBytes = limit
	}

	return nil
}

// Validate checks settings, failing fast on missing credentials
func Validate(settings *Settings) error {
	if settings.APIKey == "" {
		return apperrors.ErrMissingAPIKey
	}
	if settings.SecretKey == "" {
		return apperrors.ErrMissingSecretKey
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(settings); err != nil {
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(validationErrs))
			for _, fieldError := range validationErrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fieldError.Namespace(), fieldError.Tag()))
			}
			return apperrors.Newf(apperrors.KindValidation, "invalid configuration: %s", strings.Join(fields, ", "))
		}
		return apperrors.Wrap(err, apperrors.KindValidation, "config", "invalid configuration")
	}
	return nil
}

// Load builds the settings: defaults, then the optional YAML file, then the
// environment. It is the main entry point for configuration loading.
func Load(configPath string) (*Settings, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	settings := Defaults()

	if configPath == "" {
		configPath = os.Getenv("SPEECH_RELAY_CONFIG")
	}
	if configPath != "" {
		if err := LoadFile(settings, filepath.Clean(configPath)); err != nil {
			return nil, err
		}
	}

	if err := ApplyEnv(settings); err != nil {
		return nil, err
	}

	if err := Validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}
