package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speech-relay/internal/app/api/baidu"
	apperrors "speech-relay/internal/app/errors"
)

func setCredentials(t *testing.T, apiKey, secretKey string) {
	t.Helper()
	t.Setenv("BAIDU_API_KEY", apiKey)
	t.Setenv("BAIDU_SECRET_KEY", secretKey)
}

func TestLoadRequiresCredentials(t *testing.T) {
	t.Chdir(t.TempDir())

	testCases := []struct {
		name      string
		apiKey    string
		secretKey string
		wantErr   error
	}{
		{
			name:      "missing api key",
			apiKey:    "",
			secretKey: "secret",
			wantErr:   apperrors.ErrMissingAPIKey,
		},
		{
			name:      "missing secret key",
			apiKey:    "key",
			secretKey: "  ",
			wantErr:   apperrors.ErrMissingSecretKey,
		},
		{
			name:      "both present",
			apiKey:    "key",
			secretKey: "secret",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setCredentials(t, tc.apiKey, tc.secretKey)

			settings, err := Load("")
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)
				assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "key", settings.APIKey)
			assert.Equal(t, "secret", settings.SecretKey)
		})
	}
}

func TestDefaults(t *testing.T) {
	settings := Defaults()

	assert.Equal(t, "127.0.0.1:5000", settings.Address())
	assert.Equal(t, DefaultSizeLimit, settings.Server.MaxUploadBytes)
	assert.Equal(t, DefaultSizeLimit, settings.Baidu.MaxPCMBytes)
	assert.Equal(t, baidu.DefaultTokenLifetime, settings.Baidu.TokenLifetime)
	assert.Equal(t, 29*24*time.Hour, settings.Baidu.TokenLifetime)
	assert.Equal(t, 15*time.Second, settings.Baidu.TokenTimeout)
	assert.Equal(t, 30*time.Second, settings.Baidu.RecognizeTimeout)
	assert.Equal(t, "ffmpeg", settings.Audio.FFmpegBinary)
	assert.True(t, settings.Development())
}

func TestLoadFileThenEnvPrecedence(t *testing.T) {
	t.Chdir(t.TempDir())
	setCredentials(t, "key", "secret")

	configPath := filepath.Join(t.TempDir(), "speech-relay.yaml")
	content := `
server:
  port: "8080"
  environment: production
  upload_dir: /var/tmp/uploads
baidu:
  cuid: from-file
  token_lifetime: 48h
audio:
  ffmpeg_binary: /opt/ffmpeg/bin/ffmpeg
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	t.Setenv("BAIDU_CUID", "from-env")

	settings, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "8080", settings.Server.Port)
	assert.False(t, settings.Development())
	assert.Equal(t, "/var/tmp/uploads", settings.Server.UploadDir)
	assert.Equal(t, 48*time.Hour, settings.Baidu.TokenLifetime)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", settings.Audio.FFmpegBinary)
	assert.Equal(t, "from-env", settings.Baidu.CUID)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultASRURL, settings.Baidu.ASRURL)
}

func TestLoadFileMissing(t *testing.T) {
	err := LoadFile(Defaults(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestApplyEnvInvalidValues(t *testing.T) {
	t.Setenv("BAIDU_TOKEN_LIFETIME", "thirty days")
	err := ApplyEnv(Defaults())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAIDU_TOKEN_LIFETIME")

	t.Setenv("BAIDU_TOKEN_LIFETIME", "")
	t.Setenv("SPEECH_RELAY_MAX_UPLOAD_BYTES", "ten")
	err = ApplyEnv(Defaults())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SPEECH_RELAY_MAX_UPLOAD_BYTES")
}

func TestValidateRejectsBadSettings(t *testing.T) {
	settings := Defaults()
	settings.APIKey = "key"
	settings.SecretKey = "secret"
	settings.Baidu.ASRURL = "not a url"
	settings.Server.Environment = "staging"

	err := Validate(settings)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Contains(t, err.Error(), "ASRURL")
	assert.Contains(t, err.Error(), "Environment")
}

func TestLoadEnvFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SPEECH_RELAY_TEST_MARKER=loaded\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("SPEECH_RELAY_TEST_MARKER") })

	require.NoError(t, LoadEnv())
	assert.Equal(t, "loaded", os.Getenv("SPEECH_RELAY_TEST_MARKER"))
}
