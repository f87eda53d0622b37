package files

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllowedAudioFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		allowed  bool
	}{
		{"WAV file", "audio.wav", true},
		{"MP3 file", "audio.mp3", true},
		{"PCM file", "audio.pcm", true},
		{"M4A file", "audio.m4a", true},
		{"AMR file", "audio.amr", true},
		{"MP3 uppercase", "audio.MP3", true},
		{"multiple dots", "audio.test.wav", true},
		{"FLAC file", "audio.flac", false},
		{"OGG file", "audio.ogg", false},
		{"No extension", "audio", false},
		{"Empty extension", "audio.", false},
		{"Text file", "audio.txt", false},
		{"extension only in the middle", "audio.mp3.exe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, IsAllowedAudioFile(tt.filename))
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "audio.mp3", "audio.mp3"},
		{"spaces", "my voice memo.m4a", "my_voice_memo.m4a"},
		{"path traversal", "../../etc/passwd", "passwd"},
		{"windows path", "C:\\Users\\test\\audio file.WAV", "audio_file.WAV"},
		{"non ascii name keeps extension", "录音.mp3", "upload.mp3"},
		{"mixed non ascii", "会议 notes.amr", "notes.amr"},
		{"hidden file", ".audio.wav", "audio.wav"},
		{"special characters", "a;b&c|d.wav", "abcd.wav"},
		{"empty", "", "upload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.input))
		})
	}
}

func TestStagingName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

	first := StagingName("my memo.mp3", now)
	second := StagingName("my memo.mp3", now)

	assert.Regexp(t, regexp.MustCompile(`^20240309_140507_[0-9a-f]{8}_my_memo\.mp3$`), first)
	assert.NotEqual(t, first, second, "same second and name must not collide")
	assert.True(t, IsAllowedAudioFile(first))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")

	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// idempotent
	require.NoError(t, EnsureDir(dir))
}

func TestRemoveQuietly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staged.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0644))

	require.NoError(t, RemoveQuietly(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, RemoveQuietly(path))
	assert.NoError(t, RemoveQuietly(""))
}
