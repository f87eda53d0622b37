package audio

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "speech-relay/internal/app/errors"
)

const fakeFFmpegOK = `#!/bin/sh
if [ "$1" = "-version" ]; then
  echo "ffmpeg version test"
  exit 0
fi
if [ -n "$FAKE_FFMPEG_ARGS" ]; then
  echo "$@" > "$FAKE_FFMPEG_ARGS"
fi
for last; do :; done
printf 'PCMDATA' > "$last"
`

const fakeFFmpegFailing = `#!/bin/sh
if [ "$1" = "-version" ]; then
  exit 0
fi
echo "Invalid data found when processing input" >&2
exit 1
`

// writeFakeFFmpeg installs a shell script standing in for ffmpeg
func writeFakeFFmpeg(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ffmpeg script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func createInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3fake"), 0644))
	return path
}

func TestPCMArgs(t *testing.T) {
	args := PCMArgs("/test/input.mp3", "/test/out.pcm")
	assert.Equal(t, []string{
		"-y",
		"-i", "/test/input.mp3",
		"-ac", "1",
		"-ar", "16000",
		"-acodec", "pcm_s16le",
		"-f", "s16le",
		"/test/out.pcm",
	}, args)
}

func TestCheckFFmpeg(t *testing.T) {
	t.Run("missing binary", func(t *testing.T) {
		err := CheckFFmpeg(filepath.Join(t.TempDir(), "no-such-ffmpeg"))
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrFFmpegNotFound)
		assert.True(t, apperrors.IsKind(err, apperrors.KindDependencyMissing))
	})

	t.Run("empty binary", func(t *testing.T) {
		assert.ErrorIs(t, CheckFFmpeg(""), apperrors.ErrFFmpegNotFound)
	})

	t.Run("present binary", func(t *testing.T) {
		assert.NoError(t, CheckFFmpeg(writeFakeFFmpeg(t, fakeFFmpegOK)))
	})
}

func TestNewFFmpegTranscoderMissingBinary(t *testing.T) {
	transcoder, err := NewFFmpegTranscoder("/definitely/not/ffmpeg", t.TempDir(), nil)
	assert.Nil(t, transcoder)
	assert.True(t, apperrors.IsKind(err, apperrors.KindDependencyMissing))
}

func TestTranscodeSuccess(t *testing.T) {
	binary := writeFakeFFmpeg(t, fakeFFmpegOK)
	workDir := t.TempDir()
	argsFile := filepath.Join(t.TempDir(), "args")
	t.Setenv("FAKE_FFMPEG_ARGS", argsFile)

	transcoder, err := NewFFmpegTranscoder(binary, workDir, nil)
	require.NoError(t, err)

	input := createInput(t)
	output, err := transcoder.Transcode(input)
	require.NoError(t, err)

	assert.Equal(t, "converted_audio.pcm", filepath.Base(output))
	assert.True(t, strings.HasPrefix(filepath.Base(filepath.Dir(output)), TempDirPrefix))
	assert.Equal(t, workDir, filepath.Dir(filepath.Dir(output)))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "PCMDATA", string(data))

	recorded, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(PCMArgs(input, output), " "), strings.TrimSpace(string(recorded)))

	// each call gets its own scratch directory
	second, err := transcoder.Transcode(input)
	require.NoError(t, err)
	assert.NotEqual(t, filepath.Dir(output), filepath.Dir(second))

	require.NoError(t, Cleanup(output))
	require.NoError(t, Cleanup(second))
	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTranscodeFailureRemovesScratchDir(t *testing.T) {
	binary := writeFakeFFmpeg(t, fakeFFmpegFailing)
	workDir := t.TempDir()

	transcoder, err := NewFFmpegTranscoder(binary, workDir, nil)
	require.NoError(t, err)

	output, err := transcoder.Transcode(createInput(t))
	require.Error(t, err)
	assert.Empty(t, output)
	assert.True(t, apperrors.IsKind(err, apperrors.KindTranscode))
	assert.Contains(t, err.Error(), "Invalid data found when processing input")

	var typed *apperrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, "audio transcoding failed", typed.Message())

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCleanup(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		assert.NoError(t, Cleanup(filepath.Join(t.TempDir(), TempDirPrefix+"x", "converted_audio.pcm")))
		assert.NoError(t, Cleanup(""))
	})

	t.Run("leaves foreign directories alone", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "converted_audio.pcm")
		keep := filepath.Join(dir, "keep.txt")
		require.NoError(t, os.WriteFile(path, []byte("pcm"), 0644))
		require.NoError(t, os.WriteFile(keep, []byte("keep"), 0644))

		require.NoError(t, Cleanup(path))
		_, err := os.Stat(keep)
		assert.NoError(t, err)
	})
}

func TestTail(t *testing.T) {
	assert.Equal(t, "abc", tail("  abc \n", 10))
	assert.Equal(t, "cde", tail("abcde", 3))
}
