package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// AllowedExtensions lists the upload formats accepted for transcription
var AllowedExtensions = []string{"wav", "mp3", "pcm", "m4a", "amr"}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Extension returns the lowercase extension of name without the dot
func Extension(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// IsAllowedAudioFile reports whether name has an allow-listed extension
func IsAllowedAudioFile(name string) bool {
	ext := Extension(name)
	return ext != "" && lo.Contains(AllowedExtensions, ext)
}

// SanitizeFilename reduces name to a safe ASCII file name with no path
// components. Non-ASCII characters are dropped; the original extension is
// kept when sanitising would otherwise lose it.
func SanitizeFilename(name string) string {
	ext := unsafeFilenameChars.ReplaceAllString(Extension(name), "")

	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")

	if name == "" || name == ext {
		name = "upload"
	}
	if ext != "" && Extension(name) != ext {
		name += "." + ext
	}
	return name
}

// StagingName builds a collision-resistant name for a staged upload:
// timestamp, short random id, then the sanitised original name.
func StagingName(original string, now time.Time) string {
	id := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s_%s_%s", now.Format("20060102_150405"), id, SanitizeFilename(original))
}

// EnsureDir creates dir and its parents if missing
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// RemoveQuietly deletes path; a file that is already gone is not an error.
func RemoveQuietly(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
