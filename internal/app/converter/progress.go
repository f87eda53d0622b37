package converter

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"speech-relay/internal/app/api/baidu"
)

// ProgressConfig controls whether a batch draws a bar and where
type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
}

// ProgressManager owns the mpb container shared by all bars
type ProgressManager struct {
	container *mpb.Progress
	enabled   bool
	mu        sync.Mutex
}

// ProgressBar is a single bar; disabled bars ignore updates
type ProgressBar struct {
	bar     *mpb.Bar
	enabled bool
}

// NewProgressManager creates a manager. Output defaults to stderr.
func NewProgressManager(config ProgressConfig) *ProgressManager {
	if !config.Enabled {
		return &ProgressManager{enabled: false}
	}

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}

	container := mpb.New(
		mpb.WithOutput(writer),
		mpb.WithRefreshRate(120*time.Millisecond),
	)

	return &ProgressManager{
		container: container,
		enabled:   true,
	}
}

// CreateBar adds a bar counting total files
func (pm *ProgressManager) CreateBar(total int, description string) *ProgressBar {
	if !pm.enabled || pm.container == nil {
		return &ProgressBar{enabled: false}
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	bar := pm.container.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(description+" ", decor.WC{W: len(description) + 1, C: decor.DindentRight}),
			decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.NewPercentage("%.1f", decor.WCSyncSpace),
			decor.OnComplete(
				decor.EwmaETA(decor.ET_STYLE_GO, 30, decor.WCSyncWidth), " ✓ ",
			),
		),
	)

	return &ProgressBar{
		bar:     bar,
		enabled: true,
	}
}

// Increment advances the bar by one file that took elapsed to process
func (pb *ProgressBar) Increment(elapsed time.Duration) {
	if pb.enabled && pb.bar != nil {
		pb.bar.EwmaIncrement(elapsed)
	}
}

// Wait blocks until every bar has finished rendering
func (pm *ProgressManager) Wait() {
	if pm.enabled && pm.container != nil {
		pm.container.Wait()
	}
}

// IsTTY reports whether writer is a terminal
func IsTTY(writer io.Writer) bool {
	if writer == nil {
		return false
	}

	if file, ok := writer.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// ShouldShowProgress decides whether a batch of count files gets a progress
// bar. Single files never do.
func ShouldShowProgress(count int, forced bool) bool {
	if count < 2 {
		return false
	}
	if forced {
		return true
	}
	return IsTTY(os.Stderr)
}

// Transcriber runs one pipeline job; *Converter implements it
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) baidu.Result
}

// BatchItem pairs an input file with its result
type BatchItem struct {
	Path   string       `json:"path"`
	Result baidu.Result `json:"result"`
}

// TranscribeFiles runs the pipeline over paths with at most parallel jobs in
// flight. Results keep the input order.
func TranscribeFiles(ctx context.Context, transcriber Transcriber, paths []string, language string, parallel int, config ProgressConfig) []BatchItem {
	if len(paths) == 0 {
		return nil
	}
	if parallel < 1 {
		parallel = 1
	}

	progress := NewProgressManager(config)
	bar := progress.CreateBar(len(paths), "Transcribing")

	items := make([]BatchItem, len(paths))
	var wg sync.WaitGroup
	sem := make(chan struct{}, parallel)

	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			defer func() { bar.Increment(time.Since(start)) }()

			items[i] = BatchItem{
				Path:   path,
				Result: transcriber.Transcribe(ctx, Request{SourcePath: path, Language: language}),
			}
		}(i, path)
	}
	wg.Wait()
	progress.Wait()

	return items
}
