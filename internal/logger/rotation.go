package logger

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	rotatedSuffixLayout = "20060102-150405.000"
	defaultMaxSizeMB    = 100
)

// RotationConfig controls when a RotatingWriter rolls its file over.
type RotationConfig struct {
	Path string
	// MaxSizeMB is the size at which the active file is rotated. Values
	// below zero fall back to 100; zero rotates before every write.
	MaxSizeMB int
	// MaxAgeDays removes rotated files older than this. Zero keeps them.
	MaxAgeDays int
	// Compress gzips rotated files in the background.
	Compress bool
}

// RotatingWriter is an io.WriteCloser over an append-only log file that is
// renamed aside with a timestamp suffix once it reaches its size limit. It is
// safe for concurrent use.
type RotatingWriter struct {
	cfg     RotationConfig
	maxSize int64
	now     func() time.Time

	mu   sync.Mutex
	file *os.File
	size int64

	background sync.WaitGroup
}

// NewRotatingWriter opens path for appending and prunes expired rotations.
func NewRotatingWriter(path string, maxSizeMB, maxAgeDays int, compress bool) (*RotatingWriter, error) {
	return OpenRotating(RotationConfig{
		Path:       path,
		MaxSizeMB:  maxSizeMB,
		MaxAgeDays: maxAgeDays,
		Compress:   compress,
	})
}

// OpenRotating is NewRotatingWriter taking a RotationConfig.
func OpenRotating(cfg RotationConfig) (*RotatingWriter, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("log file path is required")
	}
	if cfg.MaxSizeMB < 0 {
		cfg.MaxSizeMB = defaultMaxSizeMB
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := &RotatingWriter{
		cfg:     cfg,
		maxSize: int64(cfg.MaxSizeMB) * 1024 * 1024,
		now:     time.Now,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	w.prune()
	return w, nil
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	w.file = f
	w.size = info.Size()
	return nil
}

// Write appends p, rotating first when p would push the file past its limit.
// An empty file is never rotated so a single oversized line still lands.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}
	if w.size > 0 && w.size+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// Close closes the active file and waits for pending compression.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	var err error
	if w.file != nil {
		err = w.file.Close()
		w.file = nil
	}
	w.mu.Unlock()

	w.background.Wait()
	return err
}

// rotate moves the active file aside and reopens Path. Callers hold mu.
func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}
	w.file = nil

	rotated := w.cfg.Path + "." + w.now().Format(rotatedSuffixLayout)
	if err := os.Rename(w.cfg.Path, rotated); err != nil {
		// Keep logging into the current file rather than dropping lines.
		if openErr := w.open(); openErr != nil {
			return openErr
		}
		return err
	}

	if err := w.open(); err != nil {
		return err
	}

	w.background.Add(1)
	go func() {
		defer w.background.Done()
		if w.cfg.Compress {
			_ = gzipFile(rotated)
		}
		w.prune()
	}()
	return nil
}

// gzipFile replaces path with path.gz.
func gzipFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	gzw := gzip.NewWriter(dst)
	if _, err := io.Copy(gzw, src); err != nil {
		gzw.Close()
		dst.Close()
		os.Remove(path + ".gz")
		return err
	}
	if err := gzw.Close(); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

// rotations returns rotated siblings of the active file, compressed or not.
func (w *RotatingWriter) rotations() []string {
	matches, err := filepath.Glob(w.cfg.Path + ".*")
	if err != nil {
		return nil
	}
	out := matches[:0]
	prefix := filepath.Base(w.cfg.Path) + "."
	for _, m := range matches {
		if strings.HasPrefix(filepath.Base(m), prefix) {
			out = append(out, m)
		}
	}
	return out
}

// prune removes rotations last modified before the retention window.
func (w *RotatingWriter) prune() {
	if w.cfg.MaxAgeDays <= 0 {
		return
	}
	cutoff := w.now().AddDate(0, 0, -w.cfg.MaxAgeDays)
	for _, path := range w.rotations() {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(path)
		}
	}
}
