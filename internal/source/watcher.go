package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/theirongolddev/ccmonitor/internal/logger"
	"github.com/theirongolddev/ccmonitor/internal/model"
)

// DefaultPollInterval is the polling fallback period of a Watcher.
const DefaultPollInterval = 5 * time.Second

// Watcher pushes a freshly decoded snapshot whenever the snapshot file
// changes. It watches the file's directory with fsnotify (collectors usually
// replace the file by rename) and polls as a safety net.
type Watcher struct {
	file         *File
	pollInterval time.Duration
	onChange     func(*model.UsageSnapshot)
	log          *zap.Logger

	mu      sync.Mutex
	modTime time.Time
	size    int64

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWatcher watches path. onChange runs on the watcher's goroutines and
// must not block for long.
func NewWatcher(path string, pollInterval time.Duration, onChange func(*model.UsageSnapshot), log *zap.Logger) *Watcher {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Watcher{
		file:         &File{Path: filepath.Clean(path)},
		pollInterval: pollInterval,
		onChange:     onChange,
		log:          logger.OrNop(log),
		stop:         make(chan struct{}),
	}
}

// Start begins watching with fsnotify + polling fallback. The current file
// state is recorded first so an unchanged file does not fire.
func (w *Watcher) Start() error {
	w.changed()

	fsw, err := fsnotify.NewWatcher()
	if err == nil {
		if addErr := fsw.Add(filepath.Dir(w.file.Path)); addErr != nil {
			w.log.Debug("fsnotify unavailable, polling only", zap.Error(addErr))
			_ = fsw.Close()
		} else {
			w.wg.Add(1)
			go w.watch(fsw)
		}
	}

	// Polling fallback (always runs as safety net)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.check()
			case <-w.stop:
				return
			}
		}
	}()

	return nil
}

// Stop signals goroutines to exit and waits for them to finish.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

func (w *Watcher) watch(fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer func() { _ = fsw.Close() }()
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.file.Path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.check()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watching snapshot file", zap.Error(err))
		case <-w.stop:
			return
		}
	}
}

// check decodes the file and fires onChange if it differs from the last
// state seen. Half-written files fail to decode and are retried on the next
// event or poll.
func (w *Watcher) check() {
	if !w.changed() {
		return
	}
	s, err := w.file.Snapshot(context.Background())
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			w.log.Debug("snapshot changed but did not decode", zap.Error(err))
		}
		w.forget()
		return
	}
	if w.onChange != nil {
		w.onChange(s)
	}
}

// changed records the file's current stat and reports whether it moved.
func (w *Watcher) changed() bool {
	info, err := os.Stat(w.file.Path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.modTime, w.size = time.Time{}, 0
		return false
	}
	if info.ModTime().Equal(w.modTime) && info.Size() == w.size {
		return false
	}
	w.modTime, w.size = info.ModTime(), info.Size()
	return true
}

func (w *Watcher) forget() {
	w.mu.Lock()
	w.modTime, w.size = time.Time{}, 0
	w.mu.Unlock()
}
