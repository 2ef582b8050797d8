package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to scenario files in a directory.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
	done    sync.WaitGroup
}

// NewWatcher watches the directory holding each of paths. Only events for
// the given files are reported.
func NewWatcher(paths ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		// Editors replace files on save, so watch the directory rather than the file.
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
		dirs[dir] = true
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	watcher.done.Add(1)
	go watcher.run(files)
	return watcher, nil
}

// Close stops the watcher and closes its channels.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		w.done.Wait()
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run(files map[string]bool) {
	defer w.done.Done()
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !files[name] || !isScenarioFile(name) {
				continue
			}
			now := time.Now()
			if t, ok := last[name]; ok && now.Sub(t) < 100*time.Millisecond {
				continue
			}
			last[name] = now
			select {
			case w.Events <- name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func isScenarioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml" || ext == ".json"
}

// RunWatch runs the scenario and restarts it from tick zero whenever the
// file changes. It returns when ctx is done.
func RunWatch(ctx context.Context, opts RunOptions) error {
	opts.defaults()
	w, err := NewWatcher(opts.ScenarioPath)
	if err != nil {
		return err
	}
	defer w.Close()

	opts.Logger.Info("Starting watcher", "path", opts.ScenarioPath)
	for {
		iterCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- RunOnce(iterCtx, opts) }()

		reload, err := waitIteration(ctx, w, done, cancel, opts)
		cancel()
		if err != nil {
			return err
		}
		if !reload {
			return nil
		}
		printSystemMessage(opts.Out, "Change detected in '%s', reloading.", filepath.Base(opts.ScenarioPath))
	}
}

// waitIteration blocks until the running iteration is superseded by a file
// change (reload=true) or ctx ends.
func waitIteration(ctx context.Context, w *Watcher, done <-chan error, cancel context.CancelFunc, opts RunOptions) (bool, error) {
	finished := false
	for {
		select {
		case <-ctx.Done():
			if !finished {
				<-done
			}
			return false, nil
		case err := <-done:
			finished = true
			if err != nil && !errors.Is(err, context.Canceled) {
				// A broken scenario is expected while editing; wait for the fix.
				opts.Logger.Error("Run failed", "err", err)
				printSystemMessage(opts.Out, "Run failed: %v", err)
			}
			printSystemMessage(opts.Out, "Waiting for changes...")
		case _, ok := <-w.Events:
			if !ok {
				return false, nil
			}
			if !finished {
				cancel()
				<-done
			}
			return true, nil
		case err, ok := <-w.Errors:
			if ok {
				opts.Logger.Warn("Watcher error", "err", err)
			}
		}
	}
}
