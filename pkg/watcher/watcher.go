// Package watcher reports content changes to a local taxon file.
//
// Change events come from fsnotify on the file's directory, or from stat
// polling when fsnotify is unavailable or ORTHO_FORCE_POLL is set. Either way
// a burst of events is debounced and the file is fingerprinted with xxhash,
// so a save that leaves the bytes unchanged does not trigger a reload.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/orthoweb/pkg/debug"
)

// DefaultPollInterval is the stat interval in polling mode.
const DefaultPollInterval = 2 * time.Second

// EnvForcePoll forces polling mode when set to a truthy value.
const EnvForcePoll = "ORTHO_FORCE_POLL"

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the quiet period before a change is reported.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval for polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnChange sets the callback run after the file content changed.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the callback for removal, permission and read errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll skips fsnotify.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// fileState is what a change is measured against.
type fileState struct {
	present bool
	modTime time.Time
	size    int64
	sum     uint64
}

// Watcher monitors one file.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	onChange     func()
	onError      func(error)
	forcePoll    bool

	debouncer *Debouncer
	changeCh  chan struct{}

	mu      sync.RWMutex
	state   fileState
	polling bool
	started bool
	cancel  context.CancelFunc
	fsw     *fsnotify.Watcher
}

// New creates a watcher for path. Nothing happens until Start.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onChange:     func() {},
		onError:      func(error) {},
		changeCh:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.pollInterval <= 0 {
		w.pollInterval = DefaultPollInterval
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start records the current content and begins watching until ctx is
// cancelled or Stop is called. A missing file is not an error; its later
// creation counts as a change.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}

	st, err := readState(w.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		if errors.Is(err, os.ErrPermission) {
			return ErrPermission
		}
		return err
	}
	w.state = st

	ctx, w.cancel = context.WithCancel(ctx)
	w.polling = w.forcePoll || envBool(EnvForcePoll)
	if !w.polling {
		fsw, err := watchDir(filepath.Dir(w.path))
		if err != nil {
			debug.Log("watcher: fsnotify unavailable for %s, polling: %v", w.path, err)
			w.polling = true
		} else {
			w.fsw = fsw
		}
	}
	go w.run(ctx, w.fsw)

	w.started = true
	return nil
}

func watchDir(dir string) (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// The directory, so atomic renames over the file are seen.
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return fsw, nil
}

// Stop stops watching. Changed stays open.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.cancel()
	if w.fsw != nil {
		w.fsw.Close()
		w.fsw = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// IsPolling reports whether the watcher fell back to stat polling.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted reports whether the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed receives once per reported change; sends never block.
func (w *Watcher) Changed() <-chan struct{} { return w.changeCh }

// Path returns the absolute watched path.
func (w *Watcher) Path() string { return w.path }

// PollInterval returns the stat interval used in polling mode.
func (w *Watcher) PollInterval() time.Duration { return w.pollInterval }

// Fingerprint returns the xxhash of the last seen content, 0 when the file
// is absent.
func (w *Watcher) Fingerprint() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.sum
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// run is the single event loop. fsw is nil in polling mode.
func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	var (
		events <-chan fsnotify.Event
		errs   <-chan error
		tick   <-chan time.Time
	)
	if fsw != nil {
		events, errs = fsw.Events, fsw.Errors
	} else {
		t := time.NewTicker(w.pollInterval)
		defer t.Stop()
		tick = t.C
	}

	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.debouncer.Trigger(w.check)
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		case <-tick:
			w.poll()
		}
	}
}

// poll hashes the file only when its stat changed.
func (w *Watcher) poll() {
	info, err := os.Stat(w.path)
	w.mu.RLock()
	prev := w.state
	w.mu.RUnlock()
	if err == nil && prev.present && info.ModTime().Equal(prev.modTime) && info.Size() == prev.size {
		return
	}
	if err != nil && !prev.present && errors.Is(err, os.ErrNotExist) {
		return
	}
	w.debouncer.Trigger(w.check)
}

// check compares the file against the last state and reports a change when
// the content differs.
func (w *Watcher) check() {
	if !w.IsStarted() {
		return
	}
	st, err := readState(w.path)

	w.mu.Lock()
	prev := w.state
	if err == nil || errors.Is(err, os.ErrNotExist) {
		w.state = st
	}
	w.mu.Unlock()

	switch {
	case errors.Is(err, os.ErrNotExist):
		if prev.present {
			w.onError(ErrFileRemoved)
		}
		return
	case errors.Is(err, os.ErrPermission):
		w.onError(ErrPermission)
		return
	case err != nil:
		w.onError(err)
		return
	}

	if prev.present && st.sum == prev.sum {
		debug.Log("watcher: %s touched without content change", w.path)
		return
	}
	w.onChange()
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}

func readState(path string) (fileState, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileState{}, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fileState{}, err
	}
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return fileState{}, fmt.Errorf("hash %s: %w", path, err)
	}
	return fileState{present: true, modTime: info.ModTime(), size: info.Size(), sum: h.Sum64()}, nil
}
