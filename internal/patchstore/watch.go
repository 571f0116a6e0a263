package patchstore

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long a file must stay quiet before it is reported. scp
// produces a create followed by a burst of writes.
const settle = 250 * time.Millisecond

// Watch reports patches that appear or change in the patch directory until
// ctx is done. It needs the directory to exist on the real filesystem.
// onPatch runs on the calling goroutine.
func (s *Store) Watch(ctx context.Context, onPatch func(PatchFile)) error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create patch directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("failed to watch path %s: %w", s.dir, err)
	}

	d := newDebouncer(settle)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if hidden(filepath.Base(event.Name)) {
				continue
			}
			d.touch(event.Name)

		case st := <-d.ready:
			if !d.fire(st) {
				continue
			}
			fi, err := s.fs.Stat(st.path)
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
			onPatch(s.patchFile(fi))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", "error", err)
		}
	}
}

// settled is sent by a timer once a path has been quiet. gen identifies the
// touch that armed the timer.
type settled struct {
	path string
	gen  uint64
}

type pendingPatch struct {
	timer *time.Timer
	gen   uint64
}

// debouncer coalesces bursts of events per path. Only the owning goroutine
// calls touch, fire and stop; timers talk back through ready.
type debouncer struct {
	delay   time.Duration
	ready   chan settled
	done    chan struct{}
	gen     uint64
	pending map[string]pendingPatch
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		ready:   make(chan settled),
		done:    make(chan struct{}),
		pending: make(map[string]pendingPatch),
	}
}

// touch (re)arms the timer for path
func (d *debouncer) touch(path string) {
	if p, ok := d.pending[path]; ok {
		p.timer.Stop()
	}
	d.gen++
	st := settled{path: path, gen: d.gen}
	d.pending[path] = pendingPatch{
		gen: st.gen,
		timer: time.AfterFunc(d.delay, func() {
			select {
			case d.ready <- st:
			case <-d.done:
			}
		}),
	}
}

// fire reports whether st comes from the latest touch of its path and
// forgets the path if so. A timer that fired before being re-armed delivers
// a stale generation, which is dropped.
func (d *debouncer) fire(st settled) bool {
	p, ok := d.pending[st.path]
	if !ok || p.gen != st.gen {
		return false
	}
	delete(d.pending, st.path)
	return true
}

func (d *debouncer) stop() {
	close(d.done)
	for _, p := range d.pending {
		p.timer.Stop()
	}
}
