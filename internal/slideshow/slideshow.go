package slideshow

import (
	"log/slog"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/poppadum/dynquee-go/internal/config"
	"github.com/poppadum/dynquee-go/internal/media"
	"github.com/poppadum/dynquee-go/internal/shutdown"
)

// Engine continuously displays a MediaSet on the marquee, preempting
// itself when a new set arrives via SetMedia. It owns two long-lived
// pieces of state: the queue reader (this goroutine's loop, started by
// New) and at most one ephemeral slideshow worker goroutine at a time.
type Engine struct {
	cfg      config.Slideshow
	mediaCfg config.Media
	shutdown *shutdown.Coordinator

	mu      sync.Mutex
	pending *media.Set
	wake    chan struct{}

	current      media.Set
	workerChange chan struct{}
	workerDone   chan struct{}

	childMu sync.Mutex
	child   *child

	stopOnce   sync.Once
	localStop  chan struct{}
	readerDone chan struct{}
}

// New constructs an Engine, fires the one-shot framebuffer-resolution
// command, and starts the queue reader.
func New(cfg config.Slideshow, mediaCfg config.Media, sd *shutdown.Coordinator) *Engine {
	e := &Engine{
		cfg:        cfg,
		mediaCfg:   mediaCfg,
		shutdown:   sd,
		wake:       make(chan struct{}, 1),
		localStop:  make(chan struct{}),
		readerDone: make(chan struct{}),
	}
	e.runFramebufferResolution()
	go e.queueReader()
	return e
}

// SetMedia enqueues a canonicalized MediaSet. Non-blocking: if a set is
// already pending and not yet picked up by the queue reader, it is
// replaced ("latest wins" coalescing), which still satisfies the
// no-op-coalescing and canonicalization properties since the reader
// compares against the currently displayed set before acting.
func (e *Engine) SetMedia(set media.Set) {
	canon := media.Canonical(set)
	e.mu.Lock()
	e.pending = &canon
	e.mu.Unlock()
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Stop terminates the worker and queue reader, kills any live subprocess,
// and clears the display. Safe to call any number of times.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.localStop) })
	<-e.readerDone
}

func (e *Engine) queueReader() {
	defer close(e.readerDone)
	for {
		select {
		case <-e.shutdown.Done():
			e.stopCurrentWorker()
			return
		case <-e.localStop:
			e.stopCurrentWorker()
			return
		case <-e.wake:
			e.mu.Lock()
			next := e.pending
			e.pending = nil
			e.mu.Unlock()
			if next == nil {
				continue
			}
			if media.Equal(*next, e.currentSnapshot()) {
				continue
			}
			e.transitionTo(*next)
		}
	}
}

// currentSnapshot reads the currently displayed set, guarded by mu since
// the queue reader writes it under lock and external callers (tests) may
// read it from another goroutine.
func (e *Engine) currentSnapshot() media.Set {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *Engine) setCurrent(next media.Set) {
	e.mu.Lock()
	e.current = next
	e.mu.Unlock()
}

func (e *Engine) transitionTo(next media.Set) {
	e.stopCurrentWorker()
	e.setCurrent(next)
	if len(next) == 0 {
		slog.Info("slideshow blanked")
		return
	}
	slog.Info("slideshow media changed", "files", []string(next))
	change := make(chan struct{})
	done := make(chan struct{})
	e.workerChange = change
	e.workerDone = done
	go e.runWorker(next, change, done)
}

// stopCurrentWorker signals the active worker (if any) to stop, joins it,
// kills any leftover subprocess, and clears the display. Called only from
// the queue reader goroutine, so it never races the worker it is joining.
func (e *Engine) stopCurrentWorker() {
	if e.workerChange != nil {
		close(e.workerChange)
	}
	if e.workerDone != nil {
		<-e.workerDone
	}
	e.workerChange = nil
	e.workerDone = nil
	e.killChild()
	e.clearDisplay()
}

// runWorker owns one MediaSet snapshot and loops it until change fires or
// shutdown is requested.
func (e *Engine) runWorker(set media.Set, change chan struct{}, done chan struct{}) {
	defer close(done)
	for {
		order := e.displayOrder(set)
		for _, path := range order {
			var ok bool
			if e.mediaCfg.IsVideo(path) {
				ok = e.playVideo(path, change)
			} else {
				ok = e.playImage(path, change, len(set) == 1)
			}
			if !ok {
				return
			}
			if !e.waitOrChange(e.seconds(e.cfg.TimeBetweenSlides), change) {
				return
			}
		}
	}
}

// playVideo launches the video player and waits for whichever comes first:
// the player exiting, max_video_time elapsing, a media change, or
// shutdown. Returns false if the worker should stop entirely.
func (e *Engine) playVideo(path string, change chan struct{}) bool {
	argv, err := buildArgv(e.cfg.VideoPlayer, e.cfg.VideoPlayerOpts, path)
	if err != nil {
		slog.Error("failed to build video player command", "error", err)
		return true
	}
	c, err := startChild(argv)
	if err != nil {
		slog.Error("failed to launch video player", "error", err)
		return true
	}
	e.setChild(c)

	timer := time.NewTimer(e.seconds(e.cfg.MaxVideoTime))
	defer timer.Stop()

	select {
	case <-c.done():
	case <-timer.C:
	case <-change:
		e.stopTimed(c)
		e.clearDisplay()
		return false
	case <-e.shutdown.Done():
		e.stopTimed(c)
		e.clearDisplay()
		return false
	}
	e.stopTimed(c)
	e.clearDisplay()
	return true
}

// playImage launches the image viewer. If set has exactly one item (and it
// is an image — guaranteed by the caller), it waits indefinitely on change
// since the viewer is expected to leave the image on the framebuffer.
// Otherwise it waits up to image_display_time or change.
func (e *Engine) playImage(path string, change chan struct{}, singleImage bool) bool {
	argv, err := buildArgv(e.cfg.Viewer, e.cfg.ViewerOpts, path)
	if err != nil {
		slog.Error("failed to build viewer command", "error", err)
		return true
	}
	c, err := startChild(argv)
	if err != nil {
		slog.Error("failed to launch image viewer", "error", err)
		return true
	}
	e.setChild(c)

	if singleImage {
		select {
		case <-change:
			return false
		case <-e.shutdown.Done():
			return false
		}
	}

	timer := time.NewTimer(e.seconds(e.cfg.ImageDisplayTime))
	select {
	case <-timer.C:
	case <-change:
		timer.Stop()
		if e.cfg.TerminateViewer {
			e.stopTimed(c)
		}
		return false
	case <-e.shutdown.Done():
		timer.Stop()
		if e.cfg.TerminateViewer {
			e.stopTimed(c)
		}
		return false
	}
	if e.cfg.TerminateViewer {
		e.stopTimed(c)
	}
	e.clearDisplay()
	return true
}

func (e *Engine) waitOrChange(d time.Duration, change chan struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-change:
		return false
	case <-e.shutdown.Done():
		return false
	}
}

func (e *Engine) seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// displayOrder produces the per-pass play order: shuffled, or a
// case-insensitive sort by file stem, per config.
func (e *Engine) displayOrder(set media.Set) []string {
	order := append([]string(nil), set...)
	if e.cfg.Shuffle {
		rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	} else {
		sort.Slice(order, func(i, j int) bool {
			return strings.ToLower(stem(order[i])) < strings.ToLower(stem(order[j]))
		})
	}
	return order
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (e *Engine) setChild(c *child) {
	e.childMu.Lock()
	e.child = c
	e.childMu.Unlock()
}

func (e *Engine) killChild() {
	e.childMu.Lock()
	c := e.child
	e.child = nil
	e.childMu.Unlock()
	if c != nil {
		c.stop(e.timeout())
	}
}

func (e *Engine) stopTimed(c *child) {
	e.childMu.Lock()
	if e.child == c {
		e.child = nil
	}
	e.childMu.Unlock()
	c.stop(e.timeout())
}

func (e *Engine) timeout() time.Duration {
	if e.cfg.SubprocessTimeout <= 0 {
		return 3 * time.Second
	}
	return e.seconds(e.cfg.SubprocessTimeout)
}

// clearDisplay fires the configured clear command, if any, without
// waiting for it to complete.
func (e *Engine) clearDisplay() {
	if e.cfg.ClearCmd == "" {
		return
	}
	argv, err := buildArgv(e.cfg.ClearCmd, e.cfg.ClearCmdOpts, "")
	if err != nil {
		slog.Error("failed to build clear command", "error", err)
		return
	}
	if _, err := startChild(trimEmpty(argv)); err != nil {
		slog.Error("failed to launch clear command", "error", err)
	}
}

// trimEmpty drops a trailing empty-string argument left by buildArgv when
// no {file} placeholder is present and the substituted "file" is "" (the
// clear command has no associated media file).
func trimEmpty(argv []string) []string {
	if len(argv) > 0 && argv[len(argv)-1] == "" {
		return argv[:len(argv)-1]
	}
	return argv
}

// runFramebufferResolution runs the configured one-shot command at
// construction, fire-and-forget, reaping it in the background within
// subprocess_timeout.
func (e *Engine) runFramebufferResolution() {
	if e.cfg.FramebufferResolutionCmd == "" {
		return
	}
	argv, err := buildArgv(e.cfg.FramebufferResolutionCmd, "", "")
	if err != nil {
		slog.Error("failed to build framebuffer resolution command", "error", err)
		return
	}
	c, err := startChild(trimEmpty(argv))
	if err != nil {
		slog.Error("failed to launch framebuffer resolution command", "error", err)
		return
	}
	go func() {
		select {
		case <-c.done():
		case <-time.After(e.timeout()):
			c.stop(e.timeout())
		}
	}()
}
