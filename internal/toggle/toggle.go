// Package toggle keeps the presentation of a framework-owned radio toggle
// consistent with its checked state, and bridges label clicks back into the
// host framework's event wiring. The host framework renders, replaces, and
// destroys the control group whenever it likes; this package only observes
// and decorates, and converges by re-running the idempotent applier after any
// interleaving of renders, user gestures, and its own passes.
package toggle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"radiosync/internal/dom"
	"radiosync/internal/style"
)

var (
	// ErrContainerNotFound is the terminal initialization failure: the
	// container never appeared within the configured attempt budget.
	ErrContainerNotFound = errors.New("toggle: container not found")

	// ErrClosed is returned by operations on a closed synchronizer.
	ErrClosed = errors.New("toggle: synchronizer closed")

	// ErrNotBound is returned by operations that need a located container
	// before initialization has succeeded.
	ErrNotBound = errors.New("toggle: container not bound")
)

// Config holds the synchronizer's tunables. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// ContainerSelector locates the control group.
	ContainerSelector string

	// Group names the radio group, carried in the custom select notification.
	Group string

	// LocateInterval is the retry period while the container does not exist
	// yet (the host framework renders asynchronously).
	LocateInterval time.Duration

	// MaxLocateAttempts caps initialization retries. 0 retries forever,
	// matching the reference behavior; a positive cap surfaces exhaustion
	// as ErrContainerNotFound on Done/Err.
	MaxLocateAttempts int

	// DebounceDelay defers re-application after a native change event so the
	// browser settles checked state first.
	DebounceDelay time.Duration

	// RebindDelay defers re-initialization after a structural mutation, since
	// the freshly added nodes may still be mid-render.
	RebindDelay time.Duration

	// WatchInterval is the poll fallback period, catching re-renders the
	// mutation subscription missed.
	WatchInterval time.Duration
}

// DefaultConfig returns the reference timings against the dashboard's toggle.
func DefaultConfig() Config {
	return Config{
		ContainerSelector: "#manual-map-toggle",
		Group:             "manual-map-toggle",
		LocateInterval:    100 * time.Millisecond,
		MaxLocateAttempts: 0,
		DebounceDelay:     50 * time.Millisecond,
		RebindDelay:       100 * time.Millisecond,
		WatchInterval:     2 * time.Second,
	}
}

// Validate rejects configurations the synchronizer cannot run with.
func (c Config) Validate() error {
	if c.ContainerSelector == "" {
		return errors.New("toggle: container_selector required")
	}
	if c.LocateInterval <= 0 || c.DebounceDelay <= 0 || c.RebindDelay <= 0 || c.WatchInterval <= 0 {
		return errors.New("toggle: intervals must be positive")
	}
	if c.MaxLocateAttempts < 0 {
		return errors.New("toggle: max_locate_attempts must be >= 0")
	}
	return nil
}

// Deps are the injectable collaborators. Zero fields get defaults: wall
// clock, nop logger, the broadcast emitter, and the default style sheet.
type Deps struct {
	Clock   dom.Clock
	Logger  *zap.Logger
	Emitter Emitter
	Sheet   *style.Sheet
}

// Synchronizer owns the four reconciliation responsibilities: locate the
// container, apply presentation, bridge interaction, and watch for re-renders.
type Synchronizer struct {
	cfg   Config
	doc   dom.Document
	clock dom.Clock
	log   *zap.Logger
	emit  Emitter

	mu        sync.Mutex
	sheet     style.Sheet
	container dom.Element
	options   []option
	bridge    []dom.Subscription // container change listener + label click listeners
	watch     []dom.Subscription // mutation subscription + poll ticker
	timers    map[*timerSlot]struct{}
	debounce  *timerSlot
	watching  bool
	started   bool
	closed    bool
	attempts  int
	selects   uint64 // completed selection broadcasts, for Exercise
	err       error
	done      chan struct{}
}

// timerSlot tracks one pending one-shot so Close can cancel it.
type timerSlot struct {
	sub dom.Subscription
}

// New creates a synchronizer with default dependencies.
func New(doc dom.Document, cfg Config) *Synchronizer {
	return NewWithDeps(doc, cfg, Deps{})
}

// NewWithDeps creates a synchronizer with explicit dependencies, used by
// tests to substitute a manual clock or a recording emitter.
func NewWithDeps(doc dom.Document, cfg Config, deps Deps) *Synchronizer {
	s := &Synchronizer{
		cfg:    cfg,
		doc:    doc,
		clock:  deps.Clock,
		log:    deps.Logger,
		emit:   deps.Emitter,
		sheet:  style.Default(),
		timers: make(map[*timerSlot]struct{}),
		done:   make(chan struct{}),
	}
	if s.clock == nil {
		s.clock = dom.WallClock()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.emit == nil {
		s.emit = Broadcast{}
	}
	if deps.Sheet != nil {
		s.sheet = *deps.Sheet
	}
	return s
}

// Start begins initialization: the first locate attempt runs synchronously,
// further attempts on the locate interval. Start is idempotent and returns
// immediately; terminal failure is reported through Done and Err.
func (s *Synchronizer) Start() {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()
	s.locateStep()
}

// Done is closed when the synchronizer reaches a terminal state: the locate
// budget is exhausted or Close is called. Err reports why.
func (s *Synchronizer) Done() <-chan struct{} { return s.done }

// Err returns the terminal error, if any.
func (s *Synchronizer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Bound reports whether a live container is currently bound.
func (s *Synchronizer) Bound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.container != nil && s.container.Alive()
}

// locateStep is one initialization attempt. Absence is not an error here;
// it just schedules the next attempt, unless the budget ran out.
func (s *Synchronizer) locateStep() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	el, ok := s.doc.Query(s.cfg.ContainerSelector)
	if ok && s.bindLocked(el) {
		s.attempts = 0
		s.mu.Unlock()
		return
	}
	s.attempts++
	if s.cfg.MaxLocateAttempts > 0 && s.attempts >= s.cfg.MaxLocateAttempts {
		s.err = ErrContainerNotFound
		s.closeLocked()
		s.mu.Unlock()
		s.log.Warn("toggle container never appeared",
			zap.String("selector", s.cfg.ContainerSelector),
			zap.Int("attempts", s.attempts))
		return
	}
	s.afterLocked(s.cfg.LocateInterval, s.locateStep)
	s.mu.Unlock()
}

// bindLocked attaches presentation and interaction to a located container and
// starts the watchdog on the first successful bind. A container whose children
// have not rendered yet does not bind: reporting false keeps the caller's
// retry path alive, since styling labels without click listeners would leave
// the bridge permanently dead. Existing bridge listeners are released first;
// a re-rendered container is a different element and its old listeners died
// with it anyway.
func (s *Synchronizer) bindLocked(container dom.Element) bool {
	opts := resolveOptions(container)
	if len(opts) == 0 {
		return false
	}
	for _, sub := range s.bridge {
		sub.Close()
	}
	s.bridge = nil
	s.container = container
	s.options = opts

	s.bridge = append(s.bridge, container.On(dom.EventChange, func(dom.Event) {
		s.debounceApply()
	}))
	for _, o := range s.options {
		opt := o
		s.bridge = append(s.bridge, opt.label.On(dom.EventClick, func(dom.Event) {
			s.onLabelClick(opt)
		}))
	}

	s.applyLocked()

	if !s.watching {
		s.watching = true
		s.startWatchdogLocked()
	}

	s.log.Info("toggle container bound",
		zap.String("selector", s.cfg.ContainerSelector),
		zap.Int("options", len(s.options)))
	return true
}

// rebind re-runs initialization after the watchdog saw a (possible)
// re-render. If the bound container is still alive this degrades to a plain
// re-apply; running it an extra time never changes correctness, only cost.
func (s *Synchronizer) rebind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.container != nil && s.container.Alive() && len(s.options) > 0 {
		s.applyLocked()
		return
	}
	el, ok := s.doc.Query(s.cfg.ContainerSelector)
	if !ok {
		// Not there yet; the mutation subscription or the poll fallback
		// will get another shot.
		return
	}
	// A childless container fails the bind and stays pending until the poll
	// fallback sees its children.
	s.bindLocked(el)
}

// debounceApply coalesces bursts of native change events into one deferred
// re-application.
func (s *Synchronizer) debounceApply() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.debounce != nil {
		s.debounce.sub.Close()
		delete(s.timers, s.debounce)
	}
	s.debounce = s.afterLocked(s.cfg.DebounceDelay, func() {
		s.mu.Lock()
		s.debounce = nil
		if !s.closed {
			s.applyLocked()
		}
		s.mu.Unlock()
	})
}

// afterLocked schedules a cancellable one-shot. Caller holds s.mu.
func (s *Synchronizer) afterLocked(d time.Duration, fn func()) *timerSlot {
	slot := &timerSlot{}
	slot.sub = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, slot)
		s.mu.Unlock()
		fn()
	})
	s.timers[slot] = struct{}{}
	return slot
}

// SetSheet swaps the style sheet and re-applies, used by config hot reload.
func (s *Synchronizer) SetSheet(sheet style.Sheet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheet = sheet
	if !s.closed {
		s.applyLocked()
	}
}

// Select programmatically activates the option with the given value, exactly
// as if its label had been clicked.
func (s *Synchronizer) Select(value string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.container == nil || !s.container.Alive() {
		s.mu.Unlock()
		return ErrNotBound
	}
	opts := s.options
	container := s.container
	s.mu.Unlock()

	for _, o := range opts {
		if o.value == value {
			s.activate(o, opts, container)
			return nil
		}
	}
	return fmt.Errorf("toggle: no option with value %q", value)
}

// Selections returns the number of completed selection broadcasts.
func (s *Synchronizer) Selections() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selects
}

// onLabelClick handles a user gesture on a label.
func (s *Synchronizer) onLabelClick(opt option) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	opts := s.options
	container := s.container
	s.mu.Unlock()
	s.activate(opt, opts, container)
}

// activate checks the target option and broadcasts the selection. Activating
// the already-checked option is a complete no-op: no state change, no events,
// no deferred work. Runs unlocked because the broadcast re-enters the
// synchronizer through its own container change listener.
func (s *Synchronizer) activate(opt option, opts []option, container dom.Element) {
	if opt.control == nil || !opt.control.Alive() {
		return
	}
	if opt.control.Checked() {
		return
	}
	for _, o := range opts {
		if o.control != opt.control {
			o.control.SetChecked(false)
		}
	}
	opt.control.SetChecked(true)

	s.emit.EmitSelection(s.cfg.Group, opt.control, container, opt.value)

	s.mu.Lock()
	if !s.closed {
		s.selects++
		// One more deferred pass in case a framework re-render raced the
		// broadcast.
		s.afterLocked(s.cfg.DebounceDelay, func() {
			s.mu.Lock()
			if !s.closed {
				s.applyLocked()
			}
			s.mu.Unlock()
		})
	}
	s.mu.Unlock()

	s.log.Debug("toggle selection",
		zap.String("group", s.cfg.Group),
		zap.String("value", opt.value))
}

// Close releases every subscription and timer. Idempotent.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Synchronizer) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	for _, sub := range s.bridge {
		sub.Close()
	}
	s.bridge = nil
	for _, sub := range s.watch {
		sub.Close()
	}
	s.watch = nil
	for slot := range s.timers {
		slot.sub.Close()
	}
	s.timers = make(map[*timerSlot]struct{})
	s.debounce = nil
	close(s.done)
}
