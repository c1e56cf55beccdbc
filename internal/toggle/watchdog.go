package toggle

import (
	"go.uber.org/zap"

	"radiosync/internal/dom"
)

// The watchdog is two independent triggers re-running the applier for the
// synchronizer's lifetime. Both are idempotent and commutative with each
// other and with direct applier invocation, so a missed or duplicated firing
// costs a pass, never correctness.

// startWatchdogLocked installs the structural-mutation subscription and the
// poll fallback. Caller holds s.mu; runs once, on the first successful bind.
func (s *Synchronizer) startWatchdogLocked() {
	// A framework re-render inserts a brand-new container with no styling
	// and no listeners. Give it RebindDelay to finish rendering, then
	// re-initialize against whatever is in the document now.
	s.watch = append(s.watch, s.doc.ObserveAdditions(s.cfg.ContainerSelector, func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.afterLocked(s.cfg.RebindDelay, s.rebind)
		s.mu.Unlock()
		s.log.Debug("toggle container addition observed",
			zap.String("selector", s.cfg.ContainerSelector))
	}))

	// Poll fallback for mutations the subscription missed: a control that is
	// visually non-hidden means some other code path reset the inline
	// styling the applier set.
	s.watch = append(s.watch, s.clock.Every(s.cfg.WatchInterval, s.watchTick))
}

// watchTick is one poll pass.
func (s *Synchronizer) watchTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.container == nil || !s.container.Alive() || len(s.options) == 0 {
		// The bound container is gone, or its children had not rendered at
		// bind time, and no mutation notification arrived.
		el, ok := s.doc.Query(s.cfg.ContainerSelector)
		if ok {
			s.bindLocked(el)
		}
		return
	}
	if s.anyControlVisibleLocked() {
		s.applyLocked()
	}
}

// anyControlVisibleLocked reports whether any native control lost the hidden
// styling the applier assigned. Caller holds s.mu.
func (s *Synchronizer) anyControlVisibleLocked() bool {
	for _, c := range s.container.QueryAll(dom.SelectorControls) {
		if c.Styles()["opacity"] != "0" {
			return true
		}
	}
	return false
}
