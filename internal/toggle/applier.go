package toggle

import (
	"radiosync/internal/dom"
	"radiosync/internal/style"
)

// option pairs one native control with its presentation label.
type option struct {
	value   string
	control dom.Element
	label   dom.Element
}

// resolveOptions enumerates the container's controls and labels in document
// order and pairs them up. A label carrying a data-value attribute is paired
// with the control of that value; labels without one fall back to positional
// correspondence, the reference behavior. Attribute pairing goes first because
// positional pairing silently miswires when the framework reorders children.
func resolveOptions(container dom.Element) []option {
	controls := container.QueryAll(dom.SelectorControls)
	labels := container.QueryAll(dom.SelectorLabels)

	opts := make([]option, 0, len(controls))
	for i, c := range controls {
		opt := option{value: c.Value(), control: c}
		for j, l := range labels {
			if v, ok := l.Attribute("data-value"); ok {
				if v == opt.value {
					opt.label = l
					break
				}
				continue
			}
			if j == i {
				opt.label = l
				break
			}
		}
		if opt.label == nil && i < len(labels) {
			opt.label = labels[i]
		}
		if opt.label == nil {
			continue
		}
		opts = append(opts, opt)
	}
	return opts
}

// applyLocked is the presentation applier: derive every visual attribute from
// the current checked state and assign it inline. It is idempotent, never
// errors, and no-ops when the container or its children are gone; the
// initializer and watchdog retry, absence here is expected and frequent.
// Caller holds s.mu.
func (s *Synchronizer) applyLocked() {
	container := s.container
	if container == nil || !container.Alive() {
		return
	}
	opts := resolveOptions(container)
	if len(opts) == 0 {
		return
	}
	hidden := style.HiddenControl()
	for _, o := range opts {
		o.control.SetStyles(hidden)
		o.label.SetStyles(s.sheet.Label(o.value, o.control.Checked()))
	}
}

// ForceApply runs one immediate reconciliation pass, part of the debug
// surface.
func (s *Synchronizer) ForceApply() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.applyLocked()
}
