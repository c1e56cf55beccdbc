package toggle

import (
	"context"
	"fmt"
)

// Debug surface: Dump, ForceApply (applier.go), and Exercise are developer
// tools for diagnosing a live page, not part of the functional contract.

// OptionState is one option's observable state.
type OptionState struct {
	Value         string            `json:"value"`
	Checked       bool              `json:"checked"`
	ControlHidden bool              `json:"control_hidden"`
	LabelStyles   map[string]string `json:"label_styles"`
}

// State is a snapshot of the synchronizer and its control group.
type State struct {
	Selector   string        `json:"selector"`
	Group      string        `json:"group"`
	Bound      bool          `json:"bound"`
	Closed     bool          `json:"closed"`
	Selections uint64        `json:"selections"`
	Options    []OptionState `json:"options"`
}

// Dump snapshots current control and label state.
func (s *Synchronizer) Dump() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Selector:   s.cfg.ContainerSelector,
		Group:      s.cfg.Group,
		Bound:      s.container != nil && s.container.Alive(),
		Closed:     s.closed,
		Selections: s.selects,
	}
	if !st.Bound {
		return st
	}
	for _, o := range resolveOptions(s.container) {
		st.Options = append(st.Options, OptionState{
			Value:         o.value,
			Checked:       o.control.Checked(),
			ControlHidden: o.control.Styles()["opacity"] == "0",
			LabelStyles:   o.label.Styles(),
		})
	}
	return st
}

// Exercise sequentially selects every option, verifying each selection sticks
// and broadcasts, then restores the original selection. Selecting the option
// that is already checked is skipped, since that is a no-op by contract.
func (s *Synchronizer) Exercise(ctx context.Context) error {
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
	s.mu.Unlock()

	original := ""
	for _, o := range opts {
		if o.control.Checked() {
			original = o.value
		}
	}

	for _, o := range opts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if o.value == original {
			continue
		}
		before := s.Selections()
		if err := s.Select(o.value); err != nil {
			return fmt.Errorf("exercise %q: %w", o.value, err)
		}
		if !o.control.Checked() {
			return fmt.Errorf("exercise %q: control did not check", o.value)
		}
		if s.Selections() != before+1 {
			return fmt.Errorf("exercise %q: selection did not broadcast", o.value)
		}
	}

	if original != "" {
		if err := s.Select(original); err != nil {
			return fmt.Errorf("exercise restore %q: %w", original, err)
		}
	}
	s.ForceApply()
	return nil
}
