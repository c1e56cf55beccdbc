// Package fakedom is an in-memory dom.Document for tests. It models the parts
// of a page the synchronizer touches: a container with radio controls and
// labels, inline styles, checked state with radio-group exclusion, listener
// registration, synchronous event dispatch, and wholesale subtree replacement
// the way a framework re-render discards and rebuilds nodes.
//
// Dispatch is recorded in order so tests can assert the bridge's exact event
// sequence. Simulated user gestures (SimulateClick) are not recorded; only
// synthesized dispatches are.
package fakedom

import (
	"strings"
	"sync"

	"radiosync/internal/dom"
)

// Recorded is one dispatched event, in dispatch order.
type Recorded struct {
	TargetID    string // container id, or "" for child nodes
	TargetTag   string
	TargetValue string
	Type        dom.EventType
	Detail      *dom.Detail
}

// Document is the fake page.
type Document struct {
	mu        sync.Mutex
	roots     []*Node
	observers []*observer
	recorded  []Recorded
}

type observer struct {
	doc      *Document
	selector string
	fn       func()
	closed   bool
}

func (o *observer) Close() {
	o.doc.mu.Lock()
	o.closed = true
	o.doc.mu.Unlock()
}

// New returns an empty document.
func New() *Document { return &Document{} }

// Node is a fake element.
type Node struct {
	doc      *Document
	tag      string
	id       string
	attrs    map[string]string
	styles   map[string]string
	checked  bool
	children []*Node
	dead     bool

	listeners map[dom.EventType][]*listener
}

type listener struct {
	fn     dom.Listener
	closed bool
}

type listenerSub struct {
	doc *Document
	l   *listener
}

func (s listenerSub) Close() {
	s.doc.mu.Lock()
	s.l.closed = true
	s.doc.mu.Unlock()
}

// NewNode creates a detached node.
func (d *Document) NewNode(tag, id string) *Node {
	return &Node{
		doc:       d,
		tag:       tag,
		id:        id,
		attrs:     map[string]string{},
		styles:    map[string]string{},
		listeners: map[dom.EventType][]*listener{},
	}
}

// Attach adds a root node to the document and notifies addition observers.
func (d *Document) Attach(n *Node) {
	d.mu.Lock()
	d.roots = append(d.roots, n)
	fns := d.matchingObserversLocked(n)
	d.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Replace detaches the node currently matching selector and attaches repl in
// its place: the old subtree goes dead (inline styles and listeners are gone
// with it) and addition observers fire, exactly like a framework re-render.
func (d *Document) Replace(selector string, repl *Node) {
	d.mu.Lock()
	id := strings.TrimPrefix(selector, "#")
	for i, r := range d.roots {
		if r.id == id {
			r.killLocked()
			d.roots[i] = repl
		}
	}
	fns := d.matchingObserversLocked(repl)
	d.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// ReplaceQuiet swaps the subtree without notifying addition observers,
// simulating a re-render the mutation subscription missed.
func (d *Document) ReplaceQuiet(selector string, repl *Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := strings.TrimPrefix(selector, "#")
	for i, r := range d.roots {
		if r.id == id {
			r.killLocked()
			d.roots[i] = repl
		}
	}
}

// Detach removes the node matching selector without a replacement.
func (d *Document) Detach(selector string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := strings.TrimPrefix(selector, "#")
	kept := d.roots[:0]
	for _, r := range d.roots {
		if r.id == id {
			r.killLocked()
			continue
		}
		kept = append(kept, r)
	}
	d.roots = kept
}

func (n *Node) killLocked() {
	n.dead = true
	for _, c := range n.children {
		c.killLocked()
	}
}

func (d *Document) matchingObserversLocked(added *Node) []func() {
	var fns []func()
	for _, o := range d.observers {
		if o.closed {
			continue
		}
		if subtreeMatches(added, o.selector) {
			fns = append(fns, o.fn)
		}
	}
	return fns
}

func subtreeMatches(n *Node, selector string) bool {
	if matches(n, selector) {
		return true
	}
	for _, c := range n.children {
		if subtreeMatches(c, selector) {
			return true
		}
	}
	return false
}

func matches(n *Node, selector string) bool {
	switch {
	case strings.HasPrefix(selector, "#"):
		return n.id == selector[1:]
	case selector == dom.SelectorControls:
		return n.tag == "input" && n.attrs["type"] == "radio"
	default:
		return n.tag == selector
	}
}

// Query implements dom.Document. Only id selectors resolve at document level.
func (d *Document) Query(selector string) (dom.Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range d.roots {
		if found := findLocked(r, selector); found != nil {
			return found, true
		}
	}
	return nil, false
}

func findLocked(n *Node, selector string) *Node {
	if matches(n, selector) {
		return n
	}
	for _, c := range n.children {
		if found := findLocked(c, selector); found != nil {
			return found
		}
	}
	return nil
}

// ObserveAdditions implements dom.Document.
func (d *Document) ObserveAdditions(selector string, fn func()) dom.Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	o := &observer{doc: d, selector: selector, fn: fn}
	d.observers = append(d.observers, o)
	return o
}

// Events returns the dispatch log.
func (d *Document) Events() []Recorded {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Recorded, len(d.recorded))
	copy(out, d.recorded)
	return out
}

// ResetEvents clears the dispatch log.
func (d *Document) ResetEvents() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recorded = nil
}

// SimulateClick delivers a user click to el's listeners without recording it.
func (d *Document) SimulateClick(el dom.Element) {
	n := el.(*Node)
	n.deliver(dom.Event{Type: dom.EventClick})
}

// SimulateChange delivers a native change event to el's listeners without
// recording it, the way the browser settles a checked-state change.
func (d *Document) SimulateChange(el dom.Element) {
	n := el.(*Node)
	n.deliver(dom.Event{Type: dom.EventChange})
}

// --- Node as dom.Element ---

// Alive implements dom.Element.
func (n *Node) Alive() bool {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	return !n.dead
}

// Tag implements dom.Element.
func (n *Node) Tag() string { return n.tag }

// ID returns the node id.
func (n *Node) ID() string { return n.id }

// Value implements dom.Element.
func (n *Node) Value() string {
	v, _ := n.Attribute("value")
	return v
}

// Attribute implements dom.Element.
func (n *Node) Attribute(name string) (string, bool) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	v, ok := n.attrs[name]
	return v, ok
}

// SetAttribute sets an attribute on a (possibly detached) node.
func (n *Node) SetAttribute(name, value string) *Node {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	n.attrs[name] = value
	return n
}

// Checked implements dom.Element.
func (n *Node) Checked() bool {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	return n.checked
}

// SetChecked implements dom.Element. Checking a radio unchecks the rest of
// its name group, mirroring native mutual exclusion.
func (n *Node) SetChecked(checked bool) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	if n.dead {
		return
	}
	n.checked = checked
	if checked && n.attrs["name"] != "" {
		for _, r := range n.doc.roots {
			uncheckSiblingsLocked(r, n)
		}
	}
}

func uncheckSiblingsLocked(scope, target *Node) {
	if scope != target && scope.tag == "input" && scope.attrs["name"] == target.attrs["name"] {
		scope.checked = false
	}
	for _, c := range scope.children {
		uncheckSiblingsLocked(c, target)
	}
}

// Styles implements dom.Element.
func (n *Node) Styles() map[string]string {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	out := make(map[string]string, len(n.styles))
	for k, v := range n.styles {
		out[k] = v
	}
	return out
}

// SetStyles implements dom.Element.
func (n *Node) SetStyles(props map[string]string) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	if n.dead {
		return
	}
	for k, v := range props {
		n.styles[k] = v
	}
}

// QueryAll implements dom.Element.
func (n *Node) QueryAll(selector string) []dom.Element {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	var out []dom.Element
	for _, c := range n.children {
		collectLocked(c, selector, &out)
	}
	return out
}

func collectLocked(n *Node, selector string, out *[]dom.Element) {
	if matches(n, selector) {
		*out = append(*out, n)
	}
	for _, c := range n.children {
		collectLocked(c, selector, out)
	}
}

// On implements dom.Element.
func (n *Node) On(t dom.EventType, fn dom.Listener) dom.Subscription {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	l := &listener{fn: fn}
	n.listeners[t] = append(n.listeners[t], l)
	return listenerSub{doc: n.doc, l: l}
}

// ListenerCount reports installed live listeners for an event type.
func (n *Node) ListenerCount(t dom.EventType) int {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	count := 0
	for _, l := range n.listeners[t] {
		if !l.closed {
			count++
		}
	}
	return count
}

// Dispatch implements dom.Element: records the event and delivers it to this
// node's listeners synchronously. Dead nodes drop the event.
func (n *Node) Dispatch(ev dom.Event) {
	n.doc.mu.Lock()
	if n.dead {
		n.doc.mu.Unlock()
		return
	}
	n.doc.recorded = append(n.doc.recorded, Recorded{
		TargetID:    n.id,
		TargetTag:   n.tag,
		TargetValue: n.attrs["value"],
		Type:        ev.Type,
		Detail:      ev.Detail,
	})
	n.doc.mu.Unlock()
	n.deliver(ev)
}

func (n *Node) deliver(ev dom.Event) {
	n.doc.mu.Lock()
	if n.dead {
		n.doc.mu.Unlock()
		return
	}
	var fns []dom.Listener
	for _, l := range n.listeners[ev.Type] {
		if !l.closed {
			fns = append(fns, l.fn)
		}
	}
	n.doc.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// AddChild appends a child node.
func (n *Node) AddChild(c *Node) *Node {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	n.children = append(n.children, c)
	return n
}

// ToggleOption describes one option when building a control group.
type ToggleOption struct {
	Value string
	Label string
}

// BuildToggleGroup constructs the usual control-group shape: a container div
// holding one hidden-able radio input and one label per option, labels carrying
// a data-value attribute. checkedValue marks the initially checked option.
// The node is returned detached; Attach or Replace puts it in the document.
func (d *Document) BuildToggleGroup(containerID, group string, options []ToggleOption, checkedValue string) *Node {
	container := d.NewNode("div", containerID)
	for _, opt := range options {
		input := d.NewNode("input", "")
		input.attrs["type"] = "radio"
		input.attrs["name"] = group
		input.attrs["value"] = opt.Value
		input.checked = opt.Value == checkedValue
		container.children = append(container.children, input)

		label := d.NewNode("label", "")
		label.attrs["data-value"] = opt.Value
		label.attrs["text"] = opt.Label
		container.children = append(container.children, label)
	}
	return container
}
