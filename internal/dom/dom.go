// Package dom defines the document boundary the synchronizer operates against.
// The live implementation drives a page over CDP (internal/browser); tests use
// the deterministic in-memory document in fakedom. The synchronizer itself never
// creates or destroys nodes, it only observes and decorates them.
package dom

// EventType identifies a dispatched event.
type EventType string

const (
	EventChange EventType = "change"
	EventInput  EventType = "input"
	EventClick  EventType = "click"

	// EventSelect is the bridge's custom notification. Unlike the native
	// events above it carries a semantic Detail payload, for collaborators
	// that want intent without depending on native event shapes.
	EventSelect EventType = "radiosync:select"
)

// Detail is the payload of an EventSelect notification.
type Detail struct {
	Group string `json:"group"`
	Value string `json:"value"`
}

// Event is a dispatched DOM event. Detail is nil for native event types.
type Event struct {
	Type   EventType
	Detail *Detail
}

// Listener receives dispatched events.
type Listener func(Event)

// Subscription is a disposable registration: an event listener, a mutation
// observer, or a timer. Close is idempotent.
type Subscription interface {
	Close()
}

// Element is a handle to one node in the document tree. A framework re-render
// replaces nodes wholesale; a handle to a replaced node reports Alive() false
// and every mutating operation on it becomes a no-op.
type Element interface {
	// Alive reports whether the node is still attached to the document.
	Alive() bool

	// Tag returns the lowercase tag name.
	Tag() string

	// Value returns the node's value attribute ("" when absent).
	Value() string

	// Attribute returns a named attribute and whether it is present.
	Attribute(name string) (string, bool)

	// Checked and SetChecked access the native checked state of a control.
	// SetChecked(true) on a radio unchecks the rest of its name group, per
	// native mutual-exclusion semantics.
	Checked() bool
	SetChecked(checked bool)

	// Styles returns a copy of the node's inline style properties.
	Styles() map[string]string

	// SetStyles assigns inline style properties, overwriting any existing
	// values for the given keys. Inline styles take precedence over
	// stylesheet rules, which is what keeps the synchronizer authoritative
	// over presentation regardless of external CSS load order.
	SetStyles(props map[string]string)

	// QueryAll returns descendants matching selector, in document order.
	QueryAll(selector string) []Element

	// On installs an event listener for one event type.
	On(t EventType, fn Listener) Subscription

	// Dispatch delivers an event to this node's listeners synchronously,
	// before it returns.
	Dispatch(ev Event)
}

// Document is the visible page. The host framework owns its contents.
type Document interface {
	// Query resolves a selector to a single element.
	Query(selector string) (Element, bool)

	// ObserveAdditions invokes fn whenever a node matching selector, or one
	// containing a match, is added to the body subtree. This is how the
	// synchronizer notices a framework re-render replacing the container.
	ObserveAdditions(selector string, fn func()) Subscription
}

// Selectors the synchronizer queries within a control group.
const (
	SelectorControls = "input[type=radio]"
	SelectorLabels   = "label"
)
