package toggle

import "radiosync/internal/dom"

// Emitter broadcasts a completed selection to the host framework. The host's
// callback wiring is a black box: it may listen on the control, on the
// container, at either level, for change or input or click. The emitter
// isolates that guesswork so the signal set can change without touching
// reconciliation.
type Emitter interface {
	EmitSelection(group string, control, container dom.Element, value string)
}

// Broadcast is the default emitter: it emulates every plausible native
// interaction pattern, in a fixed order, synchronously.
type Broadcast struct{}

// EmitSelection dispatches change, input, and click on the control, change on
// the container for container-level listeners, then the semantic
// radiosync:select notification carrying {group, value}.
func (Broadcast) EmitSelection(group string, control, container dom.Element, value string) {
	control.Dispatch(dom.Event{Type: dom.EventChange})
	control.Dispatch(dom.Event{Type: dom.EventInput})
	control.Dispatch(dom.Event{Type: dom.EventClick})
	container.Dispatch(dom.Event{Type: dom.EventChange})
	container.Dispatch(dom.Event{Type: dom.EventSelect, Detail: &dom.Detail{Group: group, Value: value}})
}
