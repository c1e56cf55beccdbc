package browser

import (
	"context"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"go.uber.org/zap"

	"radiosync/internal/dom"
)

// bindingName is the CDP binding pushed into the page. Listener and observer
// callbacks in the page call it with a JSON payload naming the registration
// that fired.
const bindingName = "__radiosyncNotify"

const bootstrapJS = `() => {
	if (window.__radiosync) return;
	window.__radiosync = { listeners: {}, observers: {} };
}`

// Document adapts a rod page to dom.Document. Event listeners and mutation
// observers live in the page; their firings come back over a runtime binding
// and are routed to the registered Go callbacks.
type Document struct {
	page   *rod.Page
	logger *zap.Logger
	cancel context.CancelFunc

	mu       sync.Mutex
	nextID   int
	handlers map[int]func(dom.Event)
}

// Attach installs the notification binding on page and starts the event pump.
func Attach(page *rod.Page, logger *zap.Logger) (*Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Document{
		page:     page,
		logger:   logger,
		handlers: make(map[int]func(dom.Event)),
	}

	if err := (proto.RuntimeAddBinding{Name: bindingName}).Call(page); err != nil {
		return nil, err
	}
	if _, err := page.Eval(bootstrapJS); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(page.GetContext())
	d.cancel = cancel
	pump := page.Context(ctx)
	go pump.EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name == bindingName {
			d.route(e.Payload)
		}
	})()

	return d, nil
}

// Close stops the event pump. Registrations left in the page are inert once
// the pump is gone.
func (d *Document) Close() {
	d.cancel()
}

func (d *Document) route(payload string) {
	j := gson.NewFrom(payload)
	id := j.Get("id").Int()

	d.mu.Lock()
	fn := d.handlers[id]
	d.mu.Unlock()
	if fn == nil {
		return
	}

	ev := dom.Event{Type: dom.EventType(j.Get("type").Str())}
	if det := j.Get("detail"); det.Val() != nil {
		ev.Detail = &dom.Detail{
			Group: det.Get("group").Str(),
			Value: det.Get("value").Str(),
		}
	}

	// Callbacks re-enter the page through Eval; never run them on the pump.
	go fn(ev)
}

func (d *Document) register(fn func(dom.Event)) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.handlers[id] = fn
	return id
}

func (d *Document) unregister(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, id)
}

// Query resolves a selector to a single element.
func (d *Document) Query(selector string) (dom.Element, bool) {
	has, el, err := d.page.Has(selector)
	if err != nil || !has {
		return nil, false
	}
	return &node{doc: d, el: el}, true
}

// ObserveAdditions watches the body subtree for added nodes matching selector
// or containing a match.
func (d *Document) ObserveAdditions(selector string, fn func()) dom.Subscription {
	id := d.register(func(dom.Event) { fn() })
	_, err := d.page.Eval(`(id, selector) => {
		const obs = new MutationObserver((muts) => {
			for (const m of muts) {
				for (const n of m.addedNodes) {
					if (n.nodeType !== 1) continue;
					if ((n.matches && n.matches(selector)) || (n.querySelector && n.querySelector(selector))) {
						window.`+bindingName+`(JSON.stringify({id: id, type: 'addition'}));
						return;
					}
				}
			}
		});
		obs.observe(document.body, {childList: true, subtree: true});
		window.__radiosync.observers[id] = () => obs.disconnect();
	}`, id, selector)
	if err != nil {
		d.logger.Warn("install mutation observer failed", zap.Error(err))
		d.unregister(id)
		return closedSub{}
	}
	return &remoteSub{doc: d, id: id, kind: "observers"}
}

type closedSub struct{}

func (closedSub) Close() {}

// remoteSub is a registration living in the page. Close tears down both the
// page side and the Go handler.
type remoteSub struct {
	doc  *Document
	id   int
	kind string // "listeners" or "observers"
	once sync.Once
}

func (s *remoteSub) Close() {
	s.once.Do(func() {
		s.doc.unregister(s.id)
		_, err := s.doc.page.Eval(`(id, kind) => {
			const m = window.__radiosync && window.__radiosync[kind];
			if (m && m[id]) { m[id](); delete m[id]; }
		}`, s.id, s.kind)
		if err != nil {
			s.doc.logger.Debug("listener teardown failed", zap.Error(err))
		}
	})
}

// node adapts a rod element to dom.Element. A handle to a node the framework
// replaced fails its evals; those failures surface as Alive() false and
// no-op mutators, which is the contract the synchronizer expects.
type node struct {
	doc *Document
	el  *rod.Element

	tagOnce sync.Once
	tag     string
}

func (n *node) Alive() bool {
	res, err := n.el.Eval(`() => this.isConnected`)
	return err == nil && res.Value.Bool()
}

func (n *node) Tag() string {
	n.tagOnce.Do(func() {
		if res, err := n.el.Eval(`() => this.tagName.toLowerCase()`); err == nil {
			n.tag = res.Value.Str()
		}
	})
	return n.tag
}

func (n *node) Value() string {
	res, err := n.el.Eval(`() => this.value === undefined || this.value === null ? '' : String(this.value)`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (n *node) Attribute(name string) (string, bool) {
	res, err := n.el.Eval(`(name) => this.getAttribute(name)`, name)
	if err != nil || res.Value.Nil() {
		return "", false
	}
	return res.Value.Str(), true
}

func (n *node) Checked() bool {
	res, err := n.el.Eval(`() => !!this.checked`)
	return err == nil && res.Value.Bool()
}

func (n *node) SetChecked(checked bool) {
	// Setting .checked on a radio unchecks the rest of its name group, the
	// same native behavior a user click has.
	if _, err := n.el.Eval(`(v) => { this.checked = v; }`, checked); err != nil {
		n.doc.logger.Debug("set checked failed", zap.Error(err))
	}
}

func (n *node) Styles() map[string]string {
	res, err := n.el.Eval(`() => {
		const out = {};
		const s = this.style;
		for (let i = 0; i < s.length; i++) {
			const p = s[i];
			out[p] = s.getPropertyValue(p);
		}
		return out;
	}`)
	if err != nil {
		return map[string]string{}
	}
	styles := make(map[string]string)
	for k, v := range res.Value.Map() {
		styles[k] = v.Str()
	}
	return styles
}

func (n *node) SetStyles(props map[string]string) {
	if len(props) == 0 {
		return
	}
	_, err := n.el.Eval(`(props) => {
		for (const k of Object.keys(props)) this.style.setProperty(k, props[k]);
	}`, props)
	if err != nil {
		n.doc.logger.Debug("set styles failed", zap.Error(err))
	}
}

func (n *node) QueryAll(selector string) []dom.Element {
	els, err := n.el.Elements(selector)
	if err != nil {
		return nil
	}
	out := make([]dom.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &node{doc: n.doc, el: el})
	}
	return out
}

func (n *node) On(t dom.EventType, fn dom.Listener) dom.Subscription {
	id := n.doc.register(fn)
	_, err := n.el.Eval(`(id, type) => {
		const h = (e) => {
			// Synthesized activation replaces the native one.
			if (type === 'click') e.preventDefault();
			let detail = null;
			if (e.detail && typeof e.detail === 'object') {
				detail = { group: String(e.detail.group || ''), value: String(e.detail.value || '') };
			}
			window.`+bindingName+`(JSON.stringify({id: id, type: type, detail: detail}));
		};
		this.addEventListener(type, h);
		window.__radiosync.listeners[id] = () => this.removeEventListener(type, h);
	}`, id, string(t))
	if err != nil {
		n.doc.logger.Debug("install listener failed", zap.Error(err))
		n.doc.unregister(id)
		return closedSub{}
	}
	return &remoteSub{doc: n.doc, id: id, kind: "listeners"}
}

func (n *node) Dispatch(ev dom.Event) {
	var detail map[string]string
	if ev.Detail != nil {
		detail = map[string]string{"group": ev.Detail.Group, "value": ev.Detail.Value}
	}
	_, err := n.el.Eval(`(type, detail) => {
		let ev;
		if (detail) {
			ev = new CustomEvent(type, { bubbles: true, detail: detail });
		} else {
			ev = new Event(type, { bubbles: true });
		}
		this.dispatchEvent(ev);
	}`, string(ev.Type), detail)
	if err != nil {
		n.doc.logger.Debug("dispatch failed", zap.Error(err))
	}
}
