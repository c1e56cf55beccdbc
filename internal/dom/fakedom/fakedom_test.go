package fakedom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiosync/internal/dom"
	"radiosync/internal/dom/fakedom"
)

func buildGroup(d *fakedom.Document) *fakedom.Node {
	return d.BuildToggleGroup("manual-map-toggle", "manual-map-toggle", []fakedom.ToggleOption{
		{Value: "yes", Label: "Yes"},
		{Value: "no", Label: "No"},
	}, "no")
}

func TestQueryAndStructure(t *testing.T) {
	d := fakedom.New()
	d.Attach(buildGroup(d))

	el, ok := d.Query("#manual-map-toggle")
	require.True(t, ok)
	assert.Equal(t, "div", el.Tag())

	controls := el.QueryAll(dom.SelectorControls)
	require.Len(t, controls, 2)
	assert.Equal(t, "yes", controls[0].Value())
	assert.False(t, controls[0].Checked())
	assert.True(t, controls[1].Checked())

	labels := el.QueryAll(dom.SelectorLabels)
	require.Len(t, labels, 2)
	v, ok := labels[0].Attribute("data-value")
	require.True(t, ok)
	assert.Equal(t, "yes", v)

	_, ok = d.Query("#missing")
	assert.False(t, ok)
}

func TestRadioMutualExclusion(t *testing.T) {
	d := fakedom.New()
	d.Attach(buildGroup(d))

	el, _ := d.Query("#manual-map-toggle")
	controls := el.QueryAll(dom.SelectorControls)

	controls[0].SetChecked(true)
	assert.True(t, controls[0].Checked())
	assert.False(t, controls[1].Checked(), "checking yes unchecks no")

	controls[1].SetChecked(true)
	assert.False(t, controls[0].Checked())
	assert.True(t, controls[1].Checked())
}

func TestReplaceKillsOldSubtree(t *testing.T) {
	d := fakedom.New()
	d.Attach(buildGroup(d))

	el, _ := d.Query("#manual-map-toggle")
	old := el.QueryAll(dom.SelectorControls)[0]
	require.True(t, old.Alive())

	d.Replace("#manual-map-toggle", buildGroup(d))
	assert.False(t, old.Alive())

	// Mutators on a dead handle are no-ops.
	old.SetStyles(map[string]string{"opacity": "0"})
	assert.Empty(t, old.Styles())
	old.SetChecked(true)
	assert.False(t, old.Checked())

	fresh, ok := d.Query("#manual-map-toggle")
	require.True(t, ok)
	assert.True(t, fresh.Alive())
}

func TestObserveAdditions(t *testing.T) {
	d := fakedom.New()
	d.Attach(buildGroup(d))

	fired := 0
	sub := d.ObserveAdditions("#manual-map-toggle", func() { fired++ })

	d.Replace("#manual-map-toggle", buildGroup(d))
	assert.Equal(t, 1, fired)

	d.ReplaceQuiet("#manual-map-toggle", buildGroup(d))
	assert.Equal(t, 1, fired, "quiet replace must not notify")

	sub.Close()
	d.Replace("#manual-map-toggle", buildGroup(d))
	assert.Equal(t, 1, fired, "closed observer must not notify")
}

func TestObserverSelectorFilter(t *testing.T) {
	d := fakedom.New()

	fired := 0
	d.ObserveAdditions("#manual-map-toggle", func() { fired++ })

	d.Attach(d.NewNode("div", "sidebar"))
	assert.Zero(t, fired, "unrelated subtree must not notify")

	d.Attach(buildGroup(d))
	assert.Equal(t, 1, fired)
}

func TestDispatchRecordsAndDelivers(t *testing.T) {
	d := fakedom.New()
	d.Attach(buildGroup(d))

	el, _ := d.Query("#manual-map-toggle")
	control := el.QueryAll(dom.SelectorControls)[0]

	var seen []dom.Event
	control.On(dom.EventChange, func(ev dom.Event) { seen = append(seen, ev) })

	control.Dispatch(dom.Event{Type: dom.EventChange})
	control.Dispatch(dom.Event{Type: dom.EventClick}) // no listener for this type

	require.Len(t, seen, 1)
	events := d.Events()
	require.Len(t, events, 2)
	assert.Equal(t, dom.EventChange, events[0].Type)
	assert.Equal(t, "input", events[0].TargetTag)
	assert.Equal(t, "yes", events[0].TargetValue)

	d.ResetEvents()
	assert.Empty(t, d.Events())
}

func TestSimulatedGesturesAreNotRecorded(t *testing.T) {
	d := fakedom.New()
	d.Attach(buildGroup(d))

	el, _ := d.Query("#manual-map-toggle")
	control := el.QueryAll(dom.SelectorControls)[0]

	clicks := 0
	control.On(dom.EventClick, func(dom.Event) { clicks++ })

	d.SimulateClick(control)
	assert.Equal(t, 1, clicks)
	assert.Empty(t, d.Events(), "user gestures are delivered but not logged")
}

func TestListenerSubscriptionClose(t *testing.T) {
	d := fakedom.New()
	d.Attach(buildGroup(d))

	el, _ := d.Query("#manual-map-toggle")
	control := el.QueryAll(dom.SelectorControls)[0].(*fakedom.Node)

	calls := 0
	sub := control.On(dom.EventChange, func(dom.Event) { calls++ })
	assert.Equal(t, 1, control.ListenerCount(dom.EventChange))

	sub.Close()
	assert.Zero(t, control.ListenerCount(dom.EventChange))

	d.SimulateChange(control)
	assert.Zero(t, calls)
}

func TestCustomDetailRoundTrip(t *testing.T) {
	d := fakedom.New()
	d.Attach(buildGroup(d))

	el, _ := d.Query("#manual-map-toggle")

	var got *dom.Detail
	el.On(dom.EventSelect, func(ev dom.Event) { got = ev.Detail })

	el.Dispatch(dom.Event{Type: dom.EventSelect, Detail: &dom.Detail{Group: "manual-map-toggle", Value: "yes"}})

	require.NotNil(t, got)
	assert.Equal(t, "manual-map-toggle", got.Group)
	assert.Equal(t, "yes", got.Value)
}
