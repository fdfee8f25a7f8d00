package uiatest

import (
	"errors"
	"testing"
	"time"

	"github.com/launchdarkly/uia-contract-tests/uia"
	"github.com/launchdarkly/uia-contract-tests/uia/uiafake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestAutomationEventMonitor(t *testing.T) {
	tree := uiafake.NewTree()
	button := tree.AddChild(tree.Root(), "OK", "button")
	other := tree.AddChild(tree.Root(), "Cancel", "button")

	m := NewAutomationEventMonitor(tree)
	require.NoError(t, m.Subscribe(tree.Root(), uia.ScopeSubtree, uia.EventInvoked))

	assert.Equal(t, NotFired, m.WasFired(button, uia.EventInvoked))
	tree.RaiseAutomationEvent(button, uia.EventInvoked)
	tree.RaiseAutomationEvent(button, uia.EventMenuOpened)

	assert.Equal(t, Fired, m.WasFired(button, uia.EventInvoked))
	assert.Equal(t, NotFired, m.WasFired(other, uia.EventInvoked))
	assert.Equal(t, NotFired, m.WasFired(button, uia.EventMenuOpened))
	assert.Equal(t, Fired, m.WasFired(uia.Element{}, uia.EventInvoked))
	assert.Equal(t, 1, m.Count())

	require.NoError(t, m.UnsubscribeAll())
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 0, tree.ActiveSubscriptions())
	tree.RaiseAutomationEvent(button, uia.EventInvoked)
	assert.Equal(t, NotFired, m.WasFired(button, uia.EventInvoked))
}

func TestPropertyChangeMonitorNeverSubscribedIsNotFired(t *testing.T) {
	tree := uiafake.NewTree()
	el := tree.AddChild(tree.Root(), "Slider", "slider")
	m := NewPropertyChangeMonitor(tree, tree)
	assert.Equal(t, NotFired, m.WasFired(el, uia.PropertyRangeValueValue))
}

func TestPropertyChangeMonitor(t *testing.T) {
	tree := uiafake.NewTree()
	el := tree.AddChild(tree.Root(), "Slider", "slider")
	m := NewPropertyChangeMonitor(tree, tree)
	require.NoError(t, m.Subscribe(el, uia.ScopeElement, uia.PropertyRangeValueValue))

	tree.SetProperty(el, uia.PropertyRangeValueValue, ldvalue.Float64(5))
	tree.SetProperty(el, uia.PropertyName, ldvalue.String("renamed"))

	assert.Equal(t, Fired, m.WasFired(el, uia.PropertyRangeValueValue))
	assert.Equal(t, NotFired, m.WasFired(el, uia.PropertyName))
	v, ok := m.LastValue(el, uia.PropertyRangeValueValue)
	assert.True(t, ok)
	assert.Equal(t, ldvalue.Float64(5), v)
}

func TestPropertyChangeMonitorDoesNotJudgeControlOnlyElements(t *testing.T) {
	tree := uiafake.NewTree()
	el := tree.AddChild(tree.Root(), "Separator", "separator")
	tree.SetPropertyQuietly(el, uia.PropertyIsContentElement, ldvalue.Bool(false))
	m := NewPropertyChangeMonitor(tree, tree)
	require.NoError(t, m.Subscribe(el, uia.ScopeElement, uia.PropertyName))

	assert.Equal(t, NotTested, m.WasFired(el, uia.PropertyName))
	tree.SetProperty(el, uia.PropertyName, ldvalue.String("x"))
	assert.Equal(t, NotTested, m.WasFired(el, uia.PropertyName))
}

func TestStructureChangeMonitor(t *testing.T) {
	tree := uiafake.NewTree()
	list := tree.AddChild(tree.Root(), "List", "list")
	m := NewStructureChangeMonitor(tree)
	require.NoError(t, m.Subscribe(list, uia.ScopeElement))

	item := tree.AddChild(list, "Item", "listitem")
	assert.Equal(t, Fired, m.WasFired(list, uia.StructureChildAdded))
	assert.Equal(t, NotFired, m.WasFired(list, uia.StructureChildRemoved))

	tree.Remove(item)
	assert.Equal(t, Fired, m.WasFired(list, uia.StructureChildRemoved))
}

func TestFocusChangeMonitorTimesOutWithNotFired(t *testing.T) {
	tree := uiafake.NewTree()
	el := tree.AddChild(tree.Root(), "Edit", "edit")
	m := NewFocusChangeMonitor(tree, tree, time.Millisecond*50)
	require.NoError(t, m.Subscribe())

	start := time.Now()
	assert.Equal(t, NotFired, m.WasFired(el))
	assert.True(t, time.Since(start) >= time.Millisecond*50)
}

func TestFocusChangeMonitorMatchesDescendants(t *testing.T) {
	tree := uiafake.NewTree()
	tree.Async = true
	window := tree.AddChild(tree.Root(), "Window", "window")
	edit := tree.AddChild(window, "Edit", "edit")
	other := tree.AddChild(tree.Root(), "Other", "window")
	m := NewFocusChangeMonitor(tree, tree, time.Second)
	require.NoError(t, m.Subscribe())

	require.NoError(t, tree.SetFocus(edit))
	assert.Equal(t, Fired, m.WasFired(window))
	assert.Equal(t, Fired, m.WasFired(edit))

	m.timeout = time.Millisecond * 20
	assert.Equal(t, NotFired, m.WasFired(other))
}

func TestFocusChangeMonitorWaitsForLateEvent(t *testing.T) {
	tree := uiafake.NewTree()
	first := tree.AddChild(tree.Root(), "First", "edit")
	second := tree.AddChild(tree.Root(), "Second", "edit")
	m := NewFocusChangeMonitor(tree, tree, time.Second)
	require.NoError(t, m.Subscribe())

	require.NoError(t, tree.SetFocus(first))
	go func() {
		time.Sleep(time.Millisecond * 50)
		_ = tree.SetFocus(second)
	}()
	assert.Equal(t, Fired, m.WasFired(second))
}

func TestUnsubscribeAllReportsErrorsButRemovesEverything(t *testing.T) {
	tree := uiafake.NewTree()
	m := NewAutomationEventMonitor(tree)
	require.NoError(t, m.Subscribe(tree.Root(), uia.ScopeSubtree, uia.EventInvoked, uia.EventMenuOpened))
	tree.SetRemoveError(errors.New("sorry"))

	assert.Error(t, m.UnsubscribeAll())
	assert.Equal(t, 0, tree.ActiveSubscriptions())
	assert.NoError(t, m.UnsubscribeAll())
}

func TestSignal(t *testing.T) {
	s := NewSignal()
	assert.False(t, s.Wait(time.Millisecond))
	go s.Set()
	assert.True(t, s.Wait(time.Second))
	assert.True(t, s.IsSet())
	s.Reset()
	assert.False(t, s.IsSet())
	assert.False(t, s.Wait(time.Millisecond))
}
