// Package uiafake provides an in-memory element tree that implements uia.Provider and
// uia.InputInjector, for testing code that drives the automation tree.
package uiafake

import (
	"fmt"
	"sync"

	"github.com/launchdarkly/uia-contract-tests/uia"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// PatternMethod implements one method of a fake control pattern.
type PatternMethod func(tree *Tree, el uia.Element, args []ldvalue.Value) error

type node struct {
	id       string
	parent   *node
	children []*node
	props    map[uia.PropertyID]ldvalue.Value
	cached   map[uia.PropertyID]ldvalue.Value
	patterns map[uia.PatternID]map[string]PatternMethod
	hwnd     int
	removed  bool
}

type subscription struct {
	tree      *Tree
	kind      string
	target    uia.Element
	scope     uia.TreeScope
	event     uia.EventID
	props     map[uia.PropertyID]bool
	automaton uia.AutomationEventHandler
	property  uia.PropertyChangedHandler
	structure uia.StructureChangedHandler
	focus     uia.FocusChangedHandler
	removed   bool
}

// Tree is a fake accessibility tree. All methods are safe for concurrent use.
//
// By default events are delivered synchronously on the goroutine that raised them; set Async
// to deliver each event on its own goroutine, which is closer to how a real provider behaves.
type Tree struct {
	Async bool

	root        *node
	nodes       map[string]*node
	subs        []*subscription
	focused     *node
	removeError error
	inputLog    []string
	lastID      int
	lock        sync.Mutex
}

// NewTree creates a tree containing only a root element.
func NewTree() *Tree {
	t := &Tree{nodes: make(map[string]*node)}
	t.root = t.newNode(nil)
	t.root.props[uia.PropertyName] = ldvalue.String("Desktop")
	return t
}

func (t *Tree) newNode(parent *node) *node {
	t.lastID++
	n := &node{
		id:       fmt.Sprintf("42.%d", t.lastID),
		parent:   parent,
		props:    make(map[uia.PropertyID]ldvalue.Value),
		cached:   make(map[uia.PropertyID]ldvalue.Value),
		patterns: make(map[uia.PatternID]map[string]PatternMethod),
	}
	n.props[uia.PropertyIsContentElement] = ldvalue.Bool(true)
	n.props[uia.PropertyIsControlElement] = ldvalue.Bool(true)
	n.props[uia.PropertyBoundingRectangle] = uia.RectValue(uia.Rect{Width: 100, Height: 20})
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	t.nodes[n.id] = n
	return n
}

// Root returns the root element.
func (t *Tree) Root() uia.Element {
	return uia.Element{RuntimeID: t.root.id}
}

// AddChild creates a new element under parent with the given name and control type.
func (t *Tree) AddChild(parent uia.Element, name, controlType string) uia.Element {
	t.lock.Lock()
	p := t.nodes[parent.RuntimeID]
	if p == nil {
		t.lock.Unlock()
		panic("uiafake: unknown parent " + parent.String())
	}
	n := t.newNode(p)
	n.props[uia.PropertyName] = ldvalue.String(name)
	n.props[uia.PropertyControlType] = ldvalue.String(controlType)
	el := uia.Element{RuntimeID: n.id}
	t.lock.Unlock()
	t.RaiseStructureChanged(parent, uia.StructureChildAdded)
	return el
}

// Remove detaches an element and its subtree. Later calls involving it fail with
// uia.ErrElementNotAvailable.
func (t *Tree) Remove(el uia.Element) {
	t.lock.Lock()
	n := t.nodes[el.RuntimeID]
	if n == nil || n.parent == nil {
		t.lock.Unlock()
		return
	}
	p := n.parent
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	markRemoved(n)
	parent := uia.Element{RuntimeID: p.id}
	t.lock.Unlock()
	t.RaiseStructureChanged(parent, uia.StructureChildRemoved)
}

func markRemoved(n *node) {
	n.removed = true
	for _, c := range n.children {
		markRemoved(c)
	}
}

// SetProperty changes a property value. If the value differs from the previous one, a
// property-change event is raised.
func (t *Tree) SetProperty(el uia.Element, prop uia.PropertyID, value ldvalue.Value) {
	t.lock.Lock()
	n := t.nodes[el.RuntimeID]
	if n == nil {
		t.lock.Unlock()
		return
	}
	old, existed := n.props[prop]
	n.props[prop] = value
	t.lock.Unlock()
	if !existed || !old.Equal(value) {
		t.RaisePropertyChanged(el, prop, value)
	}
}

// SetPropertyQuietly changes a property value without raising an event.
func (t *Tree) SetPropertyQuietly(el uia.Element, prop uia.PropertyID, value ldvalue.Value) {
	t.lock.Lock()
	if n := t.nodes[el.RuntimeID]; n != nil {
		n.props[prop] = value
	}
	t.lock.Unlock()
}

// DeleteProperty makes a property unsupported on an element.
func (t *Tree) DeleteProperty(el uia.Element, prop uia.PropertyID) {
	t.lock.Lock()
	if n := t.nodes[el.RuntimeID]; n != nil {
		delete(n.props, prop)
	}
	t.lock.Unlock()
}

// CacheProperties copies the current values of the given properties into the element's cache.
func (t *Tree) CacheProperties(el uia.Element, props ...uia.PropertyID) {
	t.lock.Lock()
	if n := t.nodes[el.RuntimeID]; n != nil {
		for _, p := range props {
			if v, ok := n.props[p]; ok {
				n.cached[p] = v
			}
		}
	}
	t.lock.Unlock()
}

// SetWindowHandle associates a native window handle with an element for FromHandle.
func (t *Tree) SetWindowHandle(el uia.Element, hwnd int) {
	t.lock.Lock()
	if n := t.nodes[el.RuntimeID]; n != nil {
		n.hwnd = hwnd
		n.props[uia.PropertyNativeWindowHandle] = ldvalue.Int(hwnd)
	}
	t.lock.Unlock()
}

// AddPattern makes an element support a pattern, with the given method implementations.
func (t *Tree) AddPattern(el uia.Element, pattern uia.PatternID, methods map[string]PatternMethod) {
	t.lock.Lock()
	if n := t.nodes[el.RuntimeID]; n != nil {
		if methods == nil {
			methods = map[string]PatternMethod{}
		}
		n.patterns[pattern] = methods
	}
	t.lock.Unlock()
}

// SetRemoveError makes every subsequent Subscription.Remove call fail with err (after
// actually removing the subscription).
func (t *Tree) SetRemoveError(err error) {
	t.lock.Lock()
	t.removeError = err
	t.lock.Unlock()
}

// ActiveSubscriptions returns the number of subscriptions that have not been removed.
func (t *Tree) ActiveSubscriptions() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	n := 0
	for _, s := range t.subs {
		if !s.removed {
			n++
		}
	}
	return n
}

// InputLog returns a description of every input action received so far.
func (t *Tree) InputLog() []string {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([]string(nil), t.inputLog...)
}

func (t *Tree) lookup(el uia.Element) (*node, error) {
	n := t.nodes[el.RuntimeID]
	if n == nil || n.removed {
		return nil, uia.ErrElementNotAvailable
	}
	return n, nil
}

func ref(n *node) uia.Element {
	if n == nil {
		return uia.Element{}
	}
	return uia.Element{RuntimeID: n.id}
}

// Navigate implements uia.TreeWalker. Views are not distinguished.
func (t *Tree) Navigate(el uia.Element, dir uia.Direction, view uia.View) (uia.Element, bool, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	n, err := t.lookup(el)
	if err != nil {
		return uia.Element{}, false, err
	}
	var result *node
	switch dir {
	case uia.DirectionParent:
		result = n.parent
	case uia.DirectionFirstChild:
		if len(n.children) > 0 {
			result = n.children[0]
		}
	case uia.DirectionLastChild:
		if len(n.children) > 0 {
			result = n.children[len(n.children)-1]
		}
	case uia.DirectionNextSibling, uia.DirectionPreviousSibling:
		if n.parent != nil {
			siblings := n.parent.children
			for i, s := range siblings {
				if s != n {
					continue
				}
				if dir == uia.DirectionNextSibling && i+1 < len(siblings) {
					result = siblings[i+1]
				}
				if dir == uia.DirectionPreviousSibling && i > 0 {
					result = siblings[i-1]
				}
				break
			}
		}
	default:
		return uia.Element{}, false, fmt.Errorf("unknown direction %q", dir)
	}
	return ref(result), result != nil, nil
}

// GetPropertyValue implements uia.PropertySource.
func (t *Tree) GetPropertyValue(el uia.Element, prop uia.PropertyID, cached bool) (ldvalue.Value, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	n, err := t.lookup(el)
	if err != nil {
		return ldvalue.Null(), err
	}
	values := n.props
	if cached {
		values = n.cached
	}
	v, ok := values[prop]
	if !ok {
		return ldvalue.Null(), uia.ErrPropertyNotSupported
	}
	return v, nil
}

// GetPattern implements uia.PatternSource.
func (t *Tree) GetPattern(el uia.Element, pattern uia.PatternID, cached bool) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	n, err := t.lookup(el)
	if err != nil {
		return err
	}
	if _, ok := n.patterns[pattern]; !ok {
		return uia.ErrPatternNotSupported
	}
	return nil
}

// InvokePattern implements uia.PatternSource. The method runs without the tree lock held,
// so it can call back into the tree.
func (t *Tree) InvokePattern(el uia.Element, pattern uia.PatternID, method string, args ...ldvalue.Value) error {
	t.lock.Lock()
	n, err := t.lookup(el)
	if err != nil {
		t.lock.Unlock()
		return err
	}
	methods, ok := n.patterns[pattern]
	if !ok {
		t.lock.Unlock()
		return uia.ErrPatternNotSupported
	}
	m := methods[method]
	t.lock.Unlock()
	if m == nil {
		return fmt.Errorf("%s does not implement %s", pattern, method)
	}
	return m(t, el, args)
}

func (t *Tree) addSubscription(s *subscription) (uia.Subscription, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if !s.target.IsZero() {
		if _, err := t.lookup(s.target); err != nil {
			return nil, err
		}
	}
	s.tree = t
	t.subs = append(t.subs, s)
	return s, nil
}

// AddAutomationEventHandler implements uia.EventSource.
func (t *Tree) AddAutomationEventHandler(
	event uia.EventID,
	el uia.Element,
	scope uia.TreeScope,
	handler uia.AutomationEventHandler,
) (uia.Subscription, error) {
	return t.addSubscription(&subscription{kind: "event", event: event, target: el, scope: scope, automaton: handler})
}

// AddPropertyChangedHandler implements uia.EventSource.
func (t *Tree) AddPropertyChangedHandler(
	el uia.Element,
	scope uia.TreeScope,
	props []uia.PropertyID,
	handler uia.PropertyChangedHandler,
) (uia.Subscription, error) {
	set := make(map[uia.PropertyID]bool)
	for _, p := range props {
		set[p] = true
	}
	return t.addSubscription(&subscription{kind: "property", target: el, scope: scope, props: set, property: handler})
}

// AddStructureChangedHandler implements uia.EventSource.
func (t *Tree) AddStructureChangedHandler(
	el uia.Element,
	scope uia.TreeScope,
	handler uia.StructureChangedHandler,
) (uia.Subscription, error) {
	return t.addSubscription(&subscription{kind: "structure", target: el, scope: scope, structure: handler})
}

// AddFocusChangedHandler implements uia.EventSource.
func (t *Tree) AddFocusChangedHandler(handler uia.FocusChangedHandler) (uia.Subscription, error) {
	return t.addSubscription(&subscription{kind: "focus", focus: handler})
}

func (s *subscription) Remove() error {
	s.tree.lock.Lock()
	defer s.tree.lock.Unlock()
	s.removed = true
	return s.tree.removeError
}

// inScope must be called with the lock held.
func (t *Tree) inScope(s *subscription, source *node) bool {
	if s.target.IsZero() {
		return true
	}
	if source.id == s.target.RuntimeID {
		return s.scope&uia.ScopeElement != 0
	}
	if source.parent != nil && source.parent.id == s.target.RuntimeID {
		return s.scope&(uia.ScopeChildren|uia.ScopeDescendants) != 0
	}
	if s.scope&uia.ScopeDescendants == 0 {
		return false
	}
	for p := source.parent; p != nil; p = p.parent {
		if p.id == s.target.RuntimeID {
			return true
		}
	}
	return false
}

func (t *Tree) matching(source uia.Element, match func(*subscription) bool) []*subscription {
	t.lock.Lock()
	defer t.lock.Unlock()
	n := t.nodes[source.RuntimeID]
	if n == nil {
		return nil
	}
	var ret []*subscription
	for _, s := range t.subs {
		if !s.removed && match(s) && t.inScope(s, n) {
			ret = append(ret, s)
		}
	}
	return ret
}

func (t *Tree) deliver(fn func()) {
	if t.Async {
		go fn()
	} else {
		fn()
	}
}

// RaiseAutomationEvent delivers an automation event to matching subscribers.
func (t *Tree) RaiseAutomationEvent(source uia.Element, event uia.EventID) {
	for _, s := range t.matching(source, func(s *subscription) bool { return s.kind == "event" && s.event == event }) {
		h := s.automaton
		t.deliver(func() { h(source, event) })
	}
}

// RaisePropertyChanged delivers a property-change event to matching subscribers.
func (t *Tree) RaisePropertyChanged(source uia.Element, prop uia.PropertyID, value ldvalue.Value) {
	for _, s := range t.matching(source, func(s *subscription) bool { return s.kind == "property" && s.props[prop] }) {
		h := s.property
		t.deliver(func() { h(source, prop, value) })
	}
}

// RaiseStructureChanged delivers a structure-change event to matching subscribers.
func (t *Tree) RaiseStructureChanged(source uia.Element, change uia.StructureChangeType) {
	for _, s := range t.matching(source, func(s *subscription) bool { return s.kind == "structure" }) {
		h := s.structure
		t.deliver(func() { h(source, change) })
	}
}

// RaiseFocusChanged delivers a focus-change event to every focus subscriber.
func (t *Tree) RaiseFocusChanged(source uia.Element) {
	for _, s := range t.matching(source, func(s *subscription) bool { return s.kind == "focus" }) {
		h := s.focus
		t.deliver(func() { h(source) })
	}
}

// FromPoint returns the deepest element whose bounding rectangle contains the point.
func (t *Tree) FromPoint(pt uia.Point) (uia.Element, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	found := t.root
	for {
		var next *node
		for _, c := range found.children {
			r := uia.RectFromValue(c.props[uia.PropertyBoundingRectangle])
			if pt.X >= r.Left && pt.X < r.Left+r.Width && pt.Y >= r.Top && pt.Y < r.Top+r.Height {
				next = c
			}
		}
		if next == nil {
			return ref(found), nil
		}
		found = next
	}
}

// FromHandle implements uia.Locator.
func (t *Tree) FromHandle(hwnd int) (uia.Element, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	for _, n := range t.nodes {
		if n.hwnd == hwnd && !n.removed {
			return ref(n), nil
		}
	}
	return uia.Element{}, uia.ErrElementNotAvailable
}

// FocusedElement implements uia.Locator.
func (t *Tree) FocusedElement() (uia.Element, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.focused == nil {
		return ref(t.root), nil
	}
	return ref(t.focused), nil
}

// SetFocus moves the focus and raises a focus-change event.
func (t *Tree) SetFocus(el uia.Element) error {
	t.lock.Lock()
	n, err := t.lookup(el)
	if err != nil {
		t.lock.Unlock()
		return err
	}
	changed := t.focused != n
	t.focused = n
	t.lock.Unlock()
	if changed {
		t.RaiseFocusChanged(el)
	}
	return nil
}

func (t *Tree) logInput(format string, args ...interface{}) {
	t.lock.Lock()
	t.inputLog = append(t.inputLog, fmt.Sprintf(format, args...))
	t.lock.Unlock()
}

// KeyDown implements uia.InputInjector.
func (t *Tree) KeyDown(key uia.Key) error {
	t.logInput("down %s", key)
	return nil
}

// KeyUp implements uia.InputInjector.
func (t *Tree) KeyUp(key uia.Key) error {
	t.logInput("up %s", key)
	return nil
}

// MouseMove implements uia.InputInjector.
func (t *Tree) MouseMove(pt uia.Point) error {
	t.logInput("move %g,%g", pt.X, pt.Y)
	return nil
}

// MouseDown implements uia.InputInjector.
func (t *Tree) MouseDown(button uia.MouseButton) error {
	t.logInput("mousedown %s", button)
	return nil
}

// MouseUp implements uia.InputInjector.
func (t *Tree) MouseUp(button uia.MouseButton) error {
	t.logInput("mouseup %s", button)
	return nil
}
