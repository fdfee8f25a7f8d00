package uia

import (
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Provider is everything the harness consumes from the accessibility tree.
type Provider interface {
	TreeWalker
	PropertySource
	PatternSource
	EventSource
	Locator
}

// TreeWalker navigates the tree. The second return value is false if there is no element in
// that direction, for instance when asking for the parent of the root.
type TreeWalker interface {
	Navigate(el Element, dir Direction, view View) (Element, bool, error)
}

// PropertySource retrieves property values, either live or from the element's cache.
//
// A property that the element does not support yields ErrPropertyNotSupported.
type PropertySource interface {
	GetPropertyValue(el Element, prop PropertyID, cached bool) (ldvalue.Value, error)
}

// PatternSource checks for and invokes control patterns.
type PatternSource interface {
	// GetPattern returns ErrPatternNotSupported if the element does not implement the pattern.
	GetPattern(el Element, pattern PatternID, cached bool) error
	InvokePattern(el Element, pattern PatternID, method string, args ...ldvalue.Value) error
}

// AutomationEventHandler receives generic automation events.
type AutomationEventHandler func(source Element, event EventID)

// PropertyChangedHandler receives property-change events.
type PropertyChangedHandler func(source Element, prop PropertyID, newValue ldvalue.Value)

// StructureChangedHandler receives structure-change events.
type StructureChangedHandler func(source Element, change StructureChangeType)

// FocusChangedHandler receives focus-change events.
type FocusChangedHandler func(source Element)

// EventSource registers event handlers. Handlers are called asynchronously, possibly on a
// different goroutine for each call.
type EventSource interface {
	AddAutomationEventHandler(event EventID, el Element, scope TreeScope, handler AutomationEventHandler) (Subscription, error)
	AddPropertyChangedHandler(el Element, scope TreeScope, props []PropertyID, handler PropertyChangedHandler) (Subscription, error)
	AddStructureChangedHandler(el Element, scope TreeScope, handler StructureChangedHandler) (Subscription, error)
	AddFocusChangedHandler(handler FocusChangedHandler) (Subscription, error)
}

// Subscription is a live event registration.
type Subscription interface {
	// Remove unregisters the handler. After Remove returns, the handler is not called again.
	Remove() error
}

// Locator finds elements by other means than tree navigation.
type Locator interface {
	FromPoint(pt Point) (Element, error)
	FromHandle(hwnd int) (Element, error)
	FocusedElement() (Element, error)
	SetFocus(el Element) error
}

// InputInjector synthesizes keyboard and mouse input. It is fire-and-forget: nothing is
// returned except errors from the injection itself.
type InputInjector interface {
	KeyDown(key Key) error
	KeyUp(key Key) error
	MouseMove(pt Point) error
	MouseDown(button MouseButton) error
	MouseUp(button MouseButton) error
}

// IsContentElement returns true if the element is part of the content view. Elements that
// are only in the control view are not required to raise property-change events.
func IsContentElement(p PropertySource, el Element) (bool, error) {
	v, err := p.GetPropertyValue(el, PropertyIsContentElement, false)
	if err != nil {
		return false, err
	}
	return v.BoolValue(), nil
}

// BoundingRectangle reads PropertyBoundingRectangle as a Rect.
func BoundingRectangle(p PropertySource, el Element) (Rect, error) {
	v, err := p.GetPropertyValue(el, PropertyBoundingRectangle, false)
	if err != nil {
		return Rect{}, err
	}
	return RectFromValue(v), nil
}

// RectValue encodes a Rect the way providers report PropertyBoundingRectangle.
func RectValue(r Rect) ldvalue.Value {
	return ldvalue.ObjectBuild().
		Set("left", ldvalue.Float64(r.Left)).
		Set("top", ldvalue.Float64(r.Top)).
		Set("width", ldvalue.Float64(r.Width)).
		Set("height", ldvalue.Float64(r.Height)).
		Build()
}

// RectFromValue decodes a PropertyBoundingRectangle value. Anything that is not an object
// decodes as an empty Rect.
func RectFromValue(v ldvalue.Value) Rect {
	if v.Type() != ldvalue.ObjectType {
		return Rect{}
	}
	return Rect{
		Left:   v.GetByKey("left").Float64Value(),
		Top:    v.GetByKey("top").Float64Value(),
		Width:  v.GetByKey("width").Float64Value(),
		Height: v.GetByKey("height").Float64Value(),
	}
}
