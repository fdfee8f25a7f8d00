package uia

import (
	"errors"
	"fmt"
)

var (
	// ErrElementNotAvailable means the element has vanished from the tree. The harness treats it
	// as unrecoverable for the current test.
	ErrElementNotAvailable = errors.New("element is not available")

	// ErrPatternNotSupported is returned when an element does not implement the requested pattern.
	ErrPatternNotSupported = errors.New("pattern not supported")

	// ErrPropertyNotSupported is the "not supported" sentinel for property retrieval.
	ErrPropertyNotSupported = errors.New("property not supported")

	// ErrNotCached is returned when cached information is requested from a pattern that was
	// obtained as a live (current) pattern.
	ErrNotCached = errors.New("pattern was not obtained from the cache")
)

// Element is a reference to a node in the automation tree. It carries identity only; two
// Elements are the same node if and only if their runtime IDs are equal.
type Element struct {
	RuntimeID string `json:"runtimeId"`
}

// IsZero returns true if this is an empty reference.
func (e Element) IsZero() bool {
	return e.RuntimeID == ""
}

func (e Element) String() string {
	if e.RuntimeID == "" {
		return "<none>"
	}
	return "[" + e.RuntimeID + "]"
}

// PropertyID identifies an automation property, for instance "BoundingRectangle".
type PropertyID string

// PatternID identifies a control pattern, for instance "ExpandCollapsePattern".
type PatternID string

// EventID identifies an automation event, for instance "Invoke_Invoked".
type EventID string

const (
	PropertyName                 PropertyID = "Name"
	PropertyAutomationID         PropertyID = "AutomationId"
	PropertyClassName            PropertyID = "ClassName"
	PropertyControlType          PropertyID = "ControlType"
	PropertyLocalizedControlType PropertyID = "LocalizedControlType"
	PropertyBoundingRectangle    PropertyID = "BoundingRectangle"
	PropertyIsContentElement     PropertyID = "IsContentElement"
	PropertyIsControlElement     PropertyID = "IsControlElement"
	PropertyIsEnabled            PropertyID = "IsEnabled"
	PropertyIsKeyboardFocusable  PropertyID = "IsKeyboardFocusable"
	PropertyHasKeyboardFocus     PropertyID = "HasKeyboardFocus"
	PropertyNativeWindowHandle   PropertyID = "NativeWindowHandle"

	PropertyExpandCollapseState PropertyID = "ExpandCollapsePattern.ExpandCollapseState"

	PropertyTransformCanMove   PropertyID = "TransformPattern.CanMove"
	PropertyTransformCanResize PropertyID = "TransformPattern.CanResize"
	PropertyTransformCanRotate PropertyID = "TransformPattern.CanRotate"

	PropertyRangeValueValue       PropertyID = "RangeValuePattern.Value"
	PropertyRangeValueMinimum     PropertyID = "RangeValuePattern.Minimum"
	PropertyRangeValueMaximum     PropertyID = "RangeValuePattern.Maximum"
	PropertyRangeValueSmallChange PropertyID = "RangeValuePattern.SmallChange"
	PropertyRangeValueLargeChange PropertyID = "RangeValuePattern.LargeChange"
	PropertyRangeValueIsReadOnly  PropertyID = "RangeValuePattern.IsReadOnly"

	PropertyWindowVisualState PropertyID = "WindowPattern.WindowVisualState"
)

const (
	PatternExpandCollapse PatternID = "ExpandCollapsePattern"
	PatternTransform      PatternID = "TransformPattern"
	PatternRangeValue     PatternID = "RangeValuePattern"
	PatternWindow         PatternID = "WindowPattern"
)

const (
	EventInvoked          EventID = "Invoke_Invoked"
	EventMenuOpened       EventID = "MenuOpened"
	EventMenuClosed       EventID = "MenuClosed"
	EventWindowOpened     EventID = "Window_WindowOpened"
	EventWindowClosed     EventID = "Window_WindowClosed"
	EventToolTipOpened    EventID = "ToolTipOpened"
	EventToolTipClosed    EventID = "ToolTipClosed"
	EventElementSelected  EventID = "SelectionItem_ElementSelected"
	EventInvalidated      EventID = "Selection_Invalidated"
	EventTextSelectionChg EventID = "Text_TextSelectionChanged"
)

// TreeScope determines which elements relative to a subscription target raise events.
type TreeScope int

const (
	ScopeElement     TreeScope = 1
	ScopeChildren    TreeScope = 2
	ScopeDescendants TreeScope = 4
	ScopeSubtree     TreeScope = ScopeElement | ScopeChildren | ScopeDescendants
)

func (s TreeScope) String() string {
	switch s {
	case ScopeElement:
		return "Element"
	case ScopeChildren:
		return "Children"
	case ScopeDescendants:
		return "Descendants"
	case ScopeSubtree:
		return "Subtree"
	default:
		return fmt.Sprintf("TreeScope(%d)", int(s))
	}
}

// View is one of the filtered projections of the raw element tree.
type View string

const (
	ViewRaw     View = "raw"
	ViewControl View = "control"
	ViewContent View = "content"
)

// Direction is a tree navigation direction.
type Direction string

const (
	DirectionParent          Direction = "parent"
	DirectionFirstChild      Direction = "firstChild"
	DirectionLastChild       Direction = "lastChild"
	DirectionNextSibling     Direction = "nextSibling"
	DirectionPreviousSibling Direction = "previousSibling"
)

// StructureChangeType describes a structure-change event.
type StructureChangeType string

const (
	StructureChildAdded          StructureChangeType = "ChildAdded"
	StructureChildRemoved        StructureChangeType = "ChildRemoved"
	StructureChildrenInvalidated StructureChangeType = "ChildrenInvalidated"
	StructureChildrenBulkAdded   StructureChangeType = "ChildrenBulkAdded"
	StructureChildrenBulkRemoved StructureChangeType = "ChildrenBulkRemoved"
	StructureChildrenReordered   StructureChangeType = "ChildrenReordered"
)

// ExpandCollapseState is the value of PropertyExpandCollapseState.
type ExpandCollapseState string

const (
	Collapsed         ExpandCollapseState = "Collapsed"
	Expanded          ExpandCollapseState = "Expanded"
	PartiallyExpanded ExpandCollapseState = "PartiallyExpanded"
	LeafNode          ExpandCollapseState = "LeafNode"
)

// WindowVisualState is the value of PropertyWindowVisualState.
type WindowVisualState string

const (
	WindowNormal    WindowVisualState = "Normal"
	WindowMaximized WindowVisualState = "Maximized"
	WindowMinimized WindowVisualState = "Minimized"
)

// Key is a virtual key name understood by the input injector, for instance "Enter" or "A".
type Key string

// MouseButton identifies a mouse button.
type MouseButton string

const (
	MouseLeft  MouseButton = "left"
	MouseRight MouseButton = "right"
)

// Point is a screen coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a screen rectangle.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsEmpty returns true for a rectangle with no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

func (r Rect) String() string {
	return fmt.Sprintf("{%g,%g %gx%g}", r.Left, r.Top, r.Width, r.Height)
}
