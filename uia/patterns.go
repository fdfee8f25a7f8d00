package uia

import (
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// PatternProvider is the subset of Provider that pattern wrappers need.
type PatternProvider interface {
	PropertySource
	PatternSource
}

// patternBase is shared by all the pattern wrappers. A wrapper remembers whether it was
// obtained from the cache; only cached wrappers can hand out cached property information.
type patternBase struct {
	provider PatternProvider
	element  Element
	pattern  PatternID
	cached   bool
}

func getPattern(p PatternProvider, el Element, pattern PatternID, cached bool) (patternBase, error) {
	if err := p.GetPattern(el, pattern, cached); err != nil {
		return patternBase{}, err
	}
	return patternBase{provider: p, element: el, pattern: pattern, cached: cached}, nil
}

func (b patternBase) Element() Element { return b.element }

func (b patternBase) invoke(method string, args ...ldvalue.Value) error {
	return b.provider.InvokePattern(b.element, b.pattern, method, args...)
}

func (b patternBase) info(cached bool) (propertyInfo, error) {
	if cached && !b.cached {
		return propertyInfo{}, ErrNotCached
	}
	return propertyInfo{provider: b.provider, element: b.element, cached: cached}, nil
}

// propertyInfo is the property-group accessor behind Current and Cached.
type propertyInfo struct {
	provider PatternProvider
	element  Element
	cached   bool
}

func (i propertyInfo) get(prop PropertyID) (ldvalue.Value, error) {
	return i.provider.GetPropertyValue(i.element, prop, i.cached)
}

func (i propertyInfo) getBool(prop PropertyID) (bool, error) {
	v, err := i.get(prop)
	return v.BoolValue(), err
}

func (i propertyInfo) getFloat(prop PropertyID) (float64, error) {
	v, err := i.get(prop)
	return v.Float64Value(), err
}

func (i propertyInfo) getString(prop PropertyID) (string, error) {
	v, err := i.get(prop)
	return v.StringValue(), err
}

// TransformPattern wraps the transform pattern of an element.
type TransformPattern struct {
	patternBase
}

// TransformPatternInformation gives access to the transform pattern's properties.
type TransformPatternInformation struct {
	propertyInfo
}

// GetTransformPattern returns ErrPatternNotSupported if the element cannot be transformed.
func GetTransformPattern(p PatternProvider, el Element, cached bool) (*TransformPattern, error) {
	b, err := getPattern(p, el, PatternTransform, cached)
	if err != nil {
		return nil, err
	}
	return &TransformPattern{b}, nil
}

func (t *TransformPattern) Move(x, y float64) error {
	return t.invoke("Move", ldvalue.Float64(x), ldvalue.Float64(y))
}

func (t *TransformPattern) Resize(width, height float64) error {
	return t.invoke("Resize", ldvalue.Float64(width), ldvalue.Float64(height))
}

func (t *TransformPattern) Rotate(degrees float64) error {
	return t.invoke("Rotate", ldvalue.Float64(degrees))
}

func (t *TransformPattern) Current() TransformPatternInformation {
	i, _ := t.info(false)
	return TransformPatternInformation{i}
}

func (t *TransformPattern) Cached() (TransformPatternInformation, error) {
	i, err := t.info(true)
	return TransformPatternInformation{i}, err
}

func (i TransformPatternInformation) CanMove() (bool, error) {
	return i.getBool(PropertyTransformCanMove)
}

func (i TransformPatternInformation) CanResize() (bool, error) {
	return i.getBool(PropertyTransformCanResize)
}

func (i TransformPatternInformation) CanRotate() (bool, error) {
	return i.getBool(PropertyTransformCanRotate)
}

// ExpandCollapsePattern wraps the expand/collapse pattern of an element.
type ExpandCollapsePattern struct {
	patternBase
}

type ExpandCollapsePatternInformation struct {
	propertyInfo
}

func GetExpandCollapsePattern(p PatternProvider, el Element, cached bool) (*ExpandCollapsePattern, error) {
	b, err := getPattern(p, el, PatternExpandCollapse, cached)
	if err != nil {
		return nil, err
	}
	return &ExpandCollapsePattern{b}, nil
}

func (e *ExpandCollapsePattern) Expand() error   { return e.invoke("Expand") }
func (e *ExpandCollapsePattern) Collapse() error { return e.invoke("Collapse") }

func (e *ExpandCollapsePattern) Current() ExpandCollapsePatternInformation {
	i, _ := e.info(false)
	return ExpandCollapsePatternInformation{i}
}

func (e *ExpandCollapsePattern) Cached() (ExpandCollapsePatternInformation, error) {
	i, err := e.info(true)
	return ExpandCollapsePatternInformation{i}, err
}

func (i ExpandCollapsePatternInformation) ExpandCollapseState() (ExpandCollapseState, error) {
	s, err := i.getString(PropertyExpandCollapseState)
	return ExpandCollapseState(s), err
}

// RangeValuePattern wraps the range-value pattern of an element.
type RangeValuePattern struct {
	patternBase
}

type RangeValuePatternInformation struct {
	propertyInfo
}

func GetRangeValuePattern(p PatternProvider, el Element, cached bool) (*RangeValuePattern, error) {
	b, err := getPattern(p, el, PatternRangeValue, cached)
	if err != nil {
		return nil, err
	}
	return &RangeValuePattern{b}, nil
}

func (r *RangeValuePattern) SetValue(value float64) error {
	return r.invoke("SetValue", ldvalue.Float64(value))
}

func (r *RangeValuePattern) Current() RangeValuePatternInformation {
	i, _ := r.info(false)
	return RangeValuePatternInformation{i}
}

func (r *RangeValuePattern) Cached() (RangeValuePatternInformation, error) {
	i, err := r.info(true)
	return RangeValuePatternInformation{i}, err
}

func (i RangeValuePatternInformation) Value() (float64, error) {
	return i.getFloat(PropertyRangeValueValue)
}

func (i RangeValuePatternInformation) Minimum() (float64, error) {
	return i.getFloat(PropertyRangeValueMinimum)
}

func (i RangeValuePatternInformation) Maximum() (float64, error) {
	return i.getFloat(PropertyRangeValueMaximum)
}

func (i RangeValuePatternInformation) SmallChange() (float64, error) {
	return i.getFloat(PropertyRangeValueSmallChange)
}

func (i RangeValuePatternInformation) LargeChange() (float64, error) {
	return i.getFloat(PropertyRangeValueLargeChange)
}

func (i RangeValuePatternInformation) IsReadOnly() (bool, error) {
	return i.getBool(PropertyRangeValueIsReadOnly)
}

// WindowPattern wraps the window pattern of an element.
type WindowPattern struct {
	patternBase
}

type WindowPatternInformation struct {
	propertyInfo
}

func GetWindowPattern(p PatternProvider, el Element, cached bool) (*WindowPattern, error) {
	b, err := getPattern(p, el, PatternWindow, cached)
	if err != nil {
		return nil, err
	}
	return &WindowPattern{b}, nil
}

func (w *WindowPattern) SetWindowVisualState(state WindowVisualState) error {
	return w.invoke("SetWindowVisualState", ldvalue.String(string(state)))
}

func (w *WindowPattern) Current() WindowPatternInformation {
	i, _ := w.info(false)
	return WindowPatternInformation{i}
}

func (w *WindowPattern) Cached() (WindowPatternInformation, error) {
	i, err := w.info(true)
	return WindowPatternInformation{i}, err
}

func (i WindowPatternInformation) WindowVisualState() (WindowVisualState, error) {
	s, err := i.getString(PropertyWindowVisualState)
	return WindowVisualState(s), err
}
