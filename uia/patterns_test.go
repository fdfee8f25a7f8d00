package uia_test

import (
	"errors"
	"testing"

	"github.com/launchdarkly/uia-contract-tests/uia"
	"github.com/launchdarkly/uia-contract-tests/uia/uiafake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestPatternNotSupported(t *testing.T) {
	tree := uiafake.NewTree()
	el := tree.AddChild(tree.Root(), "Label", "text")
	_, err := uia.GetTransformPattern(tree, el, false)
	assert.True(t, errors.Is(err, uia.ErrPatternNotSupported))
}

func TestTransformPattern(t *testing.T) {
	tree := uiafake.NewTree()
	el := tree.AddChild(tree.Root(), "Window", "window")
	tree.SetPropertyQuietly(el, uia.PropertyTransformCanMove, ldvalue.Bool(true))
	tree.SetPropertyQuietly(el, uia.PropertyTransformCanResize, ldvalue.Bool(false))
	tree.AddPattern(el, uia.PatternTransform, map[string]uiafake.PatternMethod{
		"Move": func(tree *uiafake.Tree, el uia.Element, args []ldvalue.Value) error {
			r, _ := uia.BoundingRectangle(tree, el)
			r.Left, r.Top = args[0].Float64Value(), args[1].Float64Value()
			tree.SetProperty(el, uia.PropertyBoundingRectangle, uia.RectValue(r))
			return nil
		},
	})

	p, err := uia.GetTransformPattern(tree, el, false)
	require.NoError(t, err)
	assert.Equal(t, el, p.Element())

	canMove, err := p.Current().CanMove()
	require.NoError(t, err)
	assert.True(t, canMove)
	canResize, err := p.Current().CanResize()
	require.NoError(t, err)
	assert.False(t, canResize)
	_, err = p.Current().CanRotate()
	assert.True(t, errors.Is(err, uia.ErrPropertyNotSupported))

	require.NoError(t, p.Move(15, 25))
	r, err := uia.BoundingRectangle(tree, el)
	require.NoError(t, err)
	assert.Equal(t, uia.Rect{Left: 15, Top: 25, Width: 100, Height: 20}, r)

	assert.Error(t, p.Resize(1, 1))
}

func TestCachedInformationRequiresCachedPattern(t *testing.T) {
	tree := uiafake.NewTree()
	el := tree.AddChild(tree.Root(), "Tree item", "treeitem")
	tree.SetPropertyQuietly(el, uia.PropertyExpandCollapseState, ldvalue.String(string(uia.Collapsed)))
	tree.AddPattern(el, uia.PatternExpandCollapse, nil)

	live, err := uia.GetExpandCollapsePattern(tree, el, false)
	require.NoError(t, err)
	_, err = live.Cached()
	assert.True(t, errors.Is(err, uia.ErrNotCached))

	cached, err := uia.GetExpandCollapsePattern(tree, el, true)
	require.NoError(t, err)
	info, err := cached.Cached()
	require.NoError(t, err)
	_, err = info.ExpandCollapseState()
	assert.True(t, errors.Is(err, uia.ErrPropertyNotSupported))

	tree.CacheProperties(el, uia.PropertyExpandCollapseState)
	state, err := info.ExpandCollapseState()
	require.NoError(t, err)
	assert.Equal(t, uia.Collapsed, state)

	tree.SetPropertyQuietly(el, uia.PropertyExpandCollapseState, ldvalue.String(string(uia.Expanded)))
	state, _ = info.ExpandCollapseState()
	assert.Equal(t, uia.Collapsed, state)
	state, _ = cached.Current().ExpandCollapseState()
	assert.Equal(t, uia.Expanded, state)
}

func TestRangeValuePattern(t *testing.T) {
	tree := uiafake.NewTree()
	el := tree.AddChild(tree.Root(), "Volume", "slider")
	tree.SetPropertyQuietly(el, uia.PropertyRangeValueValue, ldvalue.Float64(10))
	tree.SetPropertyQuietly(el, uia.PropertyRangeValueMaximum, ldvalue.Float64(100))
	tree.AddPattern(el, uia.PatternRangeValue, map[string]uiafake.PatternMethod{
		"SetValue": func(tree *uiafake.Tree, el uia.Element, args []ldvalue.Value) error {
			tree.SetProperty(el, uia.PropertyRangeValueValue, args[0])
			return nil
		},
	})
	p, err := uia.GetRangeValuePattern(tree, el, false)
	require.NoError(t, err)
	require.NoError(t, p.SetValue(42))
	v, err := p.Current().Value()
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
	max, err := p.Current().Maximum()
	require.NoError(t, err)
	assert.Equal(t, 100.0, max)
}

func TestRectValueRoundTrip(t *testing.T) {
	r := uia.Rect{Left: 1, Top: 2, Width: 3, Height: 4}
	assert.Equal(t, r, uia.RectFromValue(uia.RectValue(r)))
	assert.Equal(t, uia.Point{X: 2.5, Y: 4}, r.Center())
	assert.True(t, uia.RectFromValue(ldvalue.String("x")).IsEmpty())
}
