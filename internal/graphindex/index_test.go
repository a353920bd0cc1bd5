package graphindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/layergraph/internal/config"
)

// layer builds a LayerConfig whose first inbound group lists inputs.
func layer(name, class string, inputs ...string) config.LayerConfig {
	lc := config.LayerConfig{Name: name, ClassName: class, Config: config.Attributes{}}
	if len(inputs) > 0 {
		group := make([]config.InboundRef, 0, len(inputs))
		for _, in := range inputs {
			group = append(group, config.InboundRef{Layer: in})
		}
		lc.InboundNodes = [][]config.InboundRef{group}
	}
	return lc
}

// providerOf wraps layers in an in-memory model.
func providerOf(t *testing.T, layers ...config.LayerConfig) *config.Model {
	t.Helper()
	m := config.NewModel("test")
	for _, lc := range layers {
		require.NoError(t, m.AddLayer(lc, nil))
	}
	return m
}

func TestInputStackIndices_Diamond(t *testing.T) {
	layers := []config.LayerConfig{
		layer("A", "InputLayer"),
		layer("B", "Activation", "A"),
		layer("C", "Add", "B", "A"),
	}
	idx, err := New(layers)
	require.NoError(t, err)

	got, err := idx.InputStackIndices("C")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)

	// Edge order must not matter.
	layers[2] = layer("C", "Add", "A", "B")
	idx, err = New(layers)
	require.NoError(t, err)
	got, err = idx.InputStackIndices("C")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestInputStackIndices_MultiBranchOrdering(t *testing.T) {
	// 0 in
	// 1 left_a <- in     4 right_a <- in
	// 2 left_b <- left_a 5 right_b <- right_a
	// 3 unrelated <- in
	// 6 merge <- left_b, right_b
	// 7 head <- merge
	// 8 other_head <- unrelated
	layers := []config.LayerConfig{
		layer("in", "InputLayer"),
		layer("left_a", "Conv2D", "in"),
		layer("left_b", "Activation", "left_a"),
		layer("unrelated", "Conv2D", "in"),
		layer("right_a", "Conv2D", "in"),
		layer("right_b", "Activation", "right_a"),
		layer("merge", "Concatenate", "left_b", "right_b"),
		layer("head", "Dense", "merge"),
		layer("other_head", "Dense", "unrelated"),
	}
	idx, err := New(layers)
	require.NoError(t, err)

	got, err := idx.InputStackIndices("head")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 4, 5, 6, 7}, got)

	// Every producer of every member appears strictly before it.
	pos := make(map[string]int, len(got))
	for _, i := range got {
		pos[layers[i].Name] = i
	}
	for _, i := range got {
		for _, in := range layers[i].InboundNames() {
			producer, ok := pos[in]
			require.True(t, ok, "producer %q of %q missing from closure", in, layers[i].Name)
			assert.Less(t, producer, i)
		}
	}

	got, err = idx.InputStackIndices("other_head")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 8}, got)
}

func TestInputStackIndices_BaseCase(t *testing.T) {
	idx, err := New([]config.LayerConfig{layer("in", "InputLayer"), layer("x", "Activation", "in")})
	require.NoError(t, err)

	got, err := idx.InputStackIndices("in")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, got)
}

func TestInputStackIndices_Idempotent(t *testing.T) {
	idx, err := New([]config.LayerConfig{
		layer("a", "InputLayer"),
		layer("b", "Activation", "a"),
		layer("c", "Activation", "b"),
	})
	require.NoError(t, err)

	first, err := idx.InputStackIndices("c")
	require.NoError(t, err)
	second, err := idx.InputStackIndices("c")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInputStackIndices_UnknownName(t *testing.T) {
	idx, err := New([]config.LayerConfig{layer("a", "InputLayer")})
	require.NoError(t, err)

	_, err = idx.InputStackIndices("nope")
	assert.ErrorIs(t, err, ErrNodeNameNotFound)
}

func TestInputStackIndices_Cycle(t *testing.T) {
	testCases := []struct {
		name   string
		layers []config.LayerConfig
		target string
	}{
		{
			name:   "self reference",
			layers: []config.LayerConfig{layer("a", "Activation", "a")},
			target: "a",
		},
		{
			name: "two node loop",
			layers: []config.LayerConfig{
				layer("a", "Activation", "b"),
				layer("b", "Activation", "a"),
			},
			target: "b",
		},
		{
			name: "loop upstream of target",
			layers: []config.LayerConfig{
				layer("in", "InputLayer"),
				layer("x", "Add", "in", "z"),
				layer("y", "Activation", "x"),
				layer("z", "Activation", "y"),
				layer("head", "Dense", "z"),
			},
			target: "head",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			idx, err := New(tc.layers)
			require.NoError(t, err)

			_, err = idx.InputStackIndices(tc.target)
			require.ErrorIs(t, err, ErrCyclicGraph)

			var cyc *CyclicGraphError
			require.ErrorAs(t, err, &cyc)
			require.GreaterOrEqual(t, len(cyc.Path), 2)
			assert.Equal(t, cyc.Path[0], cyc.Path[len(cyc.Path)-1])
		})
	}
}

func TestNew_RejectsMalformedGraphs(t *testing.T) {
	_, err := New([]config.LayerConfig{layer("a", "InputLayer"), layer("a", "Dense")})
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = New([]config.LayerConfig{layer("a", "Dense", "ghost")})
	assert.ErrorIs(t, err, ErrNodeNameNotFound)
}

func TestFromEntries(t *testing.T) {
	idx, err := FromEntries(map[string]Entry{
		"A": {Index: 10},
		"B": {Index: 20, InboundNames: []string{"A"}},
		"C": {Index: 30, InboundNames: []string{"A", "B"}},
		"D": {Index: 40, InboundNames: []string{"A"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, idx.Len())

	got, err := idx.InputStackIndices("C")
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30}, got)

	i, ok := idx.Lookup("D")
	assert.True(t, ok)
	assert.Equal(t, 40, i)

	_, err = FromEntries(map[string]Entry{"A": {Index: 1}, "B": {Index: 1}})
	assert.Error(t, err)
}

func TestSubgraph(t *testing.T) {
	layers := []config.LayerConfig{
		layer("in", "InputLayer"),
		layer("a", "Conv2D", "in"),
		layer("b", "Conv2D", "in"),
		layer("c", "Activation", "a"),
	}

	sub, err := Subgraph(layers, "c")
	require.NoError(t, err)
	names := make([]string, 0, len(sub))
	for _, lc := range sub {
		names = append(names, lc.Name)
	}
	assert.Equal(t, []string{"in", "a", "c"}, names)
}

func TestIndexInModel_Boundary(t *testing.T) {
	p := providerOf(t,
		layer("in", "InputLayer"),
		layer("fc1", "Dense", "in"),
		layer("act", "Activation", "fc1"),
		layer("fc2", "Dense", "act"),
	)

	i, err := IndexInModel(p, "Dense", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	i, err = IndexInModel(p, "Dense", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, i)

	_, err = IndexInModel(p, "Dense", 2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.NotErrorIs(t, err, ErrNodeTypeNotFound)

	_, err = IndexInModel(p, "Dense", -1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	for _, nth := range []int{0, 5} {
		_, err = IndexInModel(p, "Conv2D", nth)
		assert.ErrorIs(t, err, ErrNodeTypeNotFound)
		assert.NotErrorIs(t, err, ErrIndexOutOfRange)
	}
}

func TestNameIndex(t *testing.T) {
	layers := []config.LayerConfig{layer("a", "InputLayer"), layer("b", "Dense", "a")}

	i, err := NameIndex(layers, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = NameIndex(layers, "z")
	assert.ErrorIs(t, err, ErrNodeNameNotFound)
}
