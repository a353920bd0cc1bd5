package graphindex

import (
	"fmt"
	"sort"

	"github.com/vk/layergraph/internal/config"
)

// Entry is the per-layer view the resolver needs: the layer's position in
// the original graph and the names of the layers feeding it.
type Entry struct {
	Index        int
	InboundNames []string
}

// node is one arena slot. Edges are arena slots, resolved once at build time.
type node struct {
	name    string
	index   int
	inbound []int
}

// Index is a read-only arena of layers with name references resolved to
// integer slots. It is safe for concurrent queries.
type Index struct {
	nodes  []node
	byName map[string]int
}

// New builds an index over an ordered layer list; each layer's index is its
// position in the list.
func New(layers []config.LayerConfig) (*Index, error) {
	entries := make(map[string]Entry, len(layers))
	for i, lc := range layers {
		if _, dup := entries[lc.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, lc.Name)
		}
		entries[lc.Name] = Entry{Index: i, InboundNames: lc.InboundNames()}
	}
	return FromEntries(entries)
}

// FromEntries builds an index from a name-keyed mapping. Every inbound name
// must resolve to another entry, and indices must be distinct.
func FromEntries(entries map[string]Entry) (*Index, error) {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return entries[names[i]].Index < entries[names[j]].Index
	})

	idx := &Index{
		nodes:  make([]node, len(names)),
		byName: make(map[string]int, len(names)),
	}
	for slot, name := range names {
		e := entries[name]
		if slot > 0 && idx.nodes[slot-1].index == e.Index {
			return nil, fmt.Errorf("layers %q and %q share index %d", idx.nodes[slot-1].name, name, e.Index)
		}
		idx.nodes[slot] = node{name: name, index: e.Index}
		idx.byName[name] = slot
	}

	for slot, name := range names {
		inbound := entries[name].InboundNames
		if len(inbound) == 0 {
			continue
		}
		edges := make([]int, 0, len(inbound))
		for _, in := range inbound {
			target, ok := idx.byName[in]
			if !ok {
				return nil, fmt.Errorf("%w: %q referenced by %q", ErrNodeNameNotFound, in, name)
			}
			edges = append(edges, target)
		}
		idx.nodes[slot].inbound = edges
	}
	return idx, nil
}

// Len returns the number of layers in the index.
func (x *Index) Len() int {
	return len(x.nodes)
}

// Lookup returns the original index of the named layer.
func (x *Index) Lookup(name string) (int, bool) {
	slot, ok := x.byName[name]
	if !ok {
		return 0, false
	}
	return x.nodes[slot].index, true
}

const (
	white = iota // unvisited
	grey         // on the current path
	black        // closed
)

// frame is one level of the explicit DFS stack.
type frame struct {
	slot int
	next int
}

// InputStackIndices returns the indices of every layer needed to compute the
// named layer, itself included, in ascending order without duplicates.
// Because the source graph is topologically ordered, replaying the returned
// indices in order evaluates every producer before its consumers.
//
// The walk is iterative and fails with *CyclicGraphError rather than looping
// when the references form a cycle. Results are not cached.
func (x *Index) InputStackIndices(name string) ([]int, error) {
	start, ok := x.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNameNotFound, name)
	}

	color := make([]uint8, len(x.nodes))
	var closure []int
	stack := []frame{{slot: start}}
	color[start] = grey

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		n := x.nodes[top.slot]
		if top.next == len(n.inbound) {
			color[top.slot] = black
			closure = append(closure, n.index)
			stack = stack[:len(stack)-1]
			continue
		}

		dep := n.inbound[top.next]
		top.next++
		switch color[dep] {
		case white:
			color[dep] = grey
			stack = append(stack, frame{slot: dep})
		case grey:
			return nil, x.cycleError(stack, dep)
		}
	}

	sort.Ints(closure)
	return closure, nil
}

// cycleError reports the cycle closed by the edge into dep. Walking the stack
// from the top visits producers before their consumers.
func (x *Index) cycleError(stack []frame, dep int) error {
	path := []string{}
	for i := len(stack) - 1; i >= 0; i-- {
		path = append(path, x.nodes[stack[i].slot].name)
		if stack[i].slot == dep {
			break
		}
	}
	path = append(path, path[0])
	return &CyclicGraphError{Path: path}
}

// Subgraph returns the layers needed to compute the named layer, in their
// original order, for partial-graph extraction.
func Subgraph(layers []config.LayerConfig, name string) ([]config.LayerConfig, error) {
	idx, err := New(layers)
	if err != nil {
		return nil, err
	}
	indices, err := idx.InputStackIndices(name)
	if err != nil {
		return nil, err
	}
	out := make([]config.LayerConfig, 0, len(indices))
	for _, i := range indices {
		out = append(out, layers[i].Clone())
	}
	return out, nil
}
