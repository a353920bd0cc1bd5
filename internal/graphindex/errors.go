package graphindex

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic error checking via errors.Is().
var (
	// ErrNodeNameNotFound indicates a layer name absent from the graph.
	ErrNodeNameNotFound = errors.New("node name not found")

	// ErrNodeTypeNotFound indicates that no layer of a class exists.
	ErrNodeTypeNotFound = errors.New("node type not found")

	// ErrIndexOutOfRange indicates fewer layers of a class than requested.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrDuplicateName indicates two layers sharing a name.
	ErrDuplicateName = errors.New("duplicate node name")

	// ErrCyclicGraph indicates a dependency cycle.
	ErrCyclicGraph = errors.New("cyclic graph")
)

// CyclicGraphError lists the layers forming the detected cycle, starting and
// ending with the same name. Wraps ErrCyclicGraph.
type CyclicGraphError struct {
	Path []string
}

func (e *CyclicGraphError) Error() string {
	if len(e.Path) == 0 {
		return ErrCyclicGraph.Error()
	}
	return fmt.Sprintf("%s: %s", ErrCyclicGraph.Error(), strings.Join(e.Path, " -> "))
}

func (e *CyclicGraphError) Unwrap() error { return ErrCyclicGraph }
