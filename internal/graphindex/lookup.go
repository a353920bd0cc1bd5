package graphindex

import (
	"fmt"

	"github.com/vk/layergraph/internal/config"
)

// IndexInModel returns the position of the nth (zero-based) layer of the
// given class in the provider's layer list.
//
// It fails with ErrNodeTypeNotFound when no layer has that class, whatever
// nth is, and with ErrIndexOutOfRange when there are fewer than nth+1.
func IndexInModel(p config.Provider, className string, nth int) (int, error) {
	var matching []int
	for i, lc := range p.Layers() {
		if lc.ClassName == className {
			matching = append(matching, i)
		}
	}

	if len(matching) == 0 {
		return 0, fmt.Errorf("%w: %s not found in model", ErrNodeTypeNotFound, className)
	}
	if nth < 0 || nth >= len(matching) {
		return 0, fmt.Errorf("%w: requested %s #%d, model has %d", ErrIndexOutOfRange, className, nth, len(matching))
	}
	return matching[nth], nil
}

// NameIndex returns the position of the first layer with the given name.
func NameIndex(layers []config.LayerConfig, name string) (int, error) {
	for i, lc := range layers {
		if lc.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s not found in layer stack", ErrNodeNameNotFound, name)
}
