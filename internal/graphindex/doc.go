// Package graphindex locates layers in a model's ordered layer list and
// resolves dependency closures for partial-graph extraction.
//
// Layers reference their producers by name. Index resolves those names once
// into integer slots of an arena, so closure queries walk plain integers.
// The walk is iterative with three-colour marking: a reference back into the
// current path is reported as a *CyclicGraphError instead of recursing
// without end.
package graphindex
