// Package extract converts the layers of a model provider into portable
// records.
//
// Every supported layer class maps to one Kind; every Kind has one typed Body
// built by an exhaustive switch in extractBody. A Record pairs the body with
// the layer's name and the names of the layers feeding it, and flattens into
// the mapping that is serialized:
//
//	{"type": "dense", "name": "fc", "input_names": ["pool"],
//	 "weights": [[...]], "offset": null, "activation_function": "softmax"}
//
// Fields holding optional tensors (bias, offset) are always present and are
// null when the layer was built without them.
package extract
