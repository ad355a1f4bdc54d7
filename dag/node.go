package dag

// Func is a node's computation. It receives the node's dependency
// values keyed by dependency name and returns the node's output.
type Func func(inputs map[string]any) (any, error)

// PreFunc is a validation hook run before a node's Func with the fully
// gathered inputs mapping. Returning an error aborts the execution.
type PreFunc func(inputs map[string]any) error

// PostFunc is a validation hook run after a node's Func with the
// produced output. Returning an error aborts the execution.
type PostFunc func(output any) error

// Extractor derives a value from a source node's mapping output.
type Extractor func(outputs map[string]any) (any, error)

// Node is a single computation step in a pipeline.
type Node struct {
	// Name uniquely identifies the node within its pipeline.
	Name string
	// Func is the node's computation.
	Func Func
	// Dependencies lists the names this node consumes, in order.
	Dependencies []string
	// PreFuncs run before Func with the gathered inputs.
	PreFuncs []PreFunc
	// PostFuncs run after Func with the output.
	PostFuncs []PostFunc
	// Validate gates both hook lists for this node.
	Validate bool
	// Metadata carries free-form tags.
	Metadata map[string]any
	// Description is an optional human-readable summary.
	Description string
}

// clone returns a copy of the node sharing callables by reference.
func (n *Node) clone() *Node {
	c := &Node{
		Name:        n.Name,
		Func:        n.Func,
		Validate:    n.Validate,
		Description: n.Description,
	}
	c.Dependencies = append([]string(nil), n.Dependencies...)
	c.PreFuncs = append([]PreFunc(nil), n.PreFuncs...)
	c.PostFuncs = append([]PostFunc(nil), n.PostFuncs...)
	if n.Metadata != nil {
		c.Metadata = make(map[string]any, len(n.Metadata))
		for k, v := range n.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}
