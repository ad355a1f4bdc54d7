package dag

// PipelineOption configures a Pipeline at construction time.
type PipelineOption func(*Pipeline)

// WithGlobalValidate sets the pipeline-wide hook gate (default true).
func WithGlobalValidate(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.validate = enabled
	}
}

// WithObservers attaches execution observers to the pipeline.
func WithObservers(obs ...Observer) PipelineOption {
	return func(p *Pipeline) {
		p.observers = append(p.observers, obs...)
	}
}

// derivedSpec describes one derived child node of a multi-output node.
// Exactly one of Key or Extract is set.
type derivedSpec struct {
	Name    string
	Key     string
	Extract Extractor
}

// nodeSettings collects the optional AddNode parameters.
type nodeSettings struct {
	dependencies []string
	preFuncs     []PreFunc
	postFuncs    []PostFunc
	validate     *bool
	metadata     map[string]any
	description  string
	outputs      []derivedSpec
}

// NodeOption configures a node being added to a pipeline.
type NodeOption func(*nodeSettings)

// WithDependencies sets the node's dependency names, in order.
func WithDependencies(names ...string) NodeOption {
	return func(s *nodeSettings) {
		s.dependencies = append(s.dependencies, names...)
	}
}

// WithPreFuncs appends pre-execution hooks.
func WithPreFuncs(fns ...PreFunc) NodeOption {
	return func(s *nodeSettings) {
		s.preFuncs = append(s.preFuncs, fns...)
	}
}

// WithPostFuncs appends post-execution hooks.
func WithPostFuncs(fns ...PostFunc) NodeOption {
	return func(s *nodeSettings) {
		s.postFuncs = append(s.postFuncs, fns...)
	}
}

// WithValidate toggles hook execution for this node (default true).
func WithValidate(enabled bool) NodeOption {
	return func(s *nodeSettings) {
		s.validate = &enabled
	}
}

// WithMetadata attaches free-form tags to the node.
func WithMetadata(metadata map[string]any) NodeOption {
	return func(s *nodeSettings) {
		s.metadata = metadata
	}
}

// WithDescription sets the node's human-readable summary.
func WithDescription(description string) NodeOption {
	return func(s *nodeSettings) {
		s.description = description
	}
}

// WithOutputs declares derived child nodes, one per name. The node's
// Func must return a map[string]any; each child extracts the
// like-named key.
func WithOutputs(names ...string) NodeOption {
	return func(s *nodeSettings) {
		for _, name := range names {
			s.outputs = append(s.outputs, derivedSpec{Name: name, Key: name})
		}
	}
}

// WithOutputKey declares a derived child node extracting the given key
// from the node's mapping output.
func WithOutputKey(name, key string) NodeOption {
	return func(s *nodeSettings) {
		s.outputs = append(s.outputs, derivedSpec{Name: name, Key: key})
	}
}

// WithOutputFunc declares a derived child node computed by applying fn
// to the node's mapping output.
func WithOutputFunc(name string, fn Extractor) NodeOption {
	return func(s *nodeSettings) {
		s.outputs = append(s.outputs, derivedSpec{Name: name, Extract: fn})
	}
}
