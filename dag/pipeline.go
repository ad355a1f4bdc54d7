package dag

import (
	"reflect"
	"sort"
	"strings"

	"github.com/raysim/pipekit/errors"
	"github.com/raysim/pipekit/util"
)

// Pipeline owns a set of named computation nodes and the DAG they
// induce. Dependency names that never become nodes are tracked as
// virtual inputs. Not safe for concurrent mutation.
type Pipeline struct {
	name      string
	nodes     map[string]*Node
	g         *graph
	virtual   map[string]bool
	validate  bool
	cache     map[string]any
	observers []Observer
}

// New creates an empty pipeline. Hook validation is enabled globally
// by default.
func New(name string, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		name:     name,
		nodes:    make(map[string]*Node),
		g:        newGraph(),
		virtual:  make(map[string]bool),
		validate: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the pipeline's identifier.
func (p *Pipeline) Name() string { return p.name }

// GlobalValidate reports whether hook execution is enabled globally.
func (p *Pipeline) GlobalValidate() bool { return p.validate }

// SetGlobalValidate toggles hook execution globally.
func (p *Pipeline) SetGlobalValidate(enabled bool) { p.validate = enabled }

// AddNode registers a computation step. Unknown dependency names
// become virtual inputs; a dependency naming an existing node becomes
// an edge. Adding a node under a virtual input's name promotes the
// virtual input. Re-adding an existing node replaces it only when it
// has no dependents. The operation is atomic: on any error the
// pipeline is left unchanged.
//
// Returns the pipeline to allow chained construction.
func (p *Pipeline) AddNode(name string, fn Func, opts ...NodeOption) (*Pipeline, error) {
	if strings.TrimSpace(name) == "" {
		return p, errors.InvalidInput("node name must not be empty")
	}
	if fn == nil {
		return p, errors.InvalidInput("node function must not be nil").WithDetail("node", name)
	}

	var settings nodeSettings
	for _, opt := range opts {
		opt(&settings)
	}

	seen := make(map[string]bool, len(settings.dependencies))
	for _, dep := range settings.dependencies {
		if strings.TrimSpace(dep) == "" {
			return p, errors.InvalidInput("dependency name must not be empty").WithDetail("node", name)
		}
		if seen[dep] {
			return p, errors.InvalidInput("duplicate dependency " + dep).WithDetail("node", name)
		}
		seen[dep] = true
		if dep == name {
			return p, errors.CycleDetected(name)
		}
	}

	derivedSeen := map[string]bool{name: true}
	for _, spec := range settings.outputs {
		if strings.TrimSpace(spec.Name) == "" {
			return p, errors.InvalidInput("output name must not be empty").WithDetail("node", name)
		}
		if derivedSeen[spec.Name] {
			return p, errors.InvalidInput("duplicate output " + spec.Name).WithDetail("node", name)
		}
		derivedSeen[spec.Name] = true
	}

	if _, ok := p.nodes[name]; ok {
		if deps := p.dependents(name); len(deps) > 0 {
			return p, errors.NodeConflict(name, deps)
		}
	}

	// Any cycle introduced by the new edges must pass through this
	// node, so it suffices to check whether a dependency is already
	// downstream of it.
	reach := p.g.reachableFrom(name)
	for _, dep := range settings.dependencies {
		if reach[dep] {
			return p, errors.CycleDetected(name)
		}
	}

	snap := p.snapshot()

	if _, ok := p.nodes[name]; ok {
		p.detachDependencies(name)
	}
	delete(p.virtual, name)
	p.g.ensure(name)

	for _, dep := range settings.dependencies {
		if _, isNode := p.nodes[dep]; !isNode && !p.virtual[dep] {
			p.g.ensure(dep)
			p.virtual[dep] = true
		}
		p.g.addEdge(dep, name)
	}

	validate := true
	if settings.validate != nil {
		validate = *settings.validate
	}
	p.nodes[name] = &Node{
		Name:         name,
		Func:         fn,
		Dependencies: append([]string(nil), settings.dependencies...),
		PreFuncs:     settings.preFuncs,
		PostFuncs:    settings.postFuncs,
		Validate:     validate,
		Metadata:     settings.metadata,
		Description:  settings.description,
	}

	for _, spec := range settings.outputs {
		if err := p.addDerived(name, spec); err != nil {
			p.restore(snap)
			return p, err
		}
	}

	return p, nil
}

// addDerived installs one child node extracting a value from the
// source node's mapping output.
func (p *Pipeline) addDerived(source string, spec derivedSpec) error {
	if _, ok := p.nodes[spec.Name]; ok {
		return errors.InvalidInput("output " + spec.Name + " collides with an existing node").
			WithDetail("node", source)
	}
	if p.g.reachableFrom(spec.Name)[source] {
		return errors.CycleDetected(spec.Name)
	}

	extract := spec.Extract
	key := spec.Key
	child := spec.Name
	fn := func(inputs map[string]any) (any, error) {
		m, ok := inputs[source].(map[string]any)
		if !ok {
			return nil, errors.InvalidInput("node " + source + " did not return a mapping").
				WithDetail("node", child)
		}
		if extract != nil {
			return extract(m)
		}
		v, ok := m[key]
		if !ok {
			return nil, errors.MissingField(key).WithDetail("node", child)
		}
		return v, nil
	}

	delete(p.virtual, child)
	p.g.ensure(child)
	p.g.addEdge(source, child)
	p.nodes[child] = &Node{
		Name:         child,
		Func:         fn,
		Dependencies: []string{source},
		Validate:     true,
	}
	return nil
}

// RemoveNode deletes a node. It fails when the name is not a node or
// when another node depends on it. Virtual inputs left without any
// dependent disappear.
func (p *Pipeline) RemoveNode(name string) error {
	if _, ok := p.nodes[name]; !ok {
		return errors.NodeNotFound(name)
	}
	if deps := p.dependents(name); len(deps) > 0 {
		return errors.NodeConflict(name, deps)
	}

	p.detachDependencies(name)
	p.g.remove(name)
	delete(p.nodes, name)
	return nil
}

// detachDependencies removes the incoming edges of name and prunes
// virtual inputs that no longer have dependents.
func (p *Pipeline) detachDependencies(name string) {
	for _, dep := range append([]string(nil), p.g.pred[name]...) {
		p.g.removeEdge(dep, name)
		if p.virtual[dep] && len(p.g.succ[dep]) == 0 {
			p.g.remove(dep)
			delete(p.virtual, dep)
		}
	}
}

// dependents returns the nodes that depend on name, sorted.
func (p *Pipeline) dependents(name string) []string {
	deps := append([]string(nil), p.g.succ[name]...)
	sort.Strings(deps)
	return deps
}

// GetNode returns the node registered under name.
func (p *Pipeline) GetNode(name string) (*Node, bool) {
	n, ok := p.nodes[name]
	return n, ok
}

// ListNodes returns every node name in a stable topological order,
// ties broken by insertion order.
func (p *Pipeline) ListNodes() []string {
	names := make([]string, 0, len(p.nodes))
	for _, v := range p.g.topo(nil) {
		if _, ok := p.nodes[v]; ok {
			names = append(names, v)
		}
	}
	return names
}

// IsVirtualInput reports whether name is a referenced-but-unregistered
// dependency.
func (p *Pipeline) IsVirtualInput(name string) bool {
	return p.virtual[name]
}

// VirtualInputs returns the sorted virtual-input names.
func (p *Pipeline) VirtualInputs() []string {
	return util.SortedKeys(p.virtual)
}

// NodesByMetadata returns the nodes whose metadata contains the given
// key with an equal value, in topological order.
func (p *Pipeline) NodesByMetadata(key string, value any) []*Node {
	var matched []*Node
	for _, name := range p.ListNodes() {
		n := p.nodes[name]
		if v, ok := n.Metadata[key]; ok && reflect.DeepEqual(v, value) {
			matched = append(matched, n)
		}
	}
	return matched
}

// leaves returns the node names without dependents, in topological
// order.
func (p *Pipeline) leaves() []string {
	var out []string
	for _, name := range p.ListNodes() {
		if len(p.g.succ[name]) == 0 {
			out = append(out, name)
		}
	}
	return out
}

// pipelineSnapshot captures the mutable graph state for rollback.
type pipelineSnapshot struct {
	nodes   map[string]*Node
	succ    map[string][]string
	pred    map[string][]string
	seq     map[string]int
	next    int
	virtual map[string]bool
}

func (p *Pipeline) snapshot() *pipelineSnapshot {
	s := &pipelineSnapshot{
		nodes:   make(map[string]*Node, len(p.nodes)),
		succ:    make(map[string][]string, len(p.g.succ)),
		pred:    make(map[string][]string, len(p.g.pred)),
		seq:     make(map[string]int, len(p.g.seq)),
		next:    p.g.next,
		virtual: make(map[string]bool, len(p.virtual)),
	}
	for k, v := range p.nodes {
		s.nodes[k] = v
	}
	for k, v := range p.g.succ {
		s.succ[k] = append([]string(nil), v...)
	}
	for k, v := range p.g.pred {
		s.pred[k] = append([]string(nil), v...)
	}
	for k, v := range p.g.seq {
		s.seq[k] = v
	}
	for k := range p.virtual {
		s.virtual[k] = true
	}
	return s
}

func (p *Pipeline) restore(s *pipelineSnapshot) {
	p.nodes = s.nodes
	p.g.succ = s.succ
	p.g.pred = s.pred
	p.g.seq = s.seq
	p.g.next = s.next
	p.virtual = s.virtual
}
