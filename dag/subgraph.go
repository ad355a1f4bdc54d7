package dag

import (
	"github.com/raysim/pipekit/errors"
	"github.com/raysim/pipekit/util"
)

// RequiredInputs returns the sorted virtual inputs that are ancestors
// of the given outputs. With no outputs, every leaf is considered.
func (p *Pipeline) RequiredInputs(outputs ...string) ([]string, error) {
	resolved, err := p.resolveOutputs(outputs)
	if err != nil {
		return nil, err
	}
	_, requiredVirtual := p.requiredNodes(resolved, nil)
	return util.SortedKeys(requiredVirtual), nil
}

// ExtractSubgraph returns a new, independent pipeline containing
// exactly the ancestor closure of the given outputs. Virtual inputs of
// the original that feed the closure remain virtual inputs. Node and
// hook callables are shared by reference; metadata maps are copied.
func (p *Pipeline) ExtractSubgraph(outputs ...string) (*Pipeline, error) {
	if len(outputs) == 0 {
		return nil, errors.InvalidInput("subgraph extraction requires explicit outputs")
	}
	resolved, err := p.resolveOutputs(outputs)
	if err != nil {
		return nil, err
	}

	required, _ := p.requiredNodes(resolved, nil)

	sub := New(p.name, WithGlobalValidate(p.validate))
	sub.observers = append(sub.observers, p.observers...)

	// Insert in the parent's topological order so insertion-order
	// tiebreaks carry over.
	for _, name := range p.g.topo(required) {
		node := p.nodes[name].clone()
		sub.nodes[name] = node
		sub.g.ensure(name)
		for _, dep := range node.Dependencies {
			if !required[dep] {
				if _, isNode := sub.nodes[dep]; !isNode && !sub.virtual[dep] {
					sub.g.ensure(dep)
					sub.virtual[dep] = true
				}
			}
			sub.g.addEdge(dep, name)
		}
	}
	return sub, nil
}
