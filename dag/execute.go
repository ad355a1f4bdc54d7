package dag

import (
	"context"
	"sort"
	"time"

	"github.com/raysim/pipekit/errors"
)

// Execute runs the minimal subgraph producing the requested outputs.
//
// When outputs is empty, every leaf node is produced. Each entry of
// inputs either bypasses a node (the key names a node; its value is
// used verbatim and its ancestors are not evaluated) or supplies a
// virtual-input value. Unknown keys and unknown outputs are rejected.
//
// The context is checked between nodes; a canceled context aborts the
// run. The per-execution cache is discarded on return.
func (p *Pipeline) Execute(ctx context.Context, outputs []string, inputs map[string]any) (map[string]any, error) {
	result, _, err := p.run(ctx, outputs, inputs, nil)
	return result, err
}

// ExecuteReport runs like Execute and additionally returns a Report
// with per-node status and timing.
func (p *Pipeline) ExecuteReport(ctx context.Context, outputs []string, inputs map[string]any) (map[string]any, *Report, error) {
	report := newReport(p.name)
	result, report, err := p.run(ctx, outputs, inputs, report)
	return result, report, err
}

func (p *Pipeline) run(ctx context.Context, outputs []string, inputs map[string]any, report *Report) (map[string]any, *Report, error) {
	defer p.ClearCache()
	start := time.Now()

	resolved, err := p.resolveOutputs(outputs)
	if err != nil {
		return nil, report, err
	}

	bypasses, virtualValues, err := p.classifyInputs(inputs)
	if err != nil {
		return nil, report, err
	}

	required, requiredVirtual := p.requiredNodes(resolved, bypasses)

	if err := p.checkMissingInputs(requiredVirtual, virtualValues); err != nil {
		return nil, report, err
	}
	if err := p.checkReachability(resolved, bypasses, virtualValues); err != nil {
		return nil, report, err
	}

	p.cache = make(map[string]any, len(inputs)+len(required))
	for name, value := range bypasses {
		p.cache[name] = value
		report.record(name, StatusSkipped, 0, nil)
	}
	for name, value := range virtualValues {
		p.cache[name] = value
	}

	for _, name := range p.g.topo(required) {
		if err := ctx.Err(); err != nil {
			return nil, report, errors.Canceled(err)
		}
		if _, done := p.cache[name]; done {
			continue
		}
		if err := p.executeNode(ctx, name, report); err != nil {
			return nil, report, err
		}
	}

	result := make(map[string]any, len(resolved))
	for _, name := range resolved {
		result[name] = p.cache[name]
	}
	report.finish(time.Since(start))
	return result, report, nil
}

// resolveOutputs returns the effective output set: the caller's list,
// or every leaf when the list is empty. Each entry must name a node.
func (p *Pipeline) resolveOutputs(outputs []string) ([]string, error) {
	if len(outputs) == 0 {
		leaves := p.leaves()
		if len(leaves) == 0 {
			return nil, errors.InvalidInput("pipeline has no nodes to execute")
		}
		return leaves, nil
	}
	for _, name := range outputs {
		if _, ok := p.nodes[name]; !ok {
			return nil, errors.InvalidInput("unknown output " + name)
		}
	}
	return append([]string(nil), outputs...), nil
}

// classifyInputs splits inputs into node bypasses and virtual-input
// values. The two key domains are disjoint.
func (p *Pipeline) classifyInputs(inputs map[string]any) (bypasses, virtualValues map[string]any, err error) {
	bypasses = make(map[string]any)
	virtualValues = make(map[string]any)
	for name, value := range inputs {
		switch {
		case p.nodes[name] != nil:
			bypasses[name] = value
		case p.virtual[name]:
			virtualValues[name] = value
		default:
			return nil, nil, errors.InvalidInput("unknown input " + name)
		}
	}
	return bypasses, virtualValues, nil
}

// requiredNodes walks dependency edges backwards from the outputs,
// stopping at bypassed names. It returns the nodes to execute and the
// virtual inputs the run needs.
func (p *Pipeline) requiredNodes(outputs []string, bypasses map[string]any) (map[string]bool, map[string]bool) {
	required := make(map[string]bool)
	requiredVirtual := make(map[string]bool)

	stack := append([]string(nil), outputs...)
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, bypassed := bypasses[name]; bypassed {
			continue
		}
		if p.virtual[name] {
			requiredVirtual[name] = true
			continue
		}
		if required[name] {
			continue
		}
		required[name] = true
		stack = append(stack, p.nodes[name].Dependencies...)
	}
	return required, requiredVirtual
}

func (p *Pipeline) checkMissingInputs(requiredVirtual map[string]bool, virtualValues map[string]any) error {
	var missing []string
	for name := range requiredVirtual {
		if _, ok := virtualValues[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.MissingInput(missing)
	}
	return nil
}

// checkReachability verifies each output is grounded: at least one
// upward path from it reaches a zero-dependency node, a bypass, or a
// supplied virtual input.
func (p *Pipeline) checkReachability(outputs []string, bypasses, virtualValues map[string]any) error {
	grounded := func(start string) (bool, []string) {
		seen := map[string]bool{start: true}
		stack := []string{start}
		var unsupplied []string
		for len(stack) > 0 {
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if _, ok := bypasses[name]; ok {
				return true, nil
			}
			if p.virtual[name] {
				if _, ok := virtualValues[name]; ok {
					return true, nil
				}
				unsupplied = append(unsupplied, name)
				continue
			}
			node := p.nodes[name]
			if len(node.Dependencies) == 0 {
				return true, nil
			}
			for _, dep := range node.Dependencies {
				if !seen[dep] {
					seen[dep] = true
					stack = append(stack, dep)
				}
			}
		}
		return false, unsupplied
	}

	var unreachable []string
	for _, name := range outputs {
		if ok, _ := grounded(name); !ok {
			unreachable = append(unreachable, name)
		}
	}
	if len(unreachable) > 0 {
		sort.Strings(unreachable)
		_, missing := grounded(unreachable[0])
		return errors.UnreachableOutput(unreachable[0], missing)
	}
	return nil
}

// executeNode evaluates one node: gather inputs from the cache, run
// pre hooks, the function, post hooks, then cache the output.
// Dependencies missing from the cache are resolved recursively, which
// keeps subgraph boundaries correct even when the topological sweep
// did not cover them.
func (p *Pipeline) executeNode(ctx context.Context, name string, report *Report) error {
	node := p.nodes[name]

	gathered := make(map[string]any, len(node.Dependencies))
	for _, dep := range node.Dependencies {
		value, ok := p.cache[dep]
		if !ok {
			if _, isNode := p.nodes[dep]; !isNode {
				return errors.MissingInput([]string{dep})
			}
			if err := p.executeNode(ctx, dep, report); err != nil {
				return err
			}
			value = p.cache[dep]
		}
		gathered[dep] = value
	}

	hooksEnabled := p.validate && node.Validate
	start := time.Now()
	nodeCtx := ctx
	for _, obs := range p.observers {
		nodeCtx = obs.BeforeNode(nodeCtx, p.name, name)
	}

	fail := func(phase string, cause error) error {
		err := errors.NodeFailed(name, phase, cause)
		p.notifyAfter(nodeCtx, name, nil, err, time.Since(start))
		report.record(name, StatusFailed, time.Since(start), err)
		return err
	}

	if hooksEnabled {
		for _, pre := range node.PreFuncs {
			if err := pre(gathered); err != nil {
				return fail(PhasePre, err)
			}
		}
	}

	output, err := node.Func(gathered)
	if err != nil {
		return fail(PhaseFunc, err)
	}

	if hooksEnabled {
		for _, post := range node.PostFuncs {
			if err := post(output); err != nil {
				return fail(PhasePost, err)
			}
		}
	}

	p.cache[name] = output
	p.notifyAfter(nodeCtx, name, output, nil, time.Since(start))
	report.record(name, StatusCompleted, time.Since(start), nil)
	return nil
}

func (p *Pipeline) notifyAfter(ctx context.Context, name string, output any, err error, d time.Duration) {
	for _, obs := range p.observers {
		obs.AfterNode(ctx, p.name, name, output, err, d)
	}
}

// ClearCache discards any cached execution values.
func (p *Pipeline) ClearCache() {
	p.cache = nil
}

// Execution phases reported in node failures.
const (
	PhasePre  = "pre"
	PhaseFunc = "func"
	PhasePost = "post"
)
