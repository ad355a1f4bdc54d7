package dag

import (
	"fmt"
	"io"
	"strings"

	"github.com/raysim/pipekit/util"
)

// PrintSummary writes a human-readable listing of the pipeline: nodes
// in topological order with their dependencies, hook counts, and
// metadata, followed by the virtual inputs.
func (p *Pipeline) PrintSummary(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Pipeline %q: %d nodes, %d virtual inputs\n",
		p.name, len(p.nodes), len(p.virtual))

	for i, name := range p.ListNodes() {
		node := p.nodes[name]
		fmt.Fprintf(&b, "%3d. %s", i+1, name)
		if len(node.Dependencies) > 0 {
			fmt.Fprintf(&b, "  <- %s", strings.Join(node.Dependencies, ", "))
		}
		if !node.Validate {
			b.WriteString("  [validation off]")
		}
		b.WriteString("\n")

		if node.Description != "" {
			fmt.Fprintf(&b, "       %s\n", node.Description)
		}
		if len(node.PreFuncs) > 0 || len(node.PostFuncs) > 0 {
			fmt.Fprintf(&b, "       hooks: %d pre, %d post\n",
				len(node.PreFuncs), len(node.PostFuncs))
		}
		if len(node.Metadata) > 0 {
			pairs := util.Map(util.SortedKeys(node.Metadata), func(k string) string {
				return fmt.Sprintf("%s=%v", k, node.Metadata[k])
			})
			fmt.Fprintf(&b, "       metadata: %s\n", strings.Join(pairs, ", "))
		}
	}

	if inputs := p.VirtualInputs(); len(inputs) > 0 {
		fmt.Fprintf(&b, "virtual inputs: %s\n", strings.Join(inputs, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
