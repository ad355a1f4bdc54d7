package dag

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/raysim/pipekit/errors"
	"github.com/raysim/pipekit/util"
)

// Stable DOT style vocabulary.
const (
	dotNodeShape    = "box"
	dotNodeStyle    = "rounded,filled"
	dotNodeFill     = "lightblue"
	dotVirtualShape = "ellipse"
	dotVirtualFill  = "gold"
	dotHighlight    = "lightcoral"
)

// RenderOption configures graph export.
type RenderOption func(*renderSettings)

type renderSettings struct {
	highlight map[string]bool
	legend    bool
	bin       string
}

// WithHighlight renders the named vertices with the highlight fill.
func WithHighlight(names ...string) RenderOption {
	return func(s *renderSettings) {
		for _, name := range names {
			s.highlight[name] = true
		}
	}
}

// WithLegend appends a legend cluster to the exported graph.
func WithLegend() RenderOption {
	return func(s *renderSettings) {
		s.legend = true
	}
}

// WithGraphvizBin overrides the dot binary used for PNG/SVG rendering.
func WithGraphvizBin(path string) RenderOption {
	return func(s *renderSettings) {
		s.bin = path
	}
}

func newRenderSettings(opts []RenderOption) *renderSettings {
	s := &renderSettings{highlight: make(map[string]bool), bin: "dot"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WriteDOT writes the pipeline as a Graphviz digraph. Computation
// nodes render as filled rounded boxes, virtual inputs as filled
// ellipses, highlighted vertices with an alternate fill, and metadata
// as italic label lines.
func (p *Pipeline) WriteDOT(w io.Writer, opts ...RenderOption) error {
	settings := newRenderSettings(opts)

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", p.name)
	b.WriteString("  rankdir=TB;\n")

	for _, name := range p.orderedVertices() {
		fill := dotNodeFill
		shape := dotNodeShape
		style := dotNodeStyle
		if p.virtual[name] {
			fill = dotVirtualFill
			shape = dotVirtualShape
			style = "filled"
		}
		if settings.highlight[name] {
			fill = dotHighlight
		}
		fmt.Fprintf(&b, "  %q [shape=%s, style=%q, fillcolor=%q, label=%s];\n",
			name, shape, style, fill, p.dotLabel(name))
	}

	for _, from := range p.orderedVertices() {
		targets := append([]string(nil), p.g.succ[from]...)
		sort.Strings(targets)
		for _, to := range targets {
			fmt.Fprintf(&b, "  %q -> %q;\n", from, to)
		}
	}

	if settings.legend {
		b.WriteString("  subgraph cluster_legend {\n")
		b.WriteString("    label=\"Legend\";\n")
		b.WriteString("    style=dashed;\n")
		fmt.Fprintf(&b, "    legend_node [shape=%s, style=%q, fillcolor=%q, label=\"computation\"];\n",
			dotNodeShape, dotNodeStyle, dotNodeFill)
		fmt.Fprintf(&b, "    legend_input [shape=%s, style=\"filled\", fillcolor=%q, label=\"virtual input\"];\n",
			dotVirtualShape, dotVirtualFill)
		fmt.Fprintf(&b, "    legend_highlight [shape=%s, style=%q, fillcolor=%q, label=\"highlighted\"];\n",
			dotNodeShape, dotNodeStyle, dotHighlight)
		b.WriteString("  }\n")
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// dotLabel renders a vertex label, appending sorted metadata entries
// as italic lines for computation nodes.
func (p *Pipeline) dotLabel(name string) string {
	node, ok := p.nodes[name]
	if !ok || len(node.Metadata) == 0 {
		return fmt.Sprintf("%q", name)
	}
	keys := util.SortedKeys(node.Metadata)

	var b strings.Builder
	b.WriteString("<")
	b.WriteString(htmlEscape(name))
	for _, k := range keys {
		fmt.Fprintf(&b, "<BR/><I>%s=%v</I>", htmlEscape(k), node.Metadata[k])
	}
	b.WriteString(">")
	return b.String()
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// orderedVertices returns every vertex (nodes and virtual inputs) in a
// stable topological order.
func (p *Pipeline) orderedVertices() []string {
	return p.g.topo(nil)
}

// DOT returns the Graphviz source for the pipeline.
func (p *Pipeline) DOT(opts ...RenderOption) string {
	var b strings.Builder
	_ = p.WriteDOT(&b, opts...)
	return b.String()
}

// WritePNG renders the pipeline to a PNG file via the dot binary.
func (p *Pipeline) WritePNG(ctx context.Context, path string, opts ...RenderOption) error {
	return p.render(ctx, "png", path, opts)
}

// WriteSVG renders the pipeline to an SVG file via the dot binary.
func (p *Pipeline) WriteSVG(ctx context.Context, path string, opts ...RenderOption) error {
	return p.render(ctx, "svg", path, opts)
}

// SVG returns the pipeline rendered as an SVG document.
func (p *Pipeline) SVG(ctx context.Context, opts ...RenderOption) (string, error) {
	settings := newRenderSettings(opts)
	out, err := p.runDot(ctx, settings.bin, "svg", opts)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (p *Pipeline) render(ctx context.Context, format, path string, opts []RenderOption) error {
	settings := newRenderSettings(opts)
	out, err := p.runDot(ctx, settings.bin, format, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.Internal(err).WithDetail("path", path)
	}
	return nil
}

func (p *Pipeline) runDot(ctx context.Context, bin, format string, opts []RenderOption) ([]byte, error) {
	var in bytes.Buffer
	if err := p.WriteDOT(&in, opts...); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, bin, "-T"+format)
	cmd.Stdin = &in
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Internal(err).
			WithDetail("bin", bin).
			WithDetail("stderr", strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
