package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/spf13/cobra"

	"github.com/photonforge/piclet/pkg/errors"
	"github.com/photonforge/piclet/pkg/layout"
)

// newGraphCmd creates the graph command.
func newGraphCmd() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "graph [layout.json]",
		Short: "Render a layout's cell hierarchy as DOT or SVG",
		Long: `Render a layout's cell hierarchy as DOT or SVG.

Each cell becomes a node; an edge from A to B means A instantiates B, with
the instance count on the edge label. With no output file the DOT text is
written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(args[0], output, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to stdout for dot)")
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg")

	return cmd
}

func runGraph(path, output, format string) error {
	l, top, err := layout.ReadFile(path)
	if err != nil {
		return err
	}
	dot := hierarchyDOT(l, top)

	switch format {
	case "dot":
		if output == "" {
			fmt.Print(dot)
			return nil
		}
		if err := os.WriteFile(output, []byte(dot), 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "write %s", output)
		}
	case "svg":
		if output == "" {
			return errors.New(errors.ErrCodeInvalidInput, "svg output requires --output")
		}
		svg, err := renderSVG(dot)
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, svg, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "write %s", output)
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want dot or svg)", format)
	}

	printFile(output)
	return nil
}

// hierarchyDOT converts a layout's cell hierarchy to Graphviz DOT. Cells
// become nodes; multiplicity of instantiation goes on the edge label.
func hierarchyDOT(l *layout.Layout, top *layout.Cell) string {
	var buf bytes.Buffer
	buf.WriteString("digraph cells {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, c := range l.Cells() {
		attrs := []string{fmt.Sprintf("label=%q", cellLabel(c))}
		if top != nil && c == top {
			attrs = append(attrs, "fillcolor=lightblue")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", c.Name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range l.Cells() {
		counts := make(map[string]int)
		var order []string
		for _, inst := range c.Insts {
			name := inst.Target().Name
			if counts[name] == 0 {
				order = append(order, name)
			}
			counts[name]++
		}
		for _, name := range order {
			if n := counts[name]; n > 1 {
				fmt.Fprintf(&buf, "  %q -> %q [label=\"x%d\"];\n", c.Name, name, n)
			} else {
				fmt.Fprintf(&buf, "  %q -> %q;\n", c.Name, name)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func cellLabel(c *layout.Cell) string {
	if len(c.Pins) == 0 {
		return c.Name
	}
	return fmt.Sprintf("%s\n%d pins", c.Name, len(c.Pins))
}

// renderSVG renders a DOT graph to SVG using Graphviz.
func renderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
	}
	return buf.Bytes(), nil
}
