package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/photonforge/piclet/pkg/layout"
)

// newInspectCmd creates the inspect command.
func newInspectCmd() *cobra.Command {
	var showCells bool

	cmd := &cobra.Command{
		Use:   "inspect [layout.json]",
		Short: "Summarize a layout file's cells, shapes, and pins",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0], showCells)
		},
	}

	cmd.Flags().BoolVar(&showCells, "cells", false, "list every cell with its contents")

	return cmd
}

func runInspect(path string, showCells bool) error {
	l, top, err := layout.ReadFile(path)
	if err != nil {
		return err
	}

	cells := l.Cells()
	var shapes, insts, pins int
	for _, c := range cells {
		shapes += len(c.Shapes)
		insts += len(c.Insts)
		pins += len(c.Pins)
	}

	fmt.Println(StyleTitle.Render(l.String()))
	if top != nil {
		printKeyValue("top", top.Name)
		b := top.BBox()
		if !b.Empty() {
			printKeyValue("bbox", fmt.Sprintf("%d x %d dbu", b.Width(), b.Height()))
		}
	} else {
		tops := l.TopCells()
		names := make([]string, len(tops))
		for i, c := range tops {
			names[i] = c.Name
		}
		printKeyValue("roots", strings.Join(names, ", "))
	}
	printKeyValue("cells", fmt.Sprintf("%d", len(cells)))
	printKeyValue("instances", fmt.Sprintf("%d", insts))
	printKeyValue("shapes", fmt.Sprintf("%d", shapes))
	printKeyValue("pins", fmt.Sprintf("%d", pins))

	if showCells {
		for _, c := range cells {
			printInfo("%s", c.Name)
			printDetail("%d shapes, %d instances, %d pins",
				len(c.Shapes), len(c.Insts), len(c.Pins))
			for _, p := range c.Pins {
				printDetail("pin %s at (%d,%d) facing %s", p.Name, p.Pos.X, p.Pos.Y, p.Facing)
			}
		}
	}

	printNextStep("Visualize the hierarchy", fmt.Sprintf("piclet graph %s", path))
	return nil
}
