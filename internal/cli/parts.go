package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/photonforge/piclet/pkg/errors"
	"github.com/photonforge/piclet/pkg/parts"
)

// newPartsCmd creates the parts command.
func newPartsCmd() *cobra.Command {
	var partsFile string

	cmd := &cobra.Command{
		Use:   "parts",
		Short: "List the part definitions available to the composer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParts(partsFile)
		},
	}

	cmd.Flags().StringVar(&partsFile, "parts", "", "parts TOML file (defaults to the built-in set)")

	return cmd
}

func runParts(partsFile string) error {
	src := parts.DefaultSource()
	if partsFile != "" {
		var err error
		src, err = parts.LoadSource(partsFile)
		if err != nil {
			return err
		}
	}

	lister, ok := src.(parts.Lister)
	if !ok {
		return errors.New(errors.ErrCodeInternal, "parts source does not support listing")
	}

	for _, d := range lister.Defs() {
		printInfo("%s/%s", d.Library, d.Name)
		printDetail("body [%d,%d .. %d,%d]", d.Box[0], d.Box[1], d.Box[2], d.Box[3])
		for _, p := range d.Pins {
			printDetail("pin %-12s (%d,%d) facing %d° width %d", p.Name, p.X, p.Y, p.Facing, p.Width)
		}
	}
	fmt.Println()
	printNextStep("Compose piclets", "piclet generate submissions/ -o out/")
	return nil
}
