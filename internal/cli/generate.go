package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/photonforge/piclet/pkg/compose"
	"github.com/photonforge/piclet/pkg/errors"
	"github.com/photonforge/piclet/pkg/layout"
	"github.com/photonforge/piclet/pkg/verify"
)

// generateOptions holds the flags shared by every submission in a batch.
type generateOptions struct {
	out        string
	wavelength int
	marker     string
	techFile   string
	couplers   bool
	dftLabel   string
}

// newGenerateCmd creates the generate command.
func newGenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate [submission.json | directory]",
		Short: "Compose piclets from submission layout files",
		Long: `Compose piclets from submission layout files.

Each input file is a layout JSON document holding one design submission.
The submission is wrapped with the laser, heater, bond pads, splitter, and
reference path, routed, verified, and written to the output directory as a
complete piclet layout.

With a directory argument every *.json file inside is processed; a failing
submission is reported and skipped, never aborting the batch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", ".", "output directory for piclet layouts")
	cmd.Flags().IntVarP(&opts.wavelength, "wavelength", "w", compose.DefaultWavelength, "operating wavelength in nm")
	cmd.Flags().StringVar(&opts.marker, "marker", compose.DefaultMarker, "substring identifying the submission's port cell")
	cmd.Flags().StringVar(&opts.techFile, "tech", "", "technology TOML file overriding the built-in constants")
	cmd.Flags().BoolVar(&opts.couplers, "couplers", false, "add the fiber coupler bank")
	cmd.Flags().StringVar(&opts.dftLabel, "dft-label", "", "design-for-test label text")

	return cmd
}

func runGenerate(cmd *cobra.Command, input string, opts generateOptions) error {
	logger := loggerFromContext(cmd.Context())

	inputs, err := submissionFiles(input)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no submission files in %s", input)
	}

	tech := compose.DefaultTech()
	if opts.techFile != "" {
		tech, err = compose.LoadTech(opts.techFile)
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create output directory %s", opts.out)
	}

	prog := newProgress(logger)
	failed := 0
	for _, path := range inputs {
		if err := generateOne(cmd, path, tech, opts); err != nil {
			failed++
			printError("%s: %s", filepath.Base(path), errors.UserMessage(err))
			logger.Debug("submission failed", "file", path, "err", err)
		}
	}
	prog.done(fmt.Sprintf("Composed %d/%d piclets", len(inputs)-failed, len(inputs)))

	if failed > 0 {
		return errors.New(errors.ErrCodeInternal, "%d of %d submissions failed", failed, len(inputs))
	}
	return nil
}

// generateOne composes, verifies, and exports a single submission.
func generateOne(cmd *cobra.Command, path string, tech compose.Tech, opts generateOptions) error {
	logger := loggerFromContext(cmd.Context())

	l, sub, err := layout.ReadFile(path)
	if err != nil {
		return err
	}
	if sub == nil {
		sub, err = soleTopCell(l, path)
		if err != nil {
			return err
		}
	}

	name := submissionName(path)
	c, err := compose.New(compose.Options{
		Name:       name,
		Wavelength: opts.wavelength,
		Marker:     opts.marker,
		Tech:       tech,
		Couplers:   opts.couplers,
		Designator: name,
		DFTLabel:   opts.dftLabel,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	res, err := c.Compose(sub)
	if err != nil {
		return err
	}

	rep := verify.Run(res)
	for _, issue := range rep.Issues {
		if issue.Severity == verify.SeverityWarning {
			printWarning("%s: %s", name, issue.Message)
		}
	}
	if !rep.OK() {
		for _, issue := range rep.Issues {
			if issue.Severity == verify.SeverityError {
				printDetail("%s: %s", issue.Check, issue.Message)
			}
		}
		return errors.New(errors.ErrCodeInvalidLayout,
			"piclet %s failed verification with %d errors", name, rep.Errors())
	}

	outPath := filepath.Join(opts.out, res.Top.Name+".json")
	if _, err := layout.WriteFile(res.Layout, res.Top.Name, outPath); err != nil {
		return err
	}

	printSuccess("%s", name)
	printStats(res.Stats.Placements, res.Stats.RouteCount, res.Degraded)
	printFile(outPath)
	return nil
}

// submissionFiles expands a file or directory argument into a sorted list
// of layout JSON paths.
func submissionFiles(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "stat %s", input)
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read directory %s", input)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(input, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// soleTopCell resolves the submission cell when the document names no
// top: exactly one root cell must exist.
func soleTopCell(l *layout.Layout, path string) (*layout.Cell, error) {
	tops := l.TopCells()
	switch len(tops) {
	case 1:
		return tops[0], nil
	case 0:
		return nil, errors.New(errors.ErrCodeInvalidLayout, "%s has no root cell", path)
	default:
		return nil, errors.New(errors.ErrCodeInvalidLayout,
			"%s has %d root cells and no declared top", path, len(tops))
	}
}

// submissionName derives the submission name from the file path.
func submissionName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
