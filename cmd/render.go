package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alantheprice/pagewright/pkg/bundle"
	"github.com/alantheprice/pagewright/pkg/ui"
)

var (
	renderOut         string
	renderInteractive bool
	renderBare        bool
	renderTitle       string
)

var renderCmd = &cobra.Command{
	Use:   "render <template>",
	Short: "Bundle a template into one executable document",
	Long: `Render takes any document shape (full HTML, a fragment, or
component-style code), lowers it to one self-contained executable HTML
document, and writes it out. Fragments get a synthesized shell with base
typography and a visible error overlay; style blocks are hoisted with
nothing dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		mode := bundle.ModeEdit
		if renderInteractive {
			mode = bundle.ModeInteractive
		}

		artifact, err := bundle.Build(string(data), bundle.Options{
			Mode:  mode,
			Title: renderTitle,
			Bare:  renderBare,
		})
		if err != nil {
			return err
		}

		if renderOut == "" || renderOut == "-" {
			ui.Out().Print(artifact.HTML)
			return nil
		}
		if err := os.WriteFile(renderOut, []byte(artifact.HTML), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", renderOut, err)
		}
		ui.Out().Printf("Wrote %s (%s input)\n", renderOut, artifact.Shape)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output path (default stdout)")
	renderCmd.Flags().BoolVar(&renderInteractive, "interactive", false, "bake interactive mode instead of edit mode")
	renderCmd.Flags().BoolVar(&renderBare, "bare", false, "skip preview instrumentation, for plain export")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "title for synthesized shells")
}
