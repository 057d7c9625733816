package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/alantheprice/pagewright/pkg/ui"
)

// Set at build time with -ldflags.
var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		ui.Out().Printf("pagewright %s\n", version)
		ui.Out().Printf("  go:     %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		ui.Out().Printf("  built:  %s\n", buildDate)
		if gitCommit != "" {
			ui.Out().Printf("  commit: %s\n", gitCommit)
		}
	},
}
