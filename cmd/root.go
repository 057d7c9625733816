package cmd

import (
	"github.com/spf13/cobra"
)

var skipPrompt bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pagewright",
	Short: "AI website builder: chat-driven HTML editing with staged approval",
	Long: `Pagewright turns assistant responses into reviewable website changes.
Every proposed mutation is staged behind an explicit approval step, merged
into the working document without touching unrelated content, and rendered
in a sandboxed live preview with element-level selection.

Available commands:
  chat     - Interactive editing session against a template
  serve    - Preview server with live selection and element updates
  render   - Bundle a template into one executable document
  log      - Committed revision history and rollback
  version  - Version information`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&skipPrompt, "skip-prompt", false, "never prompt interactively; fail instead")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(versionCmd)
}
