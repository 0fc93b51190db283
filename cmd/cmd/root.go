package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "growthkit",
	Short: "growthkit runs the AI content generation backend of the marketing site",
	Long: `growthkit is the content-generation backend behind the marketing website.

It exposes an HTTP API that turns typed requests (blog posts, ad variations,
email copy, market research) into AI-generated content, with per-caller rate
limiting and durable, poll-able research reports.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.growthkit.yaml)")
}
