package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "videoproc",
	Short: "Video processing pipeline for clip extraction and composition",
	Long: `videoproc drives long-form source videos through transcription,
AI-assisted refinement, clip extraction, subtitling and scene composition.

Pipeline stages are checkpointed: every command persists entity status as it
runs, so a failed run can be inspected and retried from its last checkpoint.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVideoCmd())
	rootCmd.AddCommand(newClipCmd())
	rootCmd.AddCommand(newSubtitleCmd())
	rootCmd.AddCommand(newComposeCmd())
	rootCmd.AddCommand(newConfigCmd())
}
