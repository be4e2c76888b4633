// Package main is the lyricast CLI: converts lyric sheets to slide
// decks without running the HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "lyricast",
	Short: "Generate worship slides from song lyric sheets",
	Long: `lyricast extracts labeled lyric sections (Verse, Chorus, Bridge, ...)
from PDF/text/docx/html lyric sheets, resolves a performance order like
"V1-C-V2-C-Va", and composes 4-line slides ready for export.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the lyricast version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("lyricast", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
