package cli

import (
	"github.com/cuesmith/cuesmith/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	envFile string
	logger  = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "cuesmith",
	Short: "Subtitle toolkit: generate, transform, and inspect cue files",
	Long: `Cuesmith turns timed transcription output into subtitle cues and
passes existing subtitle files through AI text transforms (translation,
correction) without touching timing, styling, or cue identity.

It supports SRT, VTT, and ASS/SSA formats and multiple AI providers.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Language of the source material (e.g., en, es, fr)")
	rootCmd.PersistentFlags().
		StringVar(&envFile, "env-file", "", "Path to .env file with API keys (default .env)")
}
