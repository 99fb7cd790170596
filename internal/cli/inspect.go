package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cuesmith/cuesmith/internal/subtitle"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [subtitle_file]",
	Short: "Show format and cue statistics for a subtitle file",
	Long: `Parse a subtitle file and print its detected format, cue count,
placeholder statistics, and time span without modifying anything.

Examples:
  cuesmith inspect video.srt
  cuesmith inspect video.ass --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]

	content, err := os.ReadFile(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to read subtitle file: %w", err)
	}

	doc, err := subtitle.Parse(string(content))
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}

	cues := doc.Cues()

	var (
		placeholders int
		markedCues   int
		speakers     = map[string]bool{}
		spanStart    = cues[0].Start
		spanEnd      time.Duration
	)
	for _, cue := range cues {
		placeholders += len(cue.Placeholders)
		if len(cue.Placeholders) > 0 {
			markedCues++
		}
		if cue.Speaker != "" {
			speakers[cue.Speaker] = true
		}
		if cue.Start < spanStart {
			spanStart = cue.Start
		}
		if cue.End > spanEnd {
			spanEnd = cue.End
		}
	}

	absPath, _ := filepath.Abs(subtitlePath)
	fmt.Printf("%s\n", absPath)
	fmt.Printf("  Format: %s\n", doc.Format())
	fmt.Printf("  Cues: %d\n", len(cues))
	fmt.Printf("  Cues with markup: %d\n", markedCues)
	fmt.Printf("  Placeholders: %d\n", placeholders)
	if len(speakers) > 0 {
		fmt.Printf("  Speakers: %d\n", len(speakers))
	}
	fmt.Printf("  Span: %s - %s\n", spanStart.String(), spanEnd.String())

	if verbose {
		for _, cue := range cues {
			logger.Debugw("Cue",
				"id", cue.ID,
				"start", cue.Start.String(),
				"end", cue.End.String(),
				"placeholders", len(cue.Placeholders),
			)
		}
	}

	return nil
}
