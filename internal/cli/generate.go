package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cuesmith/cuesmith/internal/asr"
	"github.com/cuesmith/cuesmith/internal/config"
	"github.com/cuesmith/cuesmith/internal/segment"
	"github.com/cuesmith/cuesmith/internal/subtitle"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [audio_file]",
	Short: "Generate subtitles for an audio file",
	Long: `Generate subtitles for the specified audio file using AI transcription.

The audio is transcribed with word-level timestamps and segmented into
display-ready cues that respect line length, duration, pause, and speaker
boundaries. Generated subtitles can be output in SRT, VTT, or ASS format.

Examples:
  cuesmith generate audio.mp3
  cuesmith generate podcast.wav --format vtt
  cuesmith generate interview.mp3 --provider elevenlabs --diarize
  cuesmith generate audio.mp3 -f srt --max-duration 6s -o out.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().
		String("provider", "openai", "Transcription provider (openai, gemini, elevenlabs)")
	generateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set the provider's *_API_KEY env var)")
	generateCmd.Flags().
		String("model", "", "Model to use for transcription (provider-specific default)")
	generateCmd.Flags().
		StringP("format", "f", "srt", "Output subtitle format (srt, vtt, ass)")
	generateCmd.Flags().
		Bool("diarize", false, "Request speaker labels where the provider supports it")
	generateCmd.Flags().
		String("prompt", "", "Transcription hint passed to the provider (names, jargon)")
	generateCmd.Flags().
		Int("max-chars", 0, "Rune limit per cue (default 84, 42 for CJK)")
	generateCmd.Flags().
		Duration("max-duration", 0, "Duration ceiling per cue (default 8s)")
	generateCmd.Flags().
		Duration("pause-gap", 0, "Silence between words that closes a cue (default 800ms)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	audioPath := args[0]

	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return fmt.Errorf("audio file not found: %s", audioPath)
	}

	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	formatStr, _ := cmd.Flags().GetString("format")
	diarize, _ := cmd.Flags().GetBool("diarize")
	prompt, _ := cmd.Flags().GetString("prompt")
	maxChars, _ := cmd.Flags().GetInt("max-chars")
	maxDuration, _ := cmd.Flags().GetDuration("max-duration")
	pauseGap, _ := cmd.Flags().GetDuration("pause-gap")
	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")

	format, err := parseFormat(formatStr)
	if err != nil {
		return err
	}
	// an explicit output path implies its format unless --format was given
	if outputPath != "" && !cmd.Flags().Changed("format") {
		format = subtitle.GetFormatFromExtension(outputPath)
	}

	cfg, err := config.Load(config.Overrides{EnvFile: envFile})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if apiKey == "" {
		apiKey = cfg.KeyFor(providerStr)
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			envVarFor(providerStr),
		)
	}

	if outputPath == "" {
		baseName := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
		outputPath = baseName + subtitle.GetExtensionForFormat(format)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger.Infow("Starting subtitle generation",
		"input", audioPath,
		"output", outputPath,
		"provider", providerStr,
		"format", formatStr,
		"diarize", diarize,
	)

	opts := asr.Options{
		Language: language,
		Model:    model,
		Prompt:   prompt,
		Diarize:  diarize,
	}

	transcriber, err := asr.Factory(ctx, asr.Provider(providerStr), apiKey, opts)
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	logger.Infow("Transcribing audio")

	result, err := transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("Cancelled, no output written")
			return nil
		}
		return fmt.Errorf("transcription failed: %w", err)
	}

	logger.Infow("Transcription complete",
		"language", result.Language,
		"duration", result.Duration.String(),
		"tokens", len(result.Tokens),
		"utterances", len(result.Utterances),
	)

	engine := segment.New(segment.Options{
		MaxChars:    maxChars,
		MaxDuration: maxDuration,
		PauseGap:    pauseGap,
	})

	cues := engine.Cues(result)
	if len(cues) == 0 {
		return fmt.Errorf("transcription produced no usable cues")
	}

	logger.Infow("Segmented transcription into cues",
		"cues", len(cues),
	)

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return fmt.Errorf("failed to create subtitle writer: %w", err)
	}

	if err := writer.Write(cues, outputPath); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles generated successfully: %s\n", absOutput)
	fmt.Printf("  Cues: %d\n", len(cues))
	fmt.Printf("  Duration: %s\n", result.Duration.String())

	return nil
}

// parseFormat maps the --format flag value to a subtitle format.
func parseFormat(s string) (subtitle.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "srt":
		return subtitle.FormatSRT, nil
	case "vtt":
		return subtitle.FormatVTT, nil
	case "ass":
		return subtitle.FormatASS, nil
	default:
		return subtitle.FormatUnknown, fmt.Errorf(
			"unsupported format %q: use srt, vtt, or ass", s,
		)
	}
}

// envVarFor names the environment variable holding a provider's API key.
func envVarFor(provider string) string {
	if provider == "" {
		return "API_KEY"
	}
	return strings.ToUpper(provider) + "_API_KEY"
}
