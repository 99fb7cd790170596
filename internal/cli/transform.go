package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cuesmith/cuesmith/internal/config"
	"github.com/cuesmith/cuesmith/internal/subtitle"
	"github.com/cuesmith/cuesmith/internal/transform"
	"github.com/spf13/cobra"
)

var transformCmd = &cobra.Command{
	Use:   "transform [subtitle_file]",
	Short: "Transform subtitle text using AI (translate or correct)",
	Long: `Transform the text of an existing subtitle file with an AI provider
while keeping timing, styling, and cue identity untouched.

Supports SRT, VTT, and ASS/SSA formats. Markup inside cues is replaced
with placeholder tokens before the text reaches the model, then restored
afterwards, so ASS override blocks, inline tags, and line breaks survive
the round trip byte for byte.

Use --target-language to translate, --correct to fix transcription
mistakes, or --instructions for a custom transform.

Examples:
  cuesmith transform video.srt --target-language japanese
  cuesmith transform video.ass -t ja --batches 8
  cuesmith transform video.vtt --correct -l english
  cuesmith transform video.srt --instructions "Rewrite in formal register"`,
	Args: cobra.ExactArgs(1),
	RunE: runTransform,
}

func init() {
	rootCmd.AddCommand(transformCmd)

	transformCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation")
	transformCmd.Flags().
		Bool("correct", false, "Correct transcription mistakes instead of translating")
	transformCmd.Flags().
		String("instructions", "", "Extra or standalone instructions for the model")
	transformCmd.Flags().
		StringP("api-key", "k", "", "API key (or set the provider's *_API_KEY env var)")
	transformCmd.Flags().
		String("model", "", "Model to use for the transform (provider-specific default)")
	transformCmd.Flags().
		String("provider", "gemini", "Transform provider (gemini, openai, anthropic)")
	transformCmd.Flags().
		Int("batches", 0, "Number of concurrent batches (default from BATCH_COUNT)")
	transformCmd.Flags().
		Duration("timeout", 0, "Per-batch timeout (default from REQUEST_TIMEOUT)")
}

func runTransform(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]

	targetLang, _ := cmd.Flags().GetString("target-language")
	correct, _ := cmd.Flags().GetBool("correct")
	instructions, _ := cmd.Flags().GetString("instructions")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	providerStr, _ := cmd.Flags().GetString("provider")
	batches, _ := cmd.Flags().GetInt("batches")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	outputPath, _ := cmd.Flags().GetString("output")
	inputLang, _ := cmd.Flags().GetString("language")

	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}

	ext := strings.ToLower(filepath.Ext(subtitlePath))
	if ext != ".srt" && ext != ".vtt" && ext != ".ass" && ext != ".ssa" {
		return fmt.Errorf(
			"unsupported subtitle format %q: use .srt, .vtt, .ass, or .ssa",
			ext,
		)
	}

	if inputLang != "" && targetLang != "" &&
		strings.EqualFold(
			strings.TrimSpace(inputLang),
			strings.TrimSpace(targetLang),
		) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	prompt, err := buildInstructions(inputLang, targetLang, correct, instructions)
	if err != nil {
		return err
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

	if batches <= 0 {
		batches = cfg.BatchCount
	}
	if timeout <= 0 {
		timeout = cfg.RequestTimeout
	}

	if outputPath == "" {
		outputPath = defaultTransformOutput(subtitlePath, targetLang, correct)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger.Infow("Starting subtitle transform",
		"input", subtitlePath,
		"output", outputPath,
		"provider", providerStr,
		"target_language", targetLang,
		"correct", correct,
		"batches", batches,
	)

	content, err := os.ReadFile(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to read subtitle file: %w", err)
	}

	doc, err := subtitle.Parse(string(content))
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}

	cues := doc.Cues()
	logger.Infow("Parsed subtitle file",
		"format", doc.Format(),
		"cues", len(cues),
	)

	transformer, err := transform.Factory(
		ctx,
		transform.Provider(providerStr),
		apiKey,
		transform.Options{Model: model},
	)
	if err != nil {
		return fmt.Errorf("failed to create transformer: %w", err)
	}

	items := make([]transform.Item, len(cues))
	for i, cue := range cues {
		items[i] = transform.Item{ID: cue.ID, Text: cue.Skeleton}
	}

	runner := transform.NewRunner(transformer, transform.RunnerConfig{
		BatchCount: batches,
		Timeout:    timeout,
		OnProgress: func(completed, total int, pct float64) {
			logger.Infow("Transform progress",
				"completed", completed,
				"total", total,
				"progress", fmt.Sprintf("%.0f%%", pct*100),
			)
		},
	})

	res, err := runner.Run(ctx, prompt, items)
	if res.State == transform.StateCancelled {
		fmt.Println("Cancelled, no changes applied")
		return nil
	}
	if err != nil {
		logger.Warnw("Transform run failed",
			"batches", res.Batches,
			"requests", res.Usage.Requests,
			"input_tokens", res.Usage.InputTokens,
			"output_tokens", res.Usage.OutputTokens,
		)
		return fmt.Errorf("transform failed: %w", err)
	}

	logger.Infow("Transform complete",
		"results", len(res.Items),
		"requests", res.Usage.Requests,
		"input_tokens", res.Usage.InputTokens,
		"output_tokens", res.Usage.OutputTokens,
	)

	transformed := make([]subtitle.TransformedCue, len(res.Items))
	for i, item := range res.Items {
		transformed[i] = subtitle.TransformedCue{ID: item.ID, Text: item.Text}
	}

	findings := subtitle.Validate(cues, transformed)
	for _, f := range findings {
		logger.Warnw("Validation finding",
			"kind", f.Kind,
			"cue", f.CueID,
			"detail", f.Detail,
		)
	}

	output := doc.Reconstruct(transformed)
	if err := os.WriteFile(outputPath, []byte(output), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles transformed successfully: %s\n", absOutput)
	fmt.Printf("  Cues: %d\n", len(cues))
	fmt.Printf("  Batches: %d\n", res.Batches)
	fmt.Printf("  Tokens: %d in / %d out\n",
		res.Usage.InputTokens,
		res.Usage.OutputTokens,
	)
	if len(findings) > 0 {
		fmt.Printf("  Warnings: %d validation findings (see log)\n", len(findings))
	}

	return nil
}

// buildInstructions composes the instruction block from the mode flags.
// Exactly one mode applies: translation when a target language is given,
// correction with --correct, or the raw --instructions text on its own.
func buildInstructions(
	inputLang, targetLang string,
	correct bool,
	extra string,
) (string, error) {
	if targetLang != "" && correct {
		return "", fmt.Errorf("cannot combine --target-language and --correct")
	}
	switch {
	case targetLang != "":
		return transform.TranslationInstructions(inputLang, targetLang, extra), nil
	case correct:
		return transform.CorrectionInstructions(inputLang, extra), nil
	case extra != "":
		return extra, nil
	}
	return "", fmt.Errorf(
		"one of --target-language, --correct, or --instructions is required",
	)
}

// defaultTransformOutput derives the output path from the input path
// and the transform mode.
func defaultTransformOutput(path, targetLang string, correct bool) string {
	ext := filepath.Ext(path)
	baseName := strings.TrimSuffix(path, ext)
	switch {
	case targetLang != "":
		return fmt.Sprintf("%s.%s%s", baseName, targetLang, ext)
	case correct:
		return baseName + ".corrected" + ext
	}
	return baseName + ".transformed" + ext
}
