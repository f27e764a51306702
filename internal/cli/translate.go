package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cardslicer/cardslicer/internal/subtitle"
	"github.com/cardslicer/cardslicer/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate [subtitle_file]",
	Short: "Generate a translation track using AI",
	Long: `Translate an original-language subtitle track into a translation track
that pairs with it entry for entry, ready to load alongside the original.

The output keeps the original timing when writing .srt, or drops timing
for a line-per-entry .txt track.

Examples:
  cardslicer translate ep1.srt --target-language english
  cardslicer translate ep1.srt -t english --provider anthropic -o ep1.en.srt
  cardslicer translate ep1.vtt -t spanish -o ep1.es.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("input-language", "l", "", "Language of the input track (optional hint)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific default)")
	translateCmd.Flags().
		String("provider", "gemini", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		Int("concurrency", 3, "Number of parallel translation workers")
	translateCmd.Flags().
		Int("batch-size", 50, "Number of subtitle entries per API request")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func apiKeyFor(provider translate.Provider, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	var envVar string
	switch provider {
	case translate.ProviderGemini:
		envVar = "GEMINI_API_KEY"
	case translate.ProviderOpenAI:
		envVar = "OPENAI_API_KEY"
	case translate.ProviderAnthropic:
		envVar = "ANTHROPIC_API_KEY"
	default:
		envVar = "API_KEY"
	}

	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf(
		"API key is required: use --api-key flag or set %s environment variable",
		envVar,
	)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := context.Background()

	targetLang, _ := cmd.Flags().GetString("target-language")
	inputLang, _ := cmd.Flags().GetString("input-language")
	apiKeyFlag, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	providerStr, _ := cmd.Flags().GetString("provider")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	outputPath, _ := cmd.Flags().GetString("output")

	if inputLang != "" &&
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
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	provider := translate.Provider(providerStr)
	apiKey, err := apiKeyFor(provider, apiKeyFlag)
	if err != nil {
		return err
	}

	track, err := subtitle.Load(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if track.Len() == 0 {
		return fmt.Errorf("subtitle file contains no entries")
	}

	ext := strings.ToLower(filepath.Ext(subtitlePath))
	if outputPath == "" {
		baseName := strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath))
		outExt := ".srt"
		if !track.Timed {
			outExt = ".txt"
		}
		outputPath = fmt.Sprintf("%s.%s%s", baseName, targetLang, outExt)
	}

	logger.Infow("Starting track translation",
		"input", subtitlePath,
		"output", outputPath,
		"target_language", targetLang,
		"input_language", inputLang,
		"entries", track.Len(),
		"format", ext,
		"provider", providerStr,
		"model", model,
	)

	opts := translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		BatchSize:      batchSize,
	}

	translator, err := translate.Factory(ctx, provider, apiKey, opts)
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	items := make([]translate.TranslationItem, track.Len())
	for i, entry := range track.Entries {
		items[i] = translate.TranslationItem{
			Index: i,
			Text:  entry.Text,
		}
	}

	logger.Infow("Translating entries",
		"items", len(items),
		"concurrency", concurrency,
	)

	var results []translate.TranslationResult
	if ct, ok := translator.(translate.ConcurrentTranslator); ok {
		results, err = ct.TranslateWithConcurrency(ctx, items, concurrency)
	} else {
		results, err = translator.Translate(ctx, items)
	}
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	// same entry count and timing as the input, translated text
	out := &subtitle.Track{
		Entries: make([]subtitle.Entry, track.Len()),
		Timed:   track.Timed,
	}
	copy(out.Entries, track.Entries)
	for _, result := range results {
		if result.Index < 0 || result.Index >= len(out.Entries) {
			logger.Warnw("Skipping invalid result index",
				"index", result.Index,
				"max", len(out.Entries)-1,
			)
			continue
		}
		out.Entries[result.Index].Text = result.Text
	}

	if out.Timed && !strings.HasSuffix(strings.ToLower(outputPath), ".txt") {
		err = subtitle.WriteSRT(out, outputPath)
	} else {
		err = subtitle.WritePlainText(out, outputPath)
	}
	if err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Translation track written: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", track.Len())
	fmt.Printf("  Target language: %s\n", targetLang)

	return nil
}
