package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/srt2titles/internal/subtitle"
)

const (
	DefaultBatchSize   = 50
	DefaultConcurrency = 3
)

// single text item to translate
type TranslationItem struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// translated text item
type TranslationResult struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// interface for text translation
type Translator interface {
	Translate(
		ctx context.Context,
		items []TranslationItem,
	) ([]TranslationResult, error)
}

// translation service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// environment variable holding the provider's API key
func (p Provider) APIKeyEnv() string {
	switch p {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "API_KEY"
	}
}

type Options struct {
	InputLanguage  string
	TargetLanguage string
	Model          string
	Prompt         string
	BatchSize      int // items per API request (default 50)
	Concurrency    int // parallel requests (default 3)
}

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

func (o Options) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return DefaultConcurrency
}

// creates Translator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	switch provider {
	case ProviderGemini:
		return NewGeminiTranslator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranslator(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicTranslator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// TranslateCues returns copies of cues with translated text. Timing is
// untouched and cues with empty text are not sent.
func TranslateCues(
	ctx context.Context,
	translator Translator,
	cues []subtitle.Cue,
) ([]subtitle.Cue, error) {
	out := make([]subtitle.Cue, len(cues))
	copy(out, cues)

	items := make([]TranslationItem, 0, len(cues))
	for i, cue := range cues {
		if strings.TrimSpace(cue.Text) == "" {
			continue
		}
		items = append(items, TranslationItem{Index: i, Text: cue.Text})
	}
	if len(items) == 0 {
		return out, nil
	}

	results, err := translator.Translate(ctx, items)
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		if r.Index < 0 || r.Index >= len(out) {
			return nil, fmt.Errorf("translation result index %d out of range", r.Index)
		}
		out[r.Index].Text = r.Text
	}
	return out, nil
}

type batchFunc func(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error)

// Items are split into batches of BatchSize. Each batch becomes one API
// request; at most Concurrency requests run at once and the first failure
// cancels the rest. Results come back in item order.
func translateInBatches(
	ctx context.Context,
	items []TranslationItem,
	opts Options,
	translateBatch batchFunc,
) ([]TranslationResult, error) {
	if len(items) == 0 {
		return []TranslationResult{}, nil
	}

	batchSize := opts.batchSize()
	var batches [][]TranslationItem
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		batches = append(batches, items[i:end])
	}

	batchResults := make([][]TranslationResult, len(batches))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency())
	for i, batch := range batches {
		g.Go(func() error {
			results, err := translateBatch(ctx, batch)
			if err != nil {
				return fmt.Errorf("batch %d failed: %w", i, err)
			}
			if err := matchResults(batch, results); err != nil {
				return fmt.Errorf("batch %d failed: %w", i, err)
			}
			batchResults[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	allResults := make([]TranslationResult, 0, len(items))
	for _, results := range batchResults {
		allResults = append(allResults, results...)
	}
	return allResults, nil
}

// checks that results answer exactly the batch's items and puts them in
// item order
func matchResults(batch []TranslationItem, results []TranslationResult) error {
	if len(results) != len(batch) {
		return fmt.Errorf("expected %d results, got %d", len(batch), len(results))
	}

	byIndex := make(map[int]TranslationResult, len(results))
	for _, r := range results {
		byIndex[r.Index] = r
	}
	for i, item := range batch {
		r, ok := byIndex[item.Index]
		if !ok {
			return fmt.Errorf("missing result for index %d", item.Index)
		}
		results[i] = r
	}
	return nil
}

// BuildPrompt creates the translation prompt for LLM providers
func BuildPrompt(opts Options, items []TranslationItem) string {
	var sb strings.Builder

	if opts.InputLanguage != "" {
		sb.WriteString(fmt.Sprintf(
			"Translate the following %s subtitle texts to %s.\n\n",
			opts.InputLanguage,
			opts.TargetLanguage,
		))
	} else {
		sb.WriteString(fmt.Sprintf(
			"Translate the following subtitle texts to %s.\n\n",
			opts.TargetLanguage,
		))
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString(
		"1. Translate ONLY the text content, preserving the meaning.\n",
	)
	sb.WriteString(
		"2. Each text is shown as a single on-screen title; keep it on one line.\n",
	)
	sb.WriteString("3. Keep translations about as long as the originals.\n")
	sb.WriteString("4. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("5. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString(
		"6. The 'index' values must match the input indices exactly.\n",
	)
	sb.WriteString("7. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(
			fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt),
		)
	}

	sb.WriteString("Input JSON:\n")

	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)

	sb.WriteString("\n\nOutput the translated JSON array only:")

	return sb.String()
}
