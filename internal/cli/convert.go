package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mgpai22/srt2titles/internal/config"
	"github.com/mgpai22/srt2titles/internal/fsutil"
	"github.com/mgpai22/srt2titles/internal/subtitle"
	"github.com/mgpai22/srt2titles/internal/titles"
	"github.com/mgpai22/srt2titles/internal/translate"
	"github.com/mgpai22/srt2titles/internal/video"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var convertCmd = &cobra.Command{
	Use:   "convert [subtitle_file]",
	Short: "Convert an SRT file into Kdenlive title clips",
	Long: `Convert an SRT subtitle file into numbered Kdenlive title clips.

Every cue becomes one clip whose length matches the cue. Gaps between cues
become blank clips, so importing the folder in filename order rebuilds the
subtitle timing on the timeline. The title template is remembered for the
next run.

Examples:
  srt2titles convert talk.srt -t lower-third.kdenlivetitle
  srt2titles convert talk.srt --fps-from talk.mp4 --clear
  srt2titles convert talk.srt --dry-run
  srt2titles convert talk.srt --translate-to spanish --provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().
		StringP("template", "t", "", "Kdenlive title template (default: last used)")
	convertCmd.Flags().
		Float64("fps", 0, "Timeline frame rate (default from config, 60)")
	convertCmd.Flags().
		String("fps-from", "", "Read the frame rate from a video file with ffprobe")
	convertCmd.Flags().
		StringP("output", "o", "", "Output folder (default: <subtitle dir>/kdenlive titles)")
	convertCmd.Flags().
		Bool("clear", false, "Remove existing title clips from the output folder first")
	convertCmd.Flags().
		String("filler-suffix", "", "Filename suffix for blank clips (default _blank)")
	convertCmd.Flags().
		String("encoding", "", "Subtitle file encoding (default utf-8, e.g. windows-1252)")
	convertCmd.Flags().
		Bool("dry-run", false, "Print the clips that would be written without writing them")

	convertCmd.Flags().
		String("translate-to", "", "Translate cue text to this language before rendering")
	convertCmd.Flags().
		String("provider", "gemini", "Translation provider (gemini, openai, anthropic)")
	convertCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	convertCmd.Flags().
		String("model", "", "Translation model (provider-specific, uses sensible defaults)")
	convertCmd.Flags().
		Int("batch-size", translate.DefaultBatchSize, "Number of cues per translation request")
	convertCmd.Flags().
		Int("concurrency", translate.DefaultConcurrency, "Number of parallel translation requests")

	convertCmd.MarkFlagsMutuallyExclusive("fps", "fps-from")
}

type convertOptions struct {
	SubtitlePath string
	TemplatePath string
	FPS          float64
	FPSFrom      string
	OutputDir    string
	Clear        bool
	FillerSuffix string
	Encoding     string
	DryRun       bool

	InputLanguage string
	Translation   *translationOptions
}

type translationOptions struct {
	TargetLanguage string
	Provider       translate.Provider
	APIKey         string
	Model          string
	BatchSize      int
	Concurrency    int
}

// what a conversion produced
type convertResult struct {
	OutputDir   string
	Descriptors []titles.Descriptor
	Summary     titles.Summary
	FPS         float64
	Bytes       int64
	Skipped     int
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	opts, err := convertOptionsFromFlags(cmd, args[0], cfg)
	if err != nil {
		return err
	}

	res, err := convert(cmd.Context(), cfg, opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if opts.DryRun {
		return nil
	}

	absOutput, _ := filepath.Abs(res.OutputDir)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Title clips written: %s\n", absOutput)
	fmt.Fprintf(out, "  Subtitles: %d\n", res.Summary.Subtitles)
	fmt.Fprintf(out, "  Blanks: %d\n", res.Summary.Fillers)
	fmt.Fprintf(out, "  Frames: %s at %s fps (%s)\n",
		humanize.Comma(int64(res.Summary.TotalFrames)),
		formatFPS(res.FPS),
		subtitle.FormatTimecode(res.Summary.Duration),
	)
	fmt.Fprintf(out, "  Size: %s\n", humanize.Bytes(uint64(res.Bytes)))
	if res.Skipped > 0 {
		fmt.Fprintf(out, "  Skipped blocks: %d\n", res.Skipped)
	}
	return nil
}

// flags override the config file, which overrides built-in defaults
func convertOptionsFromFlags(
	cmd *cobra.Command,
	subtitlePath string,
	cfg *config.Config,
) (convertOptions, error) {
	flags := cmd.Flags()

	opts := convertOptions{
		SubtitlePath: subtitlePath,
		FPS:          cfg.FPS,
		FillerSuffix: cfg.FillerSuffix,
		Encoding:     cfg.Encoding,
	}

	opts.TemplatePath, _ = flags.GetString("template")
	opts.FPSFrom, _ = flags.GetString("fps-from")
	opts.OutputDir, _ = flags.GetString("output")
	opts.Clear, _ = flags.GetBool("clear")
	opts.DryRun, _ = flags.GetBool("dry-run")
	opts.InputLanguage, _ = flags.GetString("language")

	if flags.Changed("fps") {
		opts.FPS, _ = flags.GetFloat64("fps")
	}
	if flags.Changed("filler-suffix") {
		opts.FillerSuffix, _ = flags.GetString("filler-suffix")
	}
	if flags.Changed("encoding") {
		opts.Encoding, _ = flags.GetString("encoding")
	}

	targetLang, _ := flags.GetString("translate-to")
	if targetLang == "" {
		return opts, nil
	}

	providerStr, _ := flags.GetString("provider")
	apiKey, _ := flags.GetString("api-key")
	model, _ := flags.GetString("model")
	batchSize, _ := flags.GetInt("batch-size")
	concurrency, _ := flags.GetInt("concurrency")

	if concurrency <= 0 {
		return opts, fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return opts, fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	provider := translate.Provider(strings.ToLower(providerStr))
	if apiKey == "" {
		apiKey = os.Getenv(provider.APIKeyEnv())
	}
	if apiKey == "" {
		return opts, fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			provider.APIKeyEnv(),
		)
	}

	opts.Translation = &translationOptions{
		TargetLanguage: targetLang,
		Provider:       provider,
		APIKey:         apiKey,
		Model:          model,
		BatchSize:      batchSize,
		Concurrency:    concurrency,
	}
	return opts, nil
}

// convert runs parse, optional translation, emit and write. Nothing touches
// the output folder until every descriptor has been rendered.
func convert(
	ctx context.Context,
	cfg *config.Config,
	opts convertOptions,
	out io.Writer,
) (*convertResult, error) {
	if _, err := os.Stat(opts.SubtitlePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("subtitle file not found: %s", opts.SubtitlePath)
	}

	templatePath := opts.TemplatePath
	if templatePath == "" {
		templatePath = cfg.TemplatePath
	}
	if templatePath == "" {
		return nil, fmt.Errorf(
			"title template is required: use --template or 'srt2titles config set-template'",
		)
	}
	templateData, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read title template: %w", err)
	}
	template := strings.TrimPrefix(string(templateData), "\ufeff")

	fps, err := resolveFPS(ctx, opts)
	if err != nil {
		return nil, err
	}

	logger.Infow("Parsing subtitle file",
		"input", opts.SubtitlePath,
		"encoding", opts.Encoding,
	)
	text, err := subtitle.ReadFile(opts.SubtitlePath, opts.Encoding)
	if err != nil {
		return nil, err
	}
	cues, stats, err := subtitle.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if stats.Skipped > 0 {
		logger.Warnw("Skipped blocks without a usable timecode",
			"skipped", stats.Skipped,
			"blocks", stats.Blocks,
		)
	}
	logger.Infow("Parsed subtitle file", "cues", len(cues))

	if opts.Translation != nil {
		cues, err = translateCues(ctx, cues, opts.InputLanguage, opts.Translation)
		if err != nil {
			return nil, err
		}
	}

	emitter := titles.NewEmitter(template, fps)
	emitter.FillerSuffix = opts.FillerSuffix
	descriptors, err := emitter.Emit(cues)
	if err != nil {
		return nil, fmt.Errorf("failed to build title clips: %w", err)
	}

	res := &convertResult{
		Descriptors: descriptors,
		Summary:     titles.Summarize(descriptors, fps),
		FPS:         fps,
		Skipped:     stats.Skipped,
	}
	logger.Debugw("Built timeline",
		"subtitles", res.Summary.Subtitles,
		"blanks", res.Summary.Fillers,
		"frames", res.Summary.TotalFrames,
	)

	if opts.DryRun {
		fmt.Fprintln(out, renderDescriptors(descriptors, fps))
		return res, nil
	}

	res.OutputDir = opts.OutputDir
	if res.OutputDir == "" {
		res.OutputDir = filepath.Join(filepath.Dir(opts.SubtitlePath), cfg.OutputDirName)
	}

	files := make([]fsutil.File, len(descriptors))
	for i, d := range descriptors {
		files[i] = fsutil.File{Name: d.Filename, Data: []byte(d.Content)}
	}
	dirOpts := fsutil.DirOptions{}
	if opts.Clear {
		dirOpts.ClearPattern = "*" + titles.DefaultExtension
	}

	logger.Infow("Writing title clips",
		"output", res.OutputDir,
		"files", len(files),
		"clear", opts.Clear,
	)
	res.Bytes, err = fsutil.WriteDir(ctx, res.OutputDir, files, dirOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to write title clips: %w", err)
	}

	if err := cfg.RememberTemplate(templatePath); err != nil {
		logger.Warnw("Could not remember template path", "error", err)
	}

	return res, nil
}

func resolveFPS(ctx context.Context, opts convertOptions) (float64, error) {
	if opts.FPSFrom == "" {
		if err := titles.ValidateFPS(opts.FPS); err != nil {
			return 0, fmt.Errorf("invalid frame rate %v: %w", opts.FPS, err)
		}
		return opts.FPS, nil
	}

	logger.Infow("Probing frame rate", "video", opts.FPSFrom)
	probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	info, err := video.Probe(probeCtx, opts.FPSFrom)
	if err != nil {
		return 0, fmt.Errorf("failed to read frame rate: %w", err)
	}
	if err := titles.ValidateFPS(info.FrameRate); err != nil {
		return 0, fmt.Errorf("video %s has no usable frame rate: %w", opts.FPSFrom, err)
	}
	logger.Infow("Using video frame rate", "fps", info.FrameRate)
	return info.FrameRate, nil
}

func translateCues(
	ctx context.Context,
	cues []subtitle.Cue,
	inputLang string,
	t *translationOptions,
) ([]subtitle.Cue, error) {
	if inputLang == "" {
		if tag := subtitle.DetectLanguage(cues); tag != language.Und {
			inputLang = languageName(tag)
			logger.Infow("Detected subtitle language", "language", inputLang)
		}
	}

	if inputLang != "" &&
		strings.EqualFold(strings.TrimSpace(inputLang), strings.TrimSpace(t.TargetLanguage)) {
		return nil, fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			t.TargetLanguage,
		)
	}

	translator, err := translate.Factory(ctx, t.Provider, t.APIKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: t.TargetLanguage,
		Model:          t.Model,
		BatchSize:      t.BatchSize,
		Concurrency:    t.Concurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}

	logger.Infow("Translating cues",
		"cues", len(cues),
		"target_language", t.TargetLanguage,
		"provider", t.Provider,
	)
	translated, err := translate.TranslateCues(ctx, translator, cues)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	return translated, nil
}

// English display name for a language tag, e.g. "Spanish"
func languageName(tag language.Tag) string {
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return tag.String()
}

const previewWidth = 48

func renderDescriptors(descriptors []titles.Descriptor, fps float64) string {
	rows := make([][]string, 0, len(descriptors))
	var elapsed int
	for _, d := range descriptors {
		rows = append(rows, []string{
			d.Filename,
			d.Kind.String(),
			subtitle.FormatTimecode(titles.FramesToDuration(elapsed, fps)),
			strconv.Itoa(d.Frames),
			preview(d.Text),
		})
		elapsed += d.Frames
	}
	return renderTable(
		[]string{"File", "Kind", "Start", "Frames", "Text"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewWidth {
		return text
	}
	return string(r[:previewWidth-3]) + "..."
}

func formatFPS(fps float64) string {
	return strconv.FormatFloat(fps, 'f', -1, 64)
}
