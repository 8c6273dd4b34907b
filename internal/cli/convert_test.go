package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/srt2titles/internal/config"
	"github.com/mgpai22/srt2titles/internal/logging"
	"github.com/mgpai22/srt2titles/internal/subtitle"
	"github.com/mgpai22/srt2titles/internal/titles"
	"github.com/mgpai22/srt2titles/internal/video"
)

const testTemplate = `<kdenlivetitle duration="0" LC_NUMERIC="C" width="1920" height="1080" out="0">
 <item type="QGraphicsTextItem" z-index="0">
  <content line-spacing="0">placeholder</content>
 </item>
</kdenlivetitle>
`

const testSRT = `1
00:00:01,000 --> 00:00:02,500
Hello

2
00:00:02,500 --> 00:00:04,000
World & more
`

type fixture struct {
	dir      string
	srt      string
	template string
	cfg      *config.Config
}

func newFixture(t *testing.T, srt string) fixture {
	t.Helper()
	logger = logging.NewNop()

	dir := t.TempDir()
	f := fixture{
		dir:      dir,
		srt:      filepath.Join(dir, "talk.srt"),
		template: filepath.Join(dir, "title.kdenlivetitle"),
	}
	if err := os.WriteFile(f.srt, []byte(srt), 0o644); err != nil {
		t.Fatalf("failed to write srt: %v", err)
	}
	if err := os.WriteFile(f.template, []byte(testTemplate), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	cfg, err := config.Load(filepath.Join(dir, "config", "config.yaml"))
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}
	f.cfg = cfg
	return f
}

func (f fixture) options() convertOptions {
	return convertOptions{
		SubtitlePath: f.srt,
		TemplatePath: f.template,
		FPS:          f.cfg.FPS,
		FillerSuffix: f.cfg.FillerSuffix,
		Encoding:     f.cfg.Encoding,
	}
}

func TestConvertWritesTitleClips(t *testing.T) {
	f := newFixture(t, testSRT)

	res, err := convert(context.Background(), f.cfg, f.options(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("convert() error: %v", err)
	}

	wantDir := filepath.Join(f.dir, "kdenlive titles")
	if res.OutputDir != wantDir {
		t.Errorf("OutputDir = %q, want %q", res.OutputDir, wantDir)
	}

	want := map[string]string{
		"1_blank.kdenlivetitle": `duration="60"`,
		"2.kdenlivetitle":       `duration="90"`,
		"3.kdenlivetitle":       `duration="90"`,
	}
	for name, attr := range want {
		data, err := os.ReadFile(filepath.Join(wantDir, name))
		if err != nil {
			t.Errorf("missing %s: %v", name, err)
			continue
		}
		if !strings.Contains(string(data), attr) {
			t.Errorf("%s does not contain %s:\n%s", name, attr, data)
		}
	}

	last, _ := os.ReadFile(filepath.Join(wantDir, "3.kdenlivetitle"))
	if !strings.Contains(string(last), `<content line-spacing="0">World &amp; more</content>`) {
		t.Errorf("content not rewritten:\n%s", last)
	}

	if res.Summary.Subtitles != 2 || res.Summary.Fillers != 1 || res.Summary.TotalFrames != 240 {
		t.Errorf("unexpected summary %+v", res.Summary)
	}
	if res.Bytes <= 0 {
		t.Errorf("Bytes = %d, want > 0", res.Bytes)
	}
}

func TestConvertRemembersTemplate(t *testing.T) {
	f := newFixture(t, testSRT)

	if _, err := convert(context.Background(), f.cfg, f.options(), &bytes.Buffer{}); err != nil {
		t.Fatalf("convert() error: %v", err)
	}

	reloaded, err := config.Load(f.cfg.Path())
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}
	abs, _ := filepath.Abs(f.template)
	if reloaded.TemplatePath != abs {
		t.Errorf("TemplatePath = %q, want %q", reloaded.TemplatePath, abs)
	}

	// the remembered template is used when none is given
	opts := f.options()
	opts.TemplatePath = ""
	opts.OutputDir = filepath.Join(f.dir, "second")
	if _, err := convert(context.Background(), reloaded, opts, &bytes.Buffer{}); err != nil {
		t.Fatalf("convert() with remembered template error: %v", err)
	}
}

func TestConvertRequiresTemplate(t *testing.T) {
	f := newFixture(t, testSRT)
	opts := f.options()
	opts.TemplatePath = ""

	_, err := convert(context.Background(), f.cfg, opts, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "template is required") {
		t.Errorf("expected missing template error, got %v", err)
	}
}

func TestConvertNoCuesWritesNothing(t *testing.T) {
	f := newFixture(t, "just some text\n\nwithout timecodes\n")
	opts := f.options()
	opts.OutputDir = filepath.Join(f.dir, "out")

	_, err := convert(context.Background(), f.cfg, opts, &bytes.Buffer{})
	if !errors.Is(err, subtitle.ErrNoCues) {
		t.Fatalf("expected ErrNoCues, got %v", err)
	}
	if _, err := os.Stat(opts.OutputDir); !os.IsNotExist(err) {
		t.Error("output folder should not be created when parsing fails")
	}
}

func TestConvertRejectsInvalidFPS(t *testing.T) {
	f := newFixture(t, testSRT)
	opts := f.options()
	opts.FPS = 0

	_, err := convert(context.Background(), f.cfg, opts, &bytes.Buffer{})
	if !errors.Is(err, titles.ErrInvalidFrameRate) {
		t.Errorf("expected ErrInvalidFrameRate, got %v", err)
	}
}

func TestConvertMissingSubtitle(t *testing.T) {
	f := newFixture(t, testSRT)
	opts := f.options()
	opts.SubtitlePath = filepath.Join(f.dir, "missing.srt")

	if _, err := convert(context.Background(), f.cfg, opts, &bytes.Buffer{}); err == nil {
		t.Error("expected error for missing subtitle file")
	}
}

func TestConvertClear(t *testing.T) {
	f := newFixture(t, testSRT)
	opts := f.options()
	opts.OutputDir = filepath.Join(f.dir, "out")
	opts.Clear = true

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(opts.OutputDir, "99.kdenlivetitle")
	notes := filepath.Join(opts.OutputDir, "notes.txt")
	for _, p := range []string{stale, notes} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := convert(context.Background(), f.cfg, opts, &bytes.Buffer{}); err != nil {
		t.Fatalf("convert() error: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale title clip should be removed")
	}
	if _, err := os.Stat(notes); err != nil {
		t.Error("unrelated file should be kept")
	}
}

func TestConvertCustomFillerSuffix(t *testing.T) {
	f := newFixture(t, testSRT)
	opts := f.options()
	opts.OutputDir = filepath.Join(f.dir, "out")
	opts.FillerSuffix = "_"

	if _, err := convert(context.Background(), f.cfg, opts, &bytes.Buffer{}); err != nil {
		t.Fatalf("convert() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(opts.OutputDir, "1_.kdenlivetitle")); err != nil {
		t.Errorf("expected 1_.kdenlivetitle: %v", err)
	}
}

func TestConvertDryRun(t *testing.T) {
	f := newFixture(t, testSRT)
	opts := f.options()
	opts.DryRun = true

	var out bytes.Buffer
	res, err := convert(context.Background(), f.cfg, opts, &out)
	if err != nil {
		t.Fatalf("convert() error: %v", err)
	}

	if len(res.Descriptors) != 3 {
		t.Errorf("got %d descriptors, want 3", len(res.Descriptors))
	}
	for _, want := range []string{"1_blank.kdenlivetitle", "filler", "World & more", "00:00:02,500"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("dry run output missing %q:\n%s", want, out.String())
		}
	}
	if _, err := os.Stat(filepath.Join(f.dir, "kdenlive titles")); !os.IsNotExist(err) {
		t.Error("dry run should not create the output folder")
	}

	reloaded, _ := config.Load(f.cfg.Path())
	if reloaded.TemplatePath != "" {
		t.Error("dry run should not save the template path")
	}
}

func TestConvertLegacyEncoding(t *testing.T) {
	// "Café" in windows-1252
	srt := []byte("1\n00:00:00,000 --> 00:00:01,000\nCaf\xe9\n")
	f := newFixture(t, string(srt))
	opts := f.options()
	opts.Encoding = "windows-1252"
	opts.DryRun = true

	var out bytes.Buffer
	res, err := convert(context.Background(), f.cfg, opts, &out)
	if err != nil {
		t.Fatalf("convert() error: %v", err)
	}
	if got := res.Descriptors[0].Text; got != "Café" {
		t.Errorf("Text = %q, want %q", got, "Café")
	}
}

func TestRenderVideoInfo(t *testing.T) {
	out := renderVideoInfo(&video.Info{
		Path:      "clip.mp4",
		FrameRate: 29.97,
		Width:     1920,
		Height:    1080,
		Codec:     "h264",
		HasAudio:  true,
	})
	for _, want := range []string{"clip.mp4", "29.97", "1920x1080", "h264", "yes"} {
		if !strings.Contains(out, want) {
			t.Errorf("video info missing %q:\n%s", want, out)
		}
	}
}

func TestPreview(t *testing.T) {
	short := "short line"
	if got := preview(short); got != short {
		t.Errorf("preview(%q) = %q", short, got)
	}
	long := strings.Repeat("é", previewWidth+10)
	got := preview(long)
	if len([]rune(got)) != previewWidth || !strings.HasSuffix(got, "...") {
		t.Errorf("preview of long text = %q", got)
	}
}

func TestFormatFPS(t *testing.T) {
	tests := map[float64]string{
		60:     "60",
		23.976: "23.976",
		25:     "25",
	}
	for fps, want := range tests {
		if got := formatFPS(fps); got != want {
			t.Errorf("formatFPS(%v) = %q, want %q", fps, got, want)
		}
	}
}
