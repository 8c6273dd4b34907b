package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/mgpai22/srt2titles/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "srt2titles",
	Short: "Turn SRT subtitles into Kdenlive title clips",
	Long: `srt2titles converts an SRT subtitle file into a numbered sequence of
Kdenlive title clips built from a template, with blank clips filling the
gaps between cues. Dropped onto a timeline in filename order, the clips
line up with the original subtitle timing.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// API keys may live in a .env next to the project; a missing file is fine
		_ = godotenv.Load()
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file path (default: user config dir)")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Source language of the subtitles (e.g., en, english)")
}
