package cli

import (
	"fmt"
	"strconv"

	"github.com/mgpai22/srt2titles/internal/subtitle"
	"github.com/mgpai22/srt2titles/internal/video"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe [video_file]",
	Short: "Show the frame rate and format of a video file",
	Long: `Run ffprobe on a video file and print its frame rate, resolution,
codec and duration. The frame rate is what convert --fps-from uses.`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	logger.Debugw("Probing video", "input", args[0])

	info, err := video.Probe(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderVideoInfo(info))
	return nil
}

func renderVideoInfo(info *video.Info) string {
	audio := "no"
	if info.HasAudio {
		audio = "yes"
	}
	rows := [][]string{
		{"File", info.Path},
		{"Frame rate", formatFPS(info.FrameRate)},
		{"Resolution", strconv.Itoa(info.Width) + "x" + strconv.Itoa(info.Height)},
		{"Codec", info.Codec},
		{"Duration", subtitle.FormatTimecode(info.Duration)},
		{"Audio", audio},
	}
	return renderTable([]string{"Property", "Value"}, rows, nil)
}
