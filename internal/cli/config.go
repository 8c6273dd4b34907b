package cli

import (
	"fmt"
	"os"

	"github.com/mgpai22/srt2titles/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change saved preferences",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderConfig(cfg))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.Path())
		return nil
	},
}

var configSetTemplateCmd = &cobra.Command{
	Use:   "set-template [template_file]",
	Short: "Remember a title template for future conversions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := setTemplate(cfg, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Template saved: %s\n", cfg.TemplatePath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configPathCmd, configSetTemplateCmd)
}

func setTemplate(cfg *config.Config, templatePath string) error {
	info, err := os.Stat(templatePath)
	if err != nil {
		return fmt.Errorf("template not found: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("template %s is a directory", templatePath)
	}
	if err := cfg.RememberTemplate(templatePath); err != nil {
		return fmt.Errorf("failed to save template path: %w", err)
	}
	logger.Debugw("Saved template path", "template", cfg.TemplatePath, "config", cfg.Path())
	return nil
}

func renderConfig(cfg *config.Config) string {
	template := cfg.TemplatePath
	if template == "" {
		template = "(not set)"
	}
	rows := [][]string{
		{"config", cfg.Path()},
		{"template_path", template},
		{"fps", formatFPS(cfg.FPS)},
		{"output_dir_name", cfg.OutputDirName},
		{"filler_suffix", cfg.FillerSuffix},
		{"encoding", cfg.Encoding},
	}
	return renderTable([]string{"Key", "Value"}, rows, nil)
}
