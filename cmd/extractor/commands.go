package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blendin/extractor/internal/config"
	"github.com/blendin/extractor/pkg/artifact"
)

type flags struct {
	configPath string
	sourcePath string
	outputPath string
	marker     string
	logLevel   string
	upload     bool
}

// overrides returns the config keys set explicitly on the command line.
func (f *flags) overrides(cmd *cobra.Command) map[string]any {
	out := map[string]any{}
	set := func(name, key string, value any) {
		if cmd.Flags().Changed(name) {
			out[key] = value
		}
	}
	set("source", "source_path", f.sourcePath)
	set("output", "output_path", f.outputPath)
	set("marker", "marker", f.marker)
	set("log-level", "log.level", f.logLevel)
	set("upload", "upload", f.upload)
	return out
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:           "extractor",
		Short:         "Extract translatable strings from a JavaScript/TypeScript source tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtractCmd(cmd, f)
		},
	}

	rootCmd.PersistentFlags().StringVar(&f.configPath, "config", "", "Config file path (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&f.sourcePath, "source", "", "Source root (overrides INPUT_SOURCE_PATH)")
	rootCmd.PersistentFlags().StringVar(&f.outputPath, "output", artifact.DefaultPath, "Artifact path")
	rootCmd.PersistentFlags().StringVar(&f.marker, "marker", "t", "Translation function name")
	rootCmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract strings and write the localization map",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtractCmd(cmd, f)
		},
	}
	for _, cmd := range []*cobra.Command{rootCmd, extractCmd} {
		cmd.Flags().BoolVar(&f.upload, "upload", false, "Hand the artifact to the uploader (dry run)")
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Rewrite the localization map whenever source files change",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatchCmd(cmd, f)
		},
	}

	verifyCmd := &cobra.Command{
		Use:   "verify [path]",
		Short: "Check that an artifact is a well-formed localization map",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := config.Read(f.configPath, f.overrides(cmd))
				if err != nil {
					return err
				}
				path = cfg.OutputPath
			}
			summary, err := artifact.Verify(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries, %d bytes\n", summary.Path, summary.Entries, summary.Size)
			return nil
		},
	}

	rootCmd.AddCommand(extractCmd, watchCmd, verifyCmd)
	return rootCmd
}

func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	return config.Load(f.configPath, f.overrides(cmd))
}

func runExtractCmd(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	app, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	return app.extract(cmd.Context(), os.Getenv)
}

func runWatchCmd(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	app, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	return app.watch(cmd.Context())
}
