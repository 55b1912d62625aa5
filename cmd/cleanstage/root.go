package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"cleanstage/internal/cleaning"
	"cleanstage/internal/failures"
)

var stageFlagNames = []string{
	"input_artifact",
	"output_artifact",
	"output_type",
	"output_description",
	"min_price",
	"max_price",
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var params cleaning.Params

	ctx := newCommandContext(&configFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:   "cleanstage",
		Short: "A very basic data cleaning",
		Long: "Download the raw listings artifact, drop price outliers, convert last_review\n" +
			"to dates, and publish the result as a new artifact version.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd.Flags(), stageFlagNames); err != nil {
				return err
			}
			return runStage(cmd, ctx, params)
		},
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return failures.Wrap(failures.ErrConfiguration, "cli", "parse flags", cmd.CommandPath(), err)
	})

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	flags := rootCmd.Flags()
	flags.StringVar(&params.InputArtifact, "input_artifact", "", "name:tag of input artifact (sample.csv:latest) (required)")
	flags.StringVar(&params.OutputArtifact, "output_artifact", "", "name of output artifact (clean_sample.csv) (required)")
	flags.StringVar(&params.OutputType, "output_type", "", "type of the output artifact (required)")
	flags.StringVar(&params.OutputDescription, "output_description", "", "description of the output artifact (required)")
	flags.Float64Var(&params.MinPrice, "min_price", 0, "minimum daily rate for NYC rentals (required)")
	flags.Float64Var(&params.MaxPrice, "max_price", 0, "maximum daily rate for NYC rentals (required)")

	rootCmd.AddCommand(newArtifactsCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

// requireFlags reports every named flag that was not set on the command line.
// Used instead of MarkFlagRequired so a missing flag exits with the
// configuration code.
func requireFlags(flags *pflag.FlagSet, names []string) error {
	var missing []string
	for _, name := range names {
		if !flags.Changed(name) {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return failures.Wrap(failures.ErrConfiguration, "cli", "parse flags",
		fmt.Sprintf("required flag(s) not set: %s", strings.Join(missing, ", ")), nil)
}
