package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cleanstage/internal/artifacts"
	"cleanstage/internal/cleaning"
	"cleanstage/internal/logging"
	"cleanstage/internal/preflight"
	"cleanstage/internal/tracker"
)

func runStage(cmd *cobra.Command, ctx *commandContext, params cleaning.Params) (err error) {
	if err := params.Validate(); err != nil {
		return err
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	stage, err := cleaning.New(params, cleaning.SettingsFromConfig(cfg))
	if err != nil {
		return err
	}

	logger, closer, err := ctx.newLogger()
	if err != nil {
		return err
	}
	defer closer.Close()
	logger = logging.NewComponentLogger(logger, "cli")

	if err := preflight.Err(preflight.RunAll(cfg)); err != nil {
		return err
	}

	store, err := artifacts.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	tracker.PruneScratch(cfg.Paths.WorkDir, tracker.DefaultScratchMaxAge, logger)

	run, err := tracker.Start(runCtx, store, tracker.Options{
		Project: cfg.Tracker.Project,
		JobType: cfg.Tracker.JobType,
		WorkDir: cfg.Paths.WorkDir,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if finishErr := run.Finish(runCtx, err); finishErr != nil {
			logger.Warn("run finish failed",
				logging.String(logging.FieldEventType, "run_finish_failed"),
				logging.String(logging.FieldErrorHint, "inspect the run with 'cleanstage runs list'"),
				logging.Error(finishErr),
			)
			err = errors.Join(err, finishErr)
		}
	}()

	result, err := stage.Execute(run.Context(runCtx), run)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Published %s from %s (%d of %d rows kept) -> %s\n",
		result.Output.Ref(), result.Input.Ref(), result.RowsOut, result.RowsIn, result.OutputPath)
	return nil
}
