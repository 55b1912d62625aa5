package cleaning

import (
	"context"
	"fmt"
	"log/slog"

	"cleanstage/internal/artifacts"
	"cleanstage/internal/dataset"
	"cleanstage/internal/failures"
	"cleanstage/internal/logging"
)

const stageName = "basic_cleaning"

// State is a step of the stage state machine.
type State string

const (
	StateStart      State = "start"
	StateResolved   State = "resolved"
	StateLoaded     State = "loaded"
	StateFiltered   State = "filtered"
	StateNormalized State = "normalized"
	StateSerialized State = "serialized"
	StatePublished  State = "published"
	StateFinished   State = "finished"
	StateAborted    State = "aborted"
)

// Tracker is the run context the stage reports to.
type Tracker interface {
	UpdateConfig(ctx context.Context, values map[string]any) error
	UseArtifact(ctx context.Context, raw string) (artifacts.Artifact, string, error)
	NewArtifact(name, artifactType, description string) (*artifacts.Draft, error)
	LogArtifact(ctx context.Context, draft *artifacts.Draft) (artifacts.Artifact, error)
	Logger() *slog.Logger
}

// Result describes a completed stage execution.
type Result struct {
	Input      artifacts.Artifact
	Output     artifacts.Artifact
	OutputPath string
	RowsIn     int
	RowsOut    int
	Range      dataset.RangeStats
	Dates      dataset.DateStats
}

// Stage filters and normalizes one listings artifact.
type Stage struct {
	params   Params
	settings Settings
	state    State
	logger   *slog.Logger
}

// New validates params and returns a stage ready to execute.
func New(params Params, settings Settings) (*Stage, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if settings.PriceColumn == "" || settings.DateColumn == "" {
		return nil, failures.Wrap(failures.ErrConfiguration, "cleaning", "new stage", "price and date columns are required", nil)
	}
	if settings.MalformedDates == "" {
		settings.MalformedDates = dataset.MalformedFail
	}
	switch settings.MalformedDates {
	case dataset.MalformedFail, dataset.MalformedDrop, dataset.MalformedNull:
	default:
		return nil, failures.Wrap(failures.ErrConfiguration, "cleaning", "new stage",
			fmt.Sprintf("unknown malformed date policy %q", settings.MalformedDates), nil)
	}
	return &Stage{params: params, settings: settings, state: StateStart}, nil
}

// State reports the last state the stage reached.
func (s *Stage) State() State {
	return s.state
}

// OutputPath is where the cleaned CSV is written.
func (s *Stage) OutputPath() string {
	return s.settings.outputPath(s.params.OutputArtifact)
}

// Execute runs the stage against run. Nothing is published unless every step
// before publishing succeeded.
func (s *Stage) Execute(ctx context.Context, run Tracker) (result Result, err error) {
	ctx = logging.WithStage(ctx, stageName)
	s.logger = logging.WithContext(ctx, logging.NewComponentLogger(run.Logger(), "cleaning"))
	s.state = StateStart
	s.logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("input_artifact", s.params.InputArtifact),
		logging.String("output_artifact", s.params.OutputArtifact),
	)

	defer func() {
		if err != nil {
			s.abort(err)
		}
	}()

	if err := run.UpdateConfig(ctx, s.params.ConfigValues()); err != nil {
		return Result{}, err
	}

	input, localPath, err := run.UseArtifact(ctx, s.params.InputArtifact)
	if err != nil {
		return Result{}, err
	}
	result.Input = input
	s.transition(StateResolved, logging.String(logging.FieldArtifact, input.Ref()))

	if err := ctx.Err(); err != nil {
		return Result{}, failures.Wrap(failures.ErrIO, "cleaning", "load", "cancelled", err)
	}
	data, err := dataset.ReadFile(localPath)
	if err != nil {
		return Result{}, err
	}
	for _, column := range []string{s.settings.PriceColumn, s.settings.DateColumn} {
		if _, ok := data.Column(column); !ok {
			return Result{}, failures.Wrap(failures.ErrFormat, "cleaning", "load",
				fmt.Sprintf("%s has no %q column", input.Ref(), column), nil)
		}
	}
	result.RowsIn = data.Len()
	s.transition(StateLoaded, logging.Int("rows", data.Len()), logging.Int("columns", len(data.Header)))

	filtered, rangeStats, err := data.FilterRange(s.settings.PriceColumn, s.params.MinPrice, s.params.MaxPrice)
	if err != nil {
		return Result{}, err
	}
	result.Range = rangeStats
	s.transition(StateFiltered,
		logging.Float64("min_price", s.params.MinPrice),
		logging.Float64("max_price", s.params.MaxPrice),
		logging.Int("kept", rangeStats.Kept),
		logging.Int("out_of_range", rangeStats.OutOfRange),
		logging.Int("missing_price", rangeStats.Missing),
		logging.Int("non_numeric_price", rangeStats.NonNumeric),
	)

	normalized, dateStats, err := filtered.NormalizeDates(s.settings.DateColumn, s.settings.dateOptions())
	if err != nil {
		return Result{}, err
	}
	result.Dates = dateStats
	result.RowsOut = normalized.Len()
	s.transition(StateNormalized,
		logging.String("column", s.settings.DateColumn),
		logging.Int("parsed", dateStats.Parsed),
		logging.Int("missing", dateStats.Missing),
		logging.Int("dropped", dateStats.Dropped),
		logging.Int("nulled", dateStats.Nulled),
	)

	if err := ctx.Err(); err != nil {
		return Result{}, failures.Wrap(failures.ErrIO, "cleaning", "serialize", "cancelled", err)
	}
	outputPath := s.OutputPath()
	if err := normalized.WriteFile(outputPath); err != nil {
		return Result{}, err
	}
	result.OutputPath = outputPath
	s.transition(StateSerialized, logging.String("path", outputPath), logging.Int("rows", normalized.Len()))

	draft, err := run.NewArtifact(s.params.OutputArtifact, s.params.OutputType, s.params.OutputDescription)
	if err != nil {
		return Result{}, err
	}
	if err := draft.AttachFile(outputPath); err != nil {
		return Result{}, err
	}
	output, err := run.LogArtifact(ctx, draft)
	if err != nil {
		return Result{}, err
	}
	result.Output = output
	s.transition(StatePublished, logging.String(logging.FieldArtifact, output.Ref()))

	s.transition(StateFinished)
	return result, nil
}

func (s *Stage) transition(next State, attrs ...logging.Attr) {
	s.state = next
	attrs = append([]logging.Attr{
		logging.String(logging.FieldEventType, "stage_transition"),
		logging.String(logging.FieldState, string(next)),
	}, attrs...)
	s.logger.Info("stage "+string(next), logging.Args(attrs...)...)
}

func (s *Stage) abort(err error) {
	failedIn := s.state
	s.state = StateAborted
	logging.ErrorWithContext(s.logger, "stage aborted", "stage_transition",
		logging.String(logging.FieldState, string(StateAborted)),
		logging.String("after", string(failedIn)),
		logging.String(logging.FieldErrorKind, failures.Kind(err)),
		logging.String(logging.FieldErrorHint, hintFor(err)),
		logging.Error(err),
	)
}

func hintFor(err error) string {
	switch failures.Kind(err) {
	case "resolution":
		return "check the input artifact name and version with 'cleanstage artifacts list'"
	case "format":
		return "inspect the input file; it must be CSV with price and last_review columns"
	case "publish":
		return "check the output artifact name and type against existing versions"
	case "configuration":
		return "check the command-line parameters and config file"
	default:
		return "check the output directory and store permissions"
	}
}
