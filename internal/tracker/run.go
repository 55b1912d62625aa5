package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"cleanstage/internal/artifacts"
	"cleanstage/internal/failures"
	"cleanstage/internal/logging"
)

// Options configure a new run.
type Options struct {
	Project string
	JobType string
	// WorkDir is the parent of the run's scratch directory.
	WorkDir string
	Logger  *slog.Logger
}

// Run is an active tracked execution.
type Run struct {
	id         string
	store      ArtifactStore
	logger     *slog.Logger
	scratchDir string

	mu       sync.Mutex
	config   map[string]any
	finished bool
}

// Start registers a new run and creates its scratch directory.
func Start(ctx context.Context, store ArtifactStore, opts Options) (*Run, error) {
	if store == nil {
		return nil, failures.Wrap(failures.ErrResolution, "tracker", "start", "artifact store unavailable", nil)
	}
	if opts.WorkDir == "" {
		return nil, failures.Wrap(failures.ErrConfiguration, "tracker", "start", "work directory is required", nil)
	}

	id := uuid.NewString()
	scratch := filepath.Join(opts.WorkDir, id)
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return nil, failures.Wrap(failures.ErrIO, "tracker", "start", "create scratch directory", err)
	}

	if _, err := store.CreateRun(ctx, artifacts.Run{ID: id, Project: opts.Project, JobType: opts.JobType}); err != nil {
		_ = os.RemoveAll(scratch)
		return nil, failures.Wrap(failures.ErrResolution, "tracker", "start", "register run", err)
	}

	logger := logging.NewComponentLogger(opts.Logger, "tracker").With(logging.String(logging.FieldRunID, id))
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("project", opts.Project),
		logging.String("job_type", opts.JobType),
	)

	return &Run{
		id:         id,
		store:      store,
		logger:     logger,
		scratchDir: scratch,
		config:     make(map[string]any),
	}, nil
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.id
}

// Logger returns a logger tagged with the run id.
func (r *Run) Logger() *slog.Logger {
	return r.logger
}

// Context annotates ctx with the run id for context-aware logging.
func (r *Run) Context(ctx context.Context) context.Context {
	return logging.WithRunID(ctx, r.id)
}

// UpdateConfig merges values into the run's recorded configuration.
func (r *Run) UpdateConfig(ctx context.Context, values map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, value := range values {
		r.config[key] = value
	}
	payload, err := json.Marshal(r.config)
	if err != nil {
		return failures.Wrap(failures.ErrConfiguration, "tracker", "update config", "encode run config", err)
	}
	if err := r.store.UpdateRunConfig(ctx, r.id, string(payload)); err != nil {
		return failures.Wrap(failures.ErrIO, "tracker", "update config", "record run config", err)
	}
	return nil
}

// UseArtifact resolves raw into a local file and records the artifact as an
// input of this run.
func (r *Run) UseArtifact(ctx context.Context, raw string) (artifacts.Artifact, string, error) {
	ref, err := artifacts.ParseReference(raw)
	if err != nil {
		return artifacts.Artifact{}, "", err
	}
	artifact, path, err := r.store.Resolve(ctx, ref, r.scratchDir)
	if err != nil {
		return artifacts.Artifact{}, "", err
	}
	if err := r.store.LinkArtifact(ctx, r.id, artifact.ID, artifacts.DirectionInput); err != nil {
		return artifacts.Artifact{}, "", failures.Wrap(failures.ErrResolution, "tracker", "use artifact",
			fmt.Sprintf("record %s as run input", artifact.Ref()), err)
	}
	r.logger.Info("artifact resolved",
		logging.String(logging.FieldEventType, "artifact_used"),
		logging.String(logging.FieldArtifact, artifact.Ref()),
		logging.String("requested", ref.String()),
	)
	return artifact, path, nil
}

// NewArtifact describes an artifact to be logged by this run.
func (r *Run) NewArtifact(name, artifactType, description string) (*artifacts.Draft, error) {
	return r.store.Create(name, artifactType, description)
}

// LogArtifact publishes draft and records it as an output of this run.
func (r *Run) LogArtifact(ctx context.Context, draft *artifacts.Draft) (artifacts.Artifact, error) {
	artifact, err := r.store.Publish(ctx, draft, r.id)
	if err != nil {
		return artifacts.Artifact{}, err
	}
	if err := r.store.LinkArtifact(ctx, r.id, artifact.ID, artifacts.DirectionOutput); err != nil {
		return artifacts.Artifact{}, failures.Wrap(failures.ErrPublish, "tracker", "log artifact",
			fmt.Sprintf("record %s as run output", artifact.Ref()), err)
	}
	r.logger.Info("artifact logged",
		logging.String(logging.FieldEventType, "artifact_logged"),
		logging.String(logging.FieldArtifact, artifact.Ref()),
		logging.String("sha256", artifact.SHA256),
		logging.Int64("size_bytes", artifact.SizeBytes),
	)
	return artifact, nil
}

// Finish records the terminal status and removes the scratch directory.
// runErr is the error the run ended with, nil on success. Calling Finish more
// than once is a no-op.
func (r *Run) Finish(ctx context.Context, runErr error) error {
	r.mu.Lock()
	if r.finished {
		r.mu.Unlock()
		return nil
	}
	r.finished = true
	r.mu.Unlock()

	status := artifacts.RunFinished
	message := ""
	if runErr != nil {
		status = artifacts.RunFailed
		message = runErr.Error()
	}

	// The record must reach its terminal state even when ctx was cancelled.
	var errs []error
	if err := r.store.FinishRun(context.WithoutCancel(ctx), r.id, status, message); err != nil {
		errs = append(errs, failures.Wrap(failures.ErrIO, "tracker", "finish", "record run status", err))
	}
	if err := os.RemoveAll(r.scratchDir); err != nil {
		errs = append(errs, failures.Wrap(failures.ErrIO, "tracker", "finish", "remove scratch directory", err))
	}

	if runErr != nil {
		r.logger.Warn("run failed",
			logging.String(logging.FieldEventType, "run_failed"),
			logging.String(logging.FieldErrorKind, failures.Kind(runErr)),
			logging.Error(runErr),
		)
	} else {
		r.logger.Info("run finished", logging.String(logging.FieldEventType, "run_finished"))
	}
	return errors.Join(errs...)
}
