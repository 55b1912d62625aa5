package tracker

import (
	"context"

	"cleanstage/internal/artifacts"
)

// ArtifactStore is the subset of the artifact registry a run depends on.
type ArtifactStore interface {
	CreateRun(ctx context.Context, run artifacts.Run) (artifacts.Run, error)
	UpdateRunConfig(ctx context.Context, runID, configJSON string) error
	LinkArtifact(ctx context.Context, runID string, artifactID int64, direction artifacts.Direction) error
	FinishRun(ctx context.Context, runID string, status artifacts.RunStatus, message string) error

	Resolve(ctx context.Context, ref artifacts.Reference, destDir string) (artifacts.Artifact, string, error)
	Create(name, artifactType, description string) (*artifacts.Draft, error)
	Publish(ctx context.Context, draft *artifacts.Draft, runID string) (artifacts.Artifact, error)
}

var _ ArtifactStore = (*artifacts.Store)(nil)
