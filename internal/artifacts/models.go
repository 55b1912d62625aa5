package artifacts

import (
	"fmt"
	"time"
)

// Artifact is one published, immutable version of a named dataset file.
type Artifact struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Version       int       `json:"version"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	FileName      string    `json:"file_name"`
	SHA256        string    `json:"sha256"`
	SizeBytes     int64     `json:"size_bytes"`
	ContentType   string    `json:"content_type"`
	ProducerRunID string    `json:"producer_run_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// VersionLabel renders the version as vN.
func (a Artifact) VersionLabel() string {
	return fmt.Sprintf("v%d", a.Version)
}

// Ref renders the fully qualified name:vN reference.
func (a Artifact) Ref() string {
	return a.Name + ":" + a.VersionLabel()
}

// RunStatus represents the lifecycle of a tracked run.
type RunStatus string

const (
	RunRunning  RunStatus = "running"
	RunFinished RunStatus = "finished"
	RunFailed   RunStatus = "failed"
)

// Run is the registry record of one stage execution.
type Run struct {
	ID           string     `json:"id"`
	Project      string     `json:"project"`
	JobType      string     `json:"job_type"`
	Status       RunStatus  `json:"status"`
	ConfigJSON   string     `json:"config"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// Direction tags how a run used an artifact.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// RunArtifact is an artifact together with how a run used it.
type RunArtifact struct {
	Artifact
	Direction Direction `json:"direction"`
}
