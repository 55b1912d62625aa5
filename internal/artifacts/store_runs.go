package artifacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned when a run id is unknown to the registry.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, project, job_type, status, config_json, error_message, started_at, finished_at`

// CreateRun inserts a new run record in the running state.
func (s *Store) CreateRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		return Run{}, errors.New("create run: id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.ConfigJSON == "" {
		run.ConfigJSON = "{}"
	}
	run.Status = RunRunning
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, project, job_type, status, config_json, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Project, run.JobType, string(run.Status), run.ConfigJSON, formatTimestamp(run.StartedAt),
	)
	if err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// UpdateRunConfig replaces the configuration recorded for a run.
func (s *Store) UpdateRunConfig(ctx context.Context, runID, configJSON string) error {
	res, err := s.execWithRetry(ctx, "UPDATE runs SET config_json = ? WHERE id = ?", configJSON, runID)
	if err != nil {
		return fmt.Errorf("update run config: %w", err)
	}
	return requireAffected(res, runID)
}

// LinkArtifact records that a run consumed or produced an artifact.
func (s *Store) LinkArtifact(ctx context.Context, runID string, artifactID int64, direction Direction) error {
	_, err := s.execWithRetry(ctx,
		"INSERT OR IGNORE INTO run_artifacts (run_id, artifact_id, direction) VALUES (?, ?, ?)",
		runID, artifactID, string(direction),
	)
	if err != nil {
		return fmt.Errorf("link %s artifact: %w", direction, err)
	}
	return nil
}

// FinishRun moves a run to its terminal status.
func (s *Store) FinishRun(ctx context.Context, runID string, status RunStatus, message string) error {
	res, err := s.execWithRetry(ctx,
		"UPDATE runs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?",
		string(status), nullableString(message), formatTimestamp(time.Now()), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return requireAffected(res, runID)
}

// GetRun fetches a run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+runColumns+" FROM runs WHERE id = ?", runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

// ListRuns returns the most recent runs first. A non-positive limit lists all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, rowid DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// RunArtifacts lists the artifacts a run consumed and produced, inputs first.
func (s *Store) RunArtifacts(ctx context.Context, runID string) ([]RunArtifact, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT a.id, a.name, a.version, a.type, a.description, a.file_name, a.sha256,
			a.size_bytes, a.content_type, a.producer_run_id, a.created_at, ra.direction
		FROM run_artifacts ra
		JOIN artifacts a ON a.id = ra.artifact_id
		WHERE ra.run_id = ?
		ORDER BY ra.direction, a.name, a.version`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run artifacts: %w", err)
	}
	defer rows.Close()

	var out []RunArtifact
	for rows.Next() {
		var (
			item      RunArtifact
			producer  sql.NullString
			created   string
			direction string
		)
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Version, &item.Type, &item.Description, &item.FileName,
			&item.SHA256, &item.SizeBytes, &item.ContentType, &producer, &created, &direction,
		); err != nil {
			return nil, fmt.Errorf("scan run artifact: %w", err)
		}
		item.ProducerRunID = producer.String
		item.CreatedAt = parseTimestamp(created)
		item.Direction = Direction(direction)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run artifacts: %w", err)
	}
	return out, nil
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run      Run
		status   string
		errMsg   sql.NullString
		started  string
		finished sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Project, &run.JobType, &status, &run.ConfigJSON, &errMsg, &started, &finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Status = RunStatus(status)
	run.ErrorMessage = errMsg.String
	run.StartedAt = parseTimestamp(started)
	if finished.Valid {
		t := parseTimestamp(finished.String)
		run.FinishedAt = &t
	}
	return run, nil
}

func requireAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}
