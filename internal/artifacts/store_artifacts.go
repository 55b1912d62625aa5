package artifacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"cleanstage/internal/failures"
	"cleanstage/internal/fileutil"
)

const artifactColumns = `id, name, version, type, description, file_name, sha256,
	size_bytes, content_type, producer_run_id, created_at`

// Draft is an artifact that has been described but not yet published.
type Draft struct {
	Name        string
	Type        string
	Description string

	path        string
	digest      fileutil.Digest
	contentType string
}

// File returns the attached file path, or "" when nothing is attached.
func (d *Draft) File() string {
	if d == nil {
		return ""
	}
	return d.path
}

// Create describes a new artifact version. Nothing is stored until Publish.
func (s *Store) Create(name, artifactType, description string) (*Draft, error) {
	if !ValidName(name) {
		return nil, failures.Wrap(failures.ErrPublish, "artifacts", "create",
			fmt.Sprintf("invalid artifact name %q", name), nil)
	}
	if strings.TrimSpace(artifactType) == "" {
		return nil, failures.Wrap(failures.ErrPublish, "artifacts", "create", "artifact type is required", nil)
	}
	return &Draft{Name: name, Type: artifactType, Description: description}, nil
}

// AttachFile records the single file carried by the draft.
func (d *Draft) AttachFile(path string) error {
	if d == nil {
		return failures.Wrap(failures.ErrPublish, "artifacts", "attach file", "draft is nil", nil)
	}
	if d.path != "" {
		return failures.Wrap(failures.ErrPublish, "artifacts", "attach file",
			fmt.Sprintf("artifact %s already carries %s", d.Name, filepath.Base(d.path)), nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return failures.Wrap(failures.ErrIO, "artifacts", "attach file", "stat artifact file", err)
	}
	if !info.Mode().IsRegular() {
		return failures.Wrap(failures.ErrPublish, "artifacts", "attach file",
			fmt.Sprintf("%s is not a regular file", path), nil)
	}
	digest, err := fileutil.HashFile(path)
	if err != nil {
		return failures.Wrap(failures.ErrIO, "artifacts", "attach file", "hash artifact file", err)
	}
	contentType := ""
	if mtype, err := mimetype.DetectFile(path); err == nil {
		contentType = mtype.String()
	}
	d.path = path
	d.digest = digest
	d.contentType = contentType
	return nil
}

// Publish stores the draft's file and registers it as the next version of the
// artifact. Publishing content identical to the latest version returns that
// version unchanged. runID may be empty for artifacts added outside a run.
func (s *Store) Publish(ctx context.Context, draft *Draft, runID string) (Artifact, error) {
	ctx = ensureContext(ctx)
	if draft == nil || draft.path == "" {
		return Artifact{}, failures.Wrap(failures.ErrPublish, "artifacts", "publish", "artifact has no file attached", nil)
	}

	var published Artifact
	err := s.withPublishLock(ctx, func() error {
		latest, found, err := s.latest(ctx, draft.Name)
		if err != nil {
			return failures.Wrap(failures.ErrPublish, "artifacts", "publish", "look up latest version", err)
		}
		if found && latest.Type != draft.Type {
			return failures.Wrap(failures.ErrPublish, "artifacts", "publish",
				fmt.Sprintf("artifact %s has type %q, cannot publish as %q", draft.Name, latest.Type, draft.Type), nil)
		}
		if found && latest.SHA256 == draft.digest.SHA256 {
			published = latest
			return nil
		}

		if err := s.storeBlob(draft); err != nil {
			return err
		}

		version := 0
		if found {
			version = latest.Version + 1
		}
		created := time.Now().UTC()
		res, err := s.execWithRetry(ctx,
			`INSERT INTO artifacts (name, version, type, description, file_name, sha256,
				size_bytes, content_type, producer_run_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			draft.Name, version, draft.Type, draft.Description, filepath.Base(draft.path),
			draft.digest.SHA256, draft.digest.Size, draft.contentType, nullableString(runID),
			formatTimestamp(created),
		)
		if err != nil {
			return failures.Wrap(failures.ErrPublish, "artifacts", "publish",
				fmt.Sprintf("register %s:v%d", draft.Name, version), err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return failures.Wrap(failures.ErrPublish, "artifacts", "publish", "read artifact id", err)
		}
		published = Artifact{
			ID:            id,
			Name:          draft.Name,
			Version:       version,
			Type:          draft.Type,
			Description:   draft.Description,
			FileName:      filepath.Base(draft.path),
			SHA256:        draft.digest.SHA256,
			SizeBytes:     draft.digest.Size,
			ContentType:   draft.contentType,
			ProducerRunID: runID,
			CreatedAt:     created,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, failures.ErrPublish) {
			return Artifact{}, err
		}
		return Artifact{}, failures.Wrap(failures.ErrPublish, "artifacts", "publish", "artifact store unavailable", err)
	}
	return published, nil
}

func (s *Store) blobPath(sum string) string {
	return filepath.Join(s.blobDir, sum[:2], sum)
}

func (s *Store) storeBlob(draft *Draft) error {
	dst := s.blobPath(draft.digest.SHA256)
	if _, err := os.Stat(dst); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return failures.Wrap(failures.ErrPublish, "artifacts", "store blob", "create blob directory", err)
	}
	tmp := dst + ".partial"
	digest, err := fileutil.CopyFileVerified(draft.path, tmp)
	if err != nil {
		return failures.Wrap(failures.ErrPublish, "artifacts", "store blob", "copy artifact file", err)
	}
	if digest.SHA256 != draft.digest.SHA256 {
		_ = os.Remove(tmp)
		return failures.Wrap(failures.ErrPublish, "artifacts", "store blob",
			fmt.Sprintf("%s changed after it was attached", filepath.Base(draft.path)), nil)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return failures.Wrap(failures.ErrPublish, "artifacts", "store blob", "finalize blob", err)
	}
	return nil
}

// Get looks up the artifact a reference points at.
func (s *Store) Get(ctx context.Context, ref Reference) (Artifact, error) {
	ctx = ensureContext(ctx)
	var (
		artifact Artifact
		found    bool
		err      error
	)
	if ref.Latest {
		artifact, found, err = s.latest(ctx, ref.Name)
	} else {
		artifact, found, err = s.version(ctx, ref.Name, ref.Version)
	}
	if err != nil {
		return Artifact{}, failures.Wrap(failures.ErrResolution, "artifacts", "get",
			fmt.Sprintf("look up %s", ref), err)
	}
	if !found {
		return Artifact{}, failures.Wrap(failures.ErrResolution, "artifacts", "get",
			fmt.Sprintf("artifact %s not found", ref), nil)
	}
	return artifact, nil
}

// Resolve materializes the referenced artifact under destDir and returns the
// local file path. The copy is verified against the registered digest.
func (s *Store) Resolve(ctx context.Context, ref Reference, destDir string) (Artifact, string, error) {
	artifact, err := s.Get(ctx, ref)
	if err != nil {
		return Artifact{}, "", err
	}
	src := s.blobPath(artifact.SHA256)
	if _, err := os.Stat(src); err != nil {
		return Artifact{}, "", failures.Wrap(failures.ErrResolution, "artifacts", "resolve",
			fmt.Sprintf("content for %s missing from store", artifact.Ref()), err)
	}

	dir := filepath.Join(destDir, artifact.Name+"-"+artifact.VersionLabel())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Artifact{}, "", failures.Wrap(failures.ErrIO, "artifacts", "resolve", "create download directory", err)
	}
	dst := filepath.Join(dir, artifact.FileName)
	digest, err := fileutil.CopyFileVerified(src, dst)
	if err != nil {
		return Artifact{}, "", failures.Wrap(failures.ErrIO, "artifacts", "resolve",
			fmt.Sprintf("download %s", artifact.Ref()), err)
	}
	if digest.SHA256 != artifact.SHA256 {
		_ = os.Remove(dst)
		return Artifact{}, "", failures.Wrap(failures.ErrResolution, "artifacts", "resolve",
			fmt.Sprintf("content for %s does not match its digest", artifact.Ref()), nil)
	}
	return artifact, dst, nil
}

// ListArtifacts returns every stored version, optionally restricted to name.
func (s *Store) ListArtifacts(ctx context.Context, name string) ([]Artifact, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + artifactColumns + " FROM artifacts"
	var args []any
	if name != "" {
		query += " WHERE name = ?"
		args = append(args, name)
	}
	query += " ORDER BY name, version"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return out, nil
}

func (s *Store) latest(ctx context.Context, name string) (Artifact, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+artifactColumns+" FROM artifacts WHERE name = ? ORDER BY version DESC LIMIT 1", name)
	return scanOptional(row)
}

func (s *Store) version(ctx context.Context, name string, version int) (Artifact, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+artifactColumns+" FROM artifacts WHERE name = ? AND version = ?", name, version)
	return scanOptional(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOptional(row rowScanner) (Artifact, bool, error) {
	artifact, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Artifact{}, false, nil
	}
	if err != nil {
		return Artifact{}, false, err
	}
	return artifact, true, nil
}

func scanArtifact(row rowScanner) (Artifact, error) {
	var (
		artifact Artifact
		producer sql.NullString
		created  string
	)
	err := row.Scan(
		&artifact.ID,
		&artifact.Name,
		&artifact.Version,
		&artifact.Type,
		&artifact.Description,
		&artifact.FileName,
		&artifact.SHA256,
		&artifact.SizeBytes,
		&artifact.ContentType,
		&producer,
		&created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Artifact{}, err
		}
		return Artifact{}, fmt.Errorf("scan artifact: %w", err)
	}
	artifact.ProducerRunID = producer.String
	artifact.CreatedAt = parseTimestamp(created)
	return artifact, nil
}
