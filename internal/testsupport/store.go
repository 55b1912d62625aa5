package testsupport

import (
	"context"
	"testing"

	"cleanstage/internal/artifacts"
	"cleanstage/internal/config"
)

// MustOpenStore opens an artifacts.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *artifacts.Store {
	t.Helper()

	store, err := artifacts.Open(cfg)
	if err != nil {
		t.Fatalf("artifacts.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// PublishFile registers the file at path as a new artifact version outside of
// any run, the way the upstream download stage seeds raw data.
func PublishFile(t testing.TB, store *artifacts.Store, path, name, artifactType string) artifacts.Artifact {
	t.Helper()

	draft, err := store.Create(name, artifactType, "test fixture")
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	if err := draft.AttachFile(path); err != nil {
		t.Fatalf("draft.AttachFile: %v", err)
	}
	artifact, err := store.Publish(context.Background(), draft, "")
	if err != nil {
		t.Fatalf("store.Publish: %v", err)
	}
	return artifact
}
