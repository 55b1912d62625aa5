package artifacts_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cleanstage/internal/artifacts"
	"cleanstage/internal/failures"
	"cleanstage/internal/testsupport"
)

func TestPublishAssignsSequentialVersions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dir := t.TempDir()

	first := testsupport.PublishFile(t, store,
		testsupport.WriteCSV(t, filepath.Join(dir, "a", "sample.csv"), "price", "1"),
		"sample.csv", "raw_data")
	second := testsupport.PublishFile(t, store,
		testsupport.WriteCSV(t, filepath.Join(dir, "b", "sample.csv"), "price", "2"),
		"sample.csv", "raw_data")

	if first.Version != 0 || second.Version != 1 {
		t.Fatalf("expected v0 then v1, got %s then %s", first.VersionLabel(), second.VersionLabel())
	}
	if first.SHA256 == second.SHA256 {
		t.Fatal("expected different digests for different content")
	}
	if second.Ref() != "sample.csv:v1" {
		t.Fatalf("unexpected ref %q", second.Ref())
	}
	if second.ContentType == "" {
		t.Fatal("expected content type to be detected")
	}
}

func TestPublishIdenticalContentReturnsExistingVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	path := testsupport.WriteCSV(t, filepath.Join(t.TempDir(), "clean.csv"), "price", "50")

	first := testsupport.PublishFile(t, store, path, "clean.csv", "clean_sample")
	again := testsupport.PublishFile(t, store, path, "clean.csv", "clean_sample")
	if first.ID != again.ID || again.Version != first.Version {
		t.Fatalf("expected identical publish to reuse %s, got %s", first.Ref(), again.Ref())
	}

	all, err := store.ListArtifacts(context.Background(), "clean.csv")
	if err != nil {
		t.Fatalf("ListArtifacts: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one stored version, got %d", len(all))
	}
}

func TestPublishRejectsTypeMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dir := t.TempDir()

	testsupport.PublishFile(t, store,
		testsupport.WriteCSV(t, filepath.Join(dir, "one.csv"), "price", "1"), "data.csv", "raw_data")

	draft, err := store.Create("data.csv", "clean_sample", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := draft.AttachFile(testsupport.WriteCSV(t, filepath.Join(dir, "two.csv"), "price", "2")); err != nil {
		t.Fatalf("AttachFile: %v", err)
	}
	_, err = store.Publish(context.Background(), draft, "")
	if !errors.Is(err, failures.ErrPublish) {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestPublishRequiresFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	draft, err := store.Create("empty.csv", "clean_sample", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Publish(context.Background(), draft, ""); !errors.Is(err, failures.ErrPublish) {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestDraftAcceptsSingleFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dir := t.TempDir()

	draft, err := store.Create("single.csv", "clean_sample", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := draft.AttachFile(testsupport.WriteCSV(t, filepath.Join(dir, "a.csv"), "x")); err != nil {
		t.Fatalf("AttachFile: %v", err)
	}
	if err := draft.AttachFile(testsupport.WriteCSV(t, filepath.Join(dir, "b.csv"), "y")); err == nil {
		t.Fatal("expected second attachment to fail")
	}
	if err := draft.AttachFile(filepath.Join(dir, "missing.csv")); !errors.Is(err, failures.ErrPublish) {
		t.Fatalf("expected publish error for repeated attach, got %v", err)
	}
}

func TestCreateRejectsInvalidName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.Create("bad/name", "raw_data", ""); err == nil {
		t.Fatal("expected invalid name to be rejected")
	}
	if _, err := store.Create("ok.csv", " ", ""); err == nil {
		t.Fatal("expected blank type to be rejected")
	}
}

func TestResolveReferences(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dir := t.TempDir()

	testsupport.PublishFile(t, store,
		testsupport.WriteCSV(t, filepath.Join(dir, "v0", "sample.csv"), "price", "10"), "sample.csv", "raw_data")
	testsupport.PublishFile(t, store,
		testsupport.WriteCSV(t, filepath.Join(dir, "v1", "sample.csv"), "price", "20"), "sample.csv", "raw_data")

	cases := []struct {
		raw     string
		version int
		content string
	}{
		{"sample.csv:latest", 1, "price\n20\n"},
		{"sample.csv", 1, "price\n20\n"},
		{"sample.csv:v0", 0, "price\n10\n"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			ref, err := artifacts.ParseReference(tc.raw)
			if err != nil {
				t.Fatalf("ParseReference: %v", err)
			}
			artifact, path, err := store.Resolve(context.Background(), ref, t.TempDir())
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if artifact.Version != tc.version {
				t.Fatalf("expected v%d, got %s", tc.version, artifact.VersionLabel())
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read resolved file: %v", err)
			}
			if string(data) != tc.content {
				t.Fatalf("unexpected content %q", data)
			}
			if filepath.Base(path) != "sample.csv" {
				t.Fatalf("expected original file name, got %s", path)
			}
		})
	}
}

func TestResolveUnknownIsResolutionError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.PublishFile(t, store,
		testsupport.WriteCSV(t, filepath.Join(t.TempDir(), "sample.csv"), "price", "10"), "sample.csv", "raw_data")

	for _, raw := range []string{"missing.csv:latest", "sample.csv:v7"} {
		ref, err := artifacts.ParseReference(raw)
		if err != nil {
			t.Fatalf("ParseReference(%q): %v", raw, err)
		}
		if _, _, err := store.Resolve(context.Background(), ref, t.TempDir()); !errors.Is(err, failures.ErrResolution) {
			t.Fatalf("Resolve(%q): expected resolution error, got %v", raw, err)
		}
	}
}

func TestResolveDetectsMissingBlob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	artifact := testsupport.PublishFile(t, store,
		testsupport.WriteCSV(t, filepath.Join(t.TempDir(), "sample.csv"), "price", "10"), "sample.csv", "raw_data")

	blob := filepath.Join(cfg.StoreBlobDir(), artifact.SHA256[:2], artifact.SHA256)
	if err := os.Remove(blob); err != nil {
		t.Fatalf("remove blob: %v", err)
	}
	ref, _ := artifacts.ParseReference("sample.csv")
	if _, _, err := store.Resolve(context.Background(), ref, t.TempDir()); !errors.Is(err, failures.ErrResolution) {
		t.Fatalf("expected resolution error, got %v", err)
	}
}

func TestResolveDetectsCorruptBlob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	artifact := testsupport.PublishFile(t, store,
		testsupport.WriteCSV(t, filepath.Join(t.TempDir(), "sample.csv"), "price", "10"), "sample.csv", "raw_data")

	blob := filepath.Join(cfg.StoreBlobDir(), artifact.SHA256[:2], artifact.SHA256)
	if err := os.WriteFile(blob, []byte("tampered\n"), 0o644); err != nil {
		t.Fatalf("tamper blob: %v", err)
	}
	ref, _ := artifacts.ParseReference("sample.csv:v0")
	if _, _, err := store.Resolve(context.Background(), ref, t.TempDir()); !errors.Is(err, failures.ErrResolution) {
		t.Fatalf("expected resolution error, got %v", err)
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := artifacts.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	testsupport.PublishFile(t, store,
		testsupport.WriteCSV(t, filepath.Join(t.TempDir(), "sample.csv"), "price", "10"), "sample.csv", "raw_data")
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	list, err := reopened.ListArtifacts(context.Background(), "")
	if err != nil {
		t.Fatalf("ListArtifacts: %v", err)
	}
	if len(list) != 1 || list[0].Name != "sample.csv" {
		t.Fatalf("unexpected artifacts after reopen: %#v", list)
	}
}
