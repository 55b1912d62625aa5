package artifacts_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cleanstage/internal/artifacts"
	"cleanstage/internal/testsupport"
)

func TestRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run, err := store.CreateRun(ctx, artifacts.Run{ID: "run-1", Project: "nyc_airbnb", JobType: "basic_cleaning"})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if run.Status != artifacts.RunRunning || run.ConfigJSON != "{}" {
		t.Fatalf("unexpected new run: %#v", run)
	}
	if err := store.UpdateRunConfig(ctx, "run-1", `{"min_price":10}`); err != nil {
		t.Fatalf("UpdateRunConfig: %v", err)
	}

	input := testsupport.PublishFile(t, store,
		testsupport.WriteCSV(t, filepath.Join(t.TempDir(), "sample.csv"), "price", "10"), "sample.csv", "raw_data")
	if err := store.LinkArtifact(ctx, "run-1", input.ID, artifacts.DirectionInput); err != nil {
		t.Fatalf("LinkArtifact: %v", err)
	}
	if err := store.LinkArtifact(ctx, "run-1", input.ID, artifacts.DirectionInput); err != nil {
		t.Fatalf("repeated LinkArtifact: %v", err)
	}
	if err := store.FinishRun(ctx, "run-1", artifacts.RunFinished, ""); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	fetched, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if fetched.Status != artifacts.RunFinished || fetched.FinishedAt == nil {
		t.Fatalf("expected finished run, got %#v", fetched)
	}
	if fetched.ConfigJSON != `{"min_price":10}` {
		t.Fatalf("unexpected config %q", fetched.ConfigJSON)
	}

	linked, err := store.RunArtifacts(ctx, "run-1")
	if err != nil {
		t.Fatalf("RunArtifacts: %v", err)
	}
	if len(linked) != 1 || linked[0].Direction != artifacts.DirectionInput || linked[0].ID != input.ID {
		t.Fatalf("unexpected run artifacts: %#v", linked)
	}
}

func TestFinishRunRecordsFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.CreateRun(ctx, artifacts.Run{ID: "run-2", Project: "p", JobType: "j"}); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := store.FinishRun(ctx, "run-2", artifacts.RunFailed, "format error: boom"); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	run, err := store.GetRun(ctx, "run-2")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != artifacts.RunFailed || run.ErrorMessage != "format error: boom" {
		t.Fatalf("unexpected failed run: %#v", run)
	}
}

func TestUnknownRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.GetRun(ctx, "nope"); !errors.Is(err, artifacts.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if err := store.FinishRun(ctx, "nope", artifacts.RunFinished, ""); !errors.Is(err, artifacts.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := store.CreateRun(ctx, artifacts.Run{ID: id, Project: "p", JobType: "j"}); err != nil {
			t.Fatalf("CreateRun(%s): %v", id, err)
		}
	}
	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected limit to apply, got %d runs", len(runs))
	}
	if runs[0].ID != "c" {
		t.Fatalf("expected newest run first, got %s", runs[0].ID)
	}
}
