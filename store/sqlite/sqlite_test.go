package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	templateguard "github.com/templateguard/templateguard"
	"github.com/templateguard/templateguard/store/sqlite"
)

func testSchema(t *testing.T, version string) *templateguard.Schema {
	t.Helper()
	s, err := templateguard.Load(map[string]any{
		"version": version,
		"fields": map[string]any{
			"cohort": map[string]any{"kind": "string", "required": true},
			"notes":  "text",
		},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func openStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	st, err := sqlite.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, filepath.Join(t.TempDir(), "archive.db"))

	if _, err := st.Latest(ctx); !errors.Is(err, templateguard.ErrEmptyArchive) {
		t.Fatalf("Latest on empty store = %v, want ErrEmptyArchive", err)
	}

	if err := st.Append(ctx, testSchema(t, "1.0")); err != nil {
		t.Fatalf("Append(v1.0): %v", err)
	}
	if err := st.Append(ctx, testSchema(t, "1.1")); err != nil {
		t.Fatalf("Append(v1.1): %v", err)
	}
	if err := st.Append(ctx, testSchema(t, "1.0")); !errors.Is(err, templateguard.ErrDuplicateVersion) {
		t.Fatalf("duplicate Append = %v, want ErrDuplicateVersion", err)
	}

	vs, err := st.Versions(ctx)
	if err != nil || len(vs) != 2 || vs[0].String() != "1.0" || vs[1].String() != "1.1" {
		t.Fatalf("Versions = %v, %v; want ascending [1.0 1.1]", vs, err)
	}

	latest, err := st.Latest(ctx)
	if err != nil || latest.Version.String() != "1.1" {
		t.Fatalf("Latest = %v, %v; want v1.1", latest, err)
	}
	got, err := st.Get(ctx, templateguard.Version{Major: 1, Minor: 0})
	if err != nil {
		t.Fatalf("Get(1.0): %v", err)
	}
	if f, ok := got.Field("cohort"); !ok || !f.Required {
		t.Fatalf("archived schema lost its descriptors: %+v", got.Fields())
	}
	if _, err := st.Get(ctx, templateguard.Version{Major: 9, Minor: 9}); !errors.Is(err, templateguard.ErrUnknownVersion) {
		t.Fatalf("Get(9.9) = %v, want ErrUnknownVersion", err)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "archive.db")

	st, err := sqlite.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.Append(ctx, testSchema(t, "1.0")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st2 := openStore(t, path)
	latest, err := st2.Latest(ctx)
	if err != nil || latest.Version.String() != "1.0" {
		t.Fatalf("Latest after reopen = %v, %v", latest, err)
	}
}

func TestStoreConcurrentDuplicateAppend(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, filepath.Join(t.TempDir(), "archive.db"))
	s := testSchema(t, "1.0")

	const writers = 4
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = st.Append(ctx, s)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, templateguard.ErrDuplicateVersion):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("exactly one writer must win, got %d", wins)
	}
}

func TestGateOverSqliteArchive(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, filepath.Join(t.TempDir(), "archive.db"))
	gate := templateguard.NewGate(st)

	if dec, err := gate.Propose(ctx, testSchema(t, "1.0")); err != nil || dec.Outcome != templateguard.Accepted {
		t.Fatalf("Propose(v1.0) = %+v, %v", dec, err)
	}
	// Same fields, version not bumped: rejected, archive untouched.
	dec, err := gate.Propose(ctx, testSchema(t, "1.0"))
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if dec.Outcome != templateguard.Rejected || len(dec.Violations) == 0 {
		t.Fatalf("expected rejection with violations, got %+v", dec)
	}
	vs, _ := st.Versions(ctx)
	if len(vs) != 1 {
		t.Fatalf("rejected proposal must not touch the archive; versions = %v", vs)
	}
}
