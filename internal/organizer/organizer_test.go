package organizer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ytnodup/internal/layout"
	"ytnodup/internal/logging"
	"ytnodup/internal/organizer"
	"ytnodup/internal/services"
	"ytnodup/internal/testsupport"
	"ytnodup/internal/tree"
)

type fixture struct {
	state   *tree.State
	library string
	staging string
	org     *organizer.Organizer
}

func newFixture(t *testing.T, overwrite bool) fixture {
	t.Helper()
	state := tree.NewState()
	state.Registry.Register("A", "Channel A", tree.None)
	state.Registry.Register("X", "Video X", "A")
	library := t.TempDir()
	deriver, err := layout.NewDeriver(state, library, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return fixture{
		state:   state,
		library: library,
		staging: t.TempDir(),
		org:     organizer.New(deriver, overwrite, "mkv", logging.NewNop()),
	}
}

func TestMaterializeMovesIntoDerivedPath(t *testing.T) {
	f := newFixture(t, false)
	staged := testsupport.WriteFile(t, filepath.Join(f.staging, "X.mkv"), "video bytes")

	final, err := f.org.Materialize(context.Background(), tree.Download{ID: "X", FilePath: staged, Ext: "mkv"})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	want := filepath.Join(f.library, "Channel_A", "Video_X.mkv")
	if final != want {
		t.Fatalf("final = %q, want %q", final, want)
	}
	testsupport.AssertFileContent(t, final, "video bytes")
	if _, err := os.Stat(staged); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected staged file to be moved")
	}
	if p, ok := f.state.Paths.Lookup("A"); !ok || p != "Channel_A" {
		t.Fatalf("expected ancestor path recorded, got %q", p)
	}
}

func TestMaterializeExtensionFallbacks(t *testing.T) {
	f := newFixture(t, false)
	staged := testsupport.WriteFile(t, filepath.Join(f.staging, "X.webm"), "x")
	final, err := f.org.Materialize(context.Background(), tree.Download{ID: "X", FilePath: staged})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(final) != ".webm" {
		t.Fatalf("expected staged extension, got %q", final)
	}

	f = newFixture(t, false)
	bare := testsupport.WriteFile(t, filepath.Join(f.staging, "X"), "x")
	final, err = f.org.Materialize(context.Background(), tree.Download{ID: "X", FilePath: bare})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(final) != ".mkv" {
		t.Fatalf("expected fallback extension, got %q", final)
	}
}

func TestMaterializeUnknownIdentity(t *testing.T) {
	f := newFixture(t, false)
	staged := testsupport.WriteFile(t, filepath.Join(f.staging, "Z.mkv"), "z")
	_, err := f.org.Materialize(context.Background(), tree.Download{ID: "Z", FilePath: staged, Ext: "mkv"})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMaterializeDirectoryCreationFailure(t *testing.T) {
	f := newFixture(t, false)
	// A regular file where the channel directory should go.
	testsupport.WriteFile(t, filepath.Join(f.library, "Channel_A"), "blocker")
	staged := testsupport.WriteFile(t, filepath.Join(f.staging, "X.mkv"), "x")

	_, err := f.org.Materialize(context.Background(), tree.Download{ID: "X", FilePath: staged, Ext: "mkv"})
	if !errors.Is(err, services.ErrDirectoryCreation) {
		t.Fatalf("expected ErrDirectoryCreation, got %v", err)
	}
	if services.Fatal(err) {
		t.Fatal("directory failures must be contained to the item")
	}
}

func TestMaterializeOverwritePolicy(t *testing.T) {
	tests := []struct {
		name      string
		overwrite bool
		wantErr   error
		want      string
	}{
		{name: "replace", overwrite: true, want: "new"},
		{name: "keep existing", overwrite: false, wantErr: organizer.ErrAlreadyPlaced, want: "old"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.overwrite)
			existing := testsupport.WriteFile(t, filepath.Join(f.library, "Channel_A", "Video_X.mkv"), "old")
			staged := testsupport.WriteFile(t, filepath.Join(f.staging, "X.mkv"), "new")

			final, err := f.org.Materialize(context.Background(), tree.Download{ID: "X", FilePath: staged, Ext: "mkv"})
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Materialize: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if final != existing {
				t.Fatalf("final = %q, want %q", final, existing)
			}
			testsupport.AssertFileContent(t, existing, tt.want)
			assertStagingEmpty(t, f.staging)
		})
	}
}

func TestMaterializeRepeatedDownloadLeavesStagingEmpty(t *testing.T) {
	f := newFixture(t, false)
	target := filepath.Join(f.library, "Channel_A", "Video_X.mkv")

	for i, content := range []string{"first", "second"} {
		staged := testsupport.WriteFile(t, filepath.Join(f.staging, "X.mkv"), content)
		_, err := f.org.Materialize(context.Background(), tree.Download{ID: "X", FilePath: staged, Ext: "mkv"})
		if i == 0 && err != nil {
			t.Fatalf("first Materialize: %v", err)
		}
		if i == 1 && !errors.Is(err, organizer.ErrAlreadyPlaced) {
			t.Fatalf("second Materialize: expected ErrAlreadyPlaced, got %v", err)
		}
		assertStagingEmpty(t, f.staging)
	}
	testsupport.AssertFileContent(t, target, "first")
}

func assertStagingEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read staging: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("staging not empty: %d entries left", len(entries))
	}
}
