package layout_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"ytnodup/internal/layout"
	"ytnodup/internal/logging"
	"ytnodup/internal/textutil"
	"ytnodup/internal/tree"
)

func chainState() *tree.State {
	state := tree.NewState()
	state.Registry.Register("A", "Channel A", tree.None)
	state.Registry.Register("B", "Playlist: Best of", "A")
	state.Registry.Register("X", "3/14/2021 My Video", "B")
	return state
}

func TestDeriveBuildsAncestorChain(t *testing.T) {
	state := chainState()
	root := t.TempDir()
	d, err := layout.NewDeriver(state, root, logging.NewNop())
	if err != nil {
		t.Fatalf("NewDeriver: %v", err)
	}

	path, err := d.Derive("X")
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		t.Fatal(err)
	}
	segments := strings.Split(rel, string(filepath.Separator))
	if len(segments) != 3 {
		t.Fatalf("expected k+1 = 3 segments, got %v", segments)
	}
	want := []string{"Channel_A", "Playlist__Best_of", "2021-03-14___My_Video"}
	for i := range want {
		if segments[i] != want[i] {
			t.Fatalf("segments = %v, want %v", segments, want)
		}
	}
	for _, seg := range segments {
		for _, r := range seg {
			if !textutil.IsSegmentRune(r) {
				t.Fatalf("segment %q holds unsafe rune %q", seg, r)
			}
		}
	}

	checks := map[tree.ID]string{
		"X": "2021-03-14___My_Video",
		"B": filepath.Join("Channel_A", "Playlist__Best_of"),
		"A": "Channel_A",
	}
	for id, want := range checks {
		got, ok := state.Paths.Lookup(id)
		if !ok || got != want {
			t.Errorf("path[%s] = %q (%v), want %q", id, got, ok, want)
		}
	}
}

func TestDeriveRootLeaf(t *testing.T) {
	state := tree.NewState()
	state.Registry.Register("V", "Not A Date Here", tree.None)
	d, err := layout.NewDeriver(state, "/lib", nil)
	if err != nil {
		t.Fatal(err)
	}
	path, err := d.Derive("V")
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join("/lib", "Not_A_Date_Here") {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestDeriveEmptyTitleFallsBackToIdentity(t *testing.T) {
	state := tree.NewState()
	state.Registry.Register("abc123", "", tree.None)
	d, _ := layout.NewDeriver(state, "/lib", nil)
	path, err := d.Derive("abc123")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "abc123" {
		t.Fatalf("expected identity fallback, got %q", path)
	}
}

func TestDeriveErrors(t *testing.T) {
	state := tree.NewState()
	state.Registry.Register("P", "p", "Q")
	state.Registry.Register("Q", "q", "P")
	d, _ := layout.NewDeriver(state, "/lib", nil)

	if _, err := d.Derive("P"); !errors.Is(err, tree.ErrParentCycle) {
		t.Fatalf("expected ErrParentCycle, got %v", err)
	}
	if _, err := d.Derive("nope"); !errors.Is(err, tree.ErrUnknownIdentity) {
		t.Fatalf("expected ErrUnknownIdentity, got %v", err)
	}
}

func TestNewDeriverDefaultsToWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	d, err := layout.NewDeriver(tree.NewState(), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.Root() == "" {
		t.Fatal("expected working directory root")
	}
}
