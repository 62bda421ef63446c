package tree_test

import (
	"errors"
	"testing"

	"ytnodup/internal/logging"
	"ytnodup/internal/tree"
)

// source maps a reference ID to what the extractor returns for it.
type source map[tree.ID]tree.Node

func drain(t *testing.T, w *tree.Walker, state *tree.State, src source) {
	t.Helper()
	for {
		ref, ok := state.Pending.Pop()
		if !ok {
			return
		}
		node, found := src[ref.ID]
		if !found {
			continue
		}
		if _, err := w.ObserveExpanded(ref, node); err != nil {
			t.Fatalf("ObserveExpanded(%s): %v", ref.ID, err)
		}
	}
}

func downloadIDs(state *tree.State) []tree.ID {
	var ids []tree.ID
	for {
		ref, ok := state.Downloads.Pop()
		if !ok {
			return ids
		}
		ids = append(ids, ref.ID)
	}
}

func TestWalkerSharedVideoAcrossRoots(t *testing.T) {
	state := tree.NewState()
	w := tree.NewWalker(state, logging.NewNop())

	src := source{
		"B": tree.Container{ID: "B", Title: "Playlist B", Entries: []tree.Ref{{ID: "X", Title: "Video X", URL: "u/X"}}},
		"X": tree.Leaf{ID: "X", Title: "Video X", URL: "u/X"},
	}

	rootA := tree.Container{ID: "A", Title: "Channel A", Entries: []tree.Ref{{ID: "B", Title: "Playlist B", URL: "u/B"}}}
	if out := w.ObserveRoot(rootA, "u/A"); !out.Accepted || out.Queued != 1 {
		t.Fatalf("unexpected root outcome %+v", out)
	}
	drain(t, w, state, src)

	rootC := tree.Container{ID: "C", Title: "Channel C", Entries: []tree.Ref{{ID: "X", Title: "Video X (reupload)", URL: "u/X2"}}}
	out := w.ObserveRoot(rootC, "u/C")
	if out.Queued != 0 || out.Duplicates != 1 {
		t.Fatalf("expected X to be a duplicate under C, got %+v", out)
	}
	drain(t, w, state, src)

	placement, _ := state.Registry.Lookup("X")
	if placement.Parent != "B" || placement.Title != "Video X" {
		t.Fatalf("first placement not preserved: %+v", placement)
	}
	if parents := state.Duplicates.Parents("X"); len(parents) != 1 || parents[0] != "C" {
		t.Fatalf("duplicate parents = %v, want [C]", parents)
	}
	if ids := downloadIDs(state); len(ids) != 1 || ids[0] != "X" {
		t.Fatalf("downloads = %v, want [X]", ids)
	}
}

func TestWalkerDuplicateSubtreeNotExpanded(t *testing.T) {
	state := tree.NewState()
	w := tree.NewWalker(state, logging.NewNop())

	w.ObserveRoot(tree.Container{ID: "A", Entries: []tree.Ref{{ID: "P", URL: "u/P"}}}, "u/A")
	w.ObserveRoot(tree.Container{ID: "C", Entries: []tree.Ref{{ID: "P", URL: "u/P"}}}, "u/C")

	expanded := 0
	for {
		ref, ok := state.Pending.Pop()
		if !ok {
			break
		}
		expanded++
		if ref.ID != "P" {
			t.Fatalf("unexpected pending ref %s", ref.ID)
		}
	}
	if expanded != 1 {
		t.Fatalf("P expanded %d times, want 1", expanded)
	}
}

func TestWalkerRootAlreadyKnown(t *testing.T) {
	state := tree.NewState()
	w := tree.NewWalker(state, logging.NewNop())

	w.ObserveRoot(tree.Container{ID: "A", Entries: []tree.Ref{{ID: "B", URL: "u/B"}}}, "u/A")
	out := w.ObserveRoot(tree.Container{ID: "B", Entries: []tree.Ref{{ID: "Z", URL: "u/Z"}}}, "u/B")
	if out.Accepted {
		t.Fatal("expected known root to be rejected")
	}
	if parents := state.Duplicates.Parents("B"); len(parents) != 1 || parents[0] != tree.None {
		t.Fatalf("duplicate parents = %v, want [none]", parents)
	}
	if state.Registry.Contains("Z") {
		t.Fatal("entries of a rediscovered root must not be registered")
	}
}

func TestWalkerExpandedIdentityDiffers(t *testing.T) {
	state := tree.NewState()
	w := tree.NewWalker(state, logging.NewNop())

	w.ObserveRoot(tree.Container{ID: "A", Entries: []tree.Ref{
		{ID: "X", URL: "u/X"},
		{ID: "short", URL: "u/short"},
	}}, "u/A")

	ref, _ := state.Pending.Pop()
	if _, err := w.ObserveExpanded(ref, tree.Leaf{ID: "X", Title: "X"}); err != nil {
		t.Fatal(err)
	}
	ref, _ = state.Pending.Pop()
	out, err := w.ObserveExpanded(ref, tree.Leaf{ID: "X", Title: "X again"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Accepted {
		t.Fatal("expected redirected identity to be treated as duplicate")
	}
	if parents := state.Duplicates.Parents("X"); len(parents) != 1 || parents[0] != "A" {
		t.Fatalf("duplicate parents = %v, want [A]", parents)
	}
}

func TestWalkerRecordsEveryRediscoveringParent(t *testing.T) {
	state := tree.NewState()
	w := tree.NewWalker(state, logging.NewNop())

	for _, id := range []tree.ID{"P1", "P2", "P3"} {
		w.ObserveRoot(tree.Container{ID: id, Entries: []tree.Ref{{ID: "X", Title: "Video X", URL: "u/X"}}}, "u/"+string(id))
	}

	got := state.Duplicates.Parents("X")
	if len(got) != 2 || got[0] != "P2" || got[1] != "P3" {
		t.Fatalf("duplicate parents = %v, want [P2 P3]", got)
	}
	if p, _ := state.Registry.Lookup("X"); p.Parent != "P1" {
		t.Fatalf("X placed under %q, want P1", p.Parent)
	}
	if state.Pending.Len() != 1 {
		t.Fatalf("pending = %d, want 1", state.Pending.Len())
	}
}

func TestWalkerRepeatedEntryInOneContainer(t *testing.T) {
	state := tree.NewState()
	w := tree.NewWalker(state, logging.NewNop())

	out := w.ObserveRoot(tree.Container{ID: "D", Entries: []tree.Ref{
		{ID: "Y", Title: "Video Y", URL: "u/Y"},
		{ID: "Y", Title: "Video Y", URL: "u/Y"},
	}}, "u/D")
	if out.Queued != 1 || out.Duplicates != 1 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if got := state.Duplicates.Parents("Y"); len(got) != 1 || got[0] != "D" {
		t.Fatalf("duplicate parents = %v, want [D]", got)
	}
	if state.Pending.Len() != 1 {
		t.Fatalf("pending = %d, want 1", state.Pending.Len())
	}
}

func TestWalkerFillsMissingTitleFromExpansion(t *testing.T) {
	state := tree.NewState()
	w := tree.NewWalker(state, logging.NewNop())

	w.ObserveRoot(tree.Container{ID: "A", Title: "Chan", Entries: []tree.Ref{
		{ID: "X", URL: "u/X"},
		{ID: "Y", Title: "Listed Y", URL: "u/Y"},
	}}, "u/A")
	drain(t, w, state, source{
		"X": tree.Leaf{ID: "X", Title: "Expanded X"},
		"Y": tree.Leaf{ID: "Y", Title: "Expanded Y"},
	})

	if p, _ := state.Registry.Lookup("X"); p.Title != "Expanded X" || p.Parent != "A" {
		t.Fatalf("X placement = %+v", p)
	}
	if p, _ := state.Registry.Lookup("Y"); p.Title != "Listed Y" {
		t.Fatalf("Y title replaced: %+v", p)
	}
}

func TestWalkerObserveExpandedUnknownRef(t *testing.T) {
	w := tree.NewWalker(tree.NewState(), nil)
	_, err := w.ObserveExpanded(tree.Ref{ID: "ghost"}, tree.Leaf{ID: "ghost"})
	if !errors.Is(err, tree.ErrUnknownIdentity) {
		t.Fatalf("expected ErrUnknownIdentity, got %v", err)
	}
}

func TestWalkerLeafUsesDiscoveryURL(t *testing.T) {
	state := tree.NewState()
	w := tree.NewWalker(state, logging.NewNop())
	w.ObserveRoot(tree.Leaf{ID: "V", Title: "Solo", URL: "canonical"}, "given")
	ref, ok := state.Downloads.Pop()
	if !ok || ref.URL != "given" {
		t.Fatalf("download ref = %+v, want URL given", ref)
	}

	w.ObserveRoot(tree.Leaf{ID: "W", URL: "canonical"}, "")
	ref, _ = state.Downloads.Pop()
	if ref.URL != "canonical" {
		t.Fatalf("expected node URL fallback, got %q", ref.URL)
	}
}

func TestSnapshotCarriesPaths(t *testing.T) {
	state := tree.NewState()
	w := tree.NewWalker(state, logging.NewNop())
	w.ObserveRoot(tree.Container{ID: "A", Title: "Chan", Entries: []tree.Ref{{ID: "X", Title: "Vid"}}}, "u/A")
	state.Paths.Set("A", "Chan")
	state.Duplicates.Record("X", "Q")

	snap := state.Snapshot()
	if len(snap.Nodes) != 2 || snap.Nodes[0].ID != "A" || snap.Nodes[0].Path != "Chan" {
		t.Fatalf("unexpected nodes %+v", snap.Nodes)
	}
	if snap.Nodes[1].Parent != "A" || snap.Nodes[1].Path != "" {
		t.Fatalf("unexpected child record %+v", snap.Nodes[1])
	}
	if len(snap.Duplicates) != 1 || snap.Duplicates[0].Parents[0] != "Q" {
		t.Fatalf("unexpected duplicates %+v", snap.Duplicates)
	}
}
