package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytnodup/internal/report"
	"ytnodup/internal/tree"
)

func scenario() *tree.State {
	state := tree.NewState()
	state.Registry.Register("A", "Channel A", tree.None)
	state.Registry.Register("B", "Playlist B", "A")
	state.Registry.Register("X", "Video X", "B")
	state.Registry.Register("C", "Channel C", tree.None)
	state.Duplicates.Record("X", "C")
	state.Duplicates.Record("A", tree.None)

	state.Paths.Set("X", "Video_X")
	state.Paths.Set("B", filepath.Join("Channel_A", "Playlist_B"))
	state.Paths.Set("A", "Channel_A")
	return state
}

func TestGenerate(t *testing.T) {
	records := report.Generate(scenario())
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	x := records[0]
	if x.ID != "X" || x.Location != "Video_X" {
		t.Fatalf("unexpected record %+v", x)
	}
	if x.Directory != filepath.Join("Channel_A", "Playlist_B") {
		t.Fatalf("directory = %q", x.Directory)
	}
	if len(x.Alternates) != 1 || x.Alternates[0] != "C(No Directory Created)" {
		t.Fatalf("alternates = %v", x.Alternates)
	}

	a := records[1]
	if a.Directory != "." {
		t.Fatalf("root directory = %q, want .", a.Directory)
	}
	if len(a.Alternates) != 1 || a.Alternates[0] != "<root>(No Directory Created)" {
		t.Fatalf("alternates = %v", a.Alternates)
	}
}

func TestGenerateAlternatesAlwaysResolve(t *testing.T) {
	state := scenario()
	state.Duplicates.Record("X", "B")
	for _, rec := range report.Generate(state) {
		for _, alt := range rec.Alternates {
			if strings.HasSuffix(alt, report.PlaceholderSuffix) {
				continue
			}
			found := false
			for _, id := range state.Registry.IDs() {
				if p, ok := state.Paths.Lookup(id); ok && p == alt {
					found = true
				}
			}
			if !found {
				t.Fatalf("alternate %q neither resolves nor is a placeholder", alt)
			}
		}
	}
}

func TestGenerateUnmaterialized(t *testing.T) {
	state := tree.NewState()
	state.Registry.Register("A", "A", tree.None)
	state.Registry.Register("Y", "Y", "A")
	state.Duplicates.Record("Y", "A")

	records := report.Generate(state)
	if records[0].Location != "Y(No Directory Created)" {
		t.Fatalf("location = %q", records[0].Location)
	}
	if records[0].Directory != "A(No Directory Created)" {
		t.Fatalf("directory = %q", records[0].Directory)
	}
}

func TestWriteFormat(t *testing.T) {
	var buf bytes.Buffer
	records := []report.Record{{
		ID:         "X",
		Location:   "Video_X",
		Directory:  "Channel_A/Playlist_B",
		Alternates: []string{"Channel_C", "D(No Directory Created)"},
	}}
	if err := report.Write(&buf, records); err != nil {
		t.Fatal(err)
	}
	want := "ID: [X] Title: Video_X\n" +
		"Located in directory: Channel_A/Playlist_B\n" +
		"May also belong in:\n" +
		"\tChannel_C\n" +
		"\tD(No Directory Created)\n" +
		"\n"
	if buf.String() != want {
		t.Fatalf("report = %q, want %q", buf.String(), want)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup_list.txt")
	if err := report.WriteFile(path, report.Generate(scenario())); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "ID: [X] Title: Video_X\n") {
		t.Fatalf("unexpected report %q", data)
	}
}
