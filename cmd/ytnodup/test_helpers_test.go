package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ytnodup/internal/config"
	"ytnodup/internal/testsupport"
	"ytnodup/internal/tree"
	"ytnodup/internal/workflow"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	extractor  *fakeExtractor
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	cfg := testsupport.NewConfig(t, opts...)

	configPath := filepath.Join(homeDir, ".config", "ytnodup", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		extractor:  newFakeExtractor(cfg.Paths.StagingDir),
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	factory := func(*config.Config, *slog.Logger) (workflow.Extractor, error) {
		return e.extractor, nil
	}
	cmd := buildRootCommand(factory)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.configPath, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// fakeExtractor serves two channels sharing one video.
type fakeExtractor struct {
	staging string
	nodes   map[string]tree.Node
}

func newFakeExtractor(staging string) *fakeExtractor {
	return &fakeExtractor{
		staging: staging,
		nodes: map[string]tree.Node{
			"u/A": tree.Container{ID: "A", Title: "Channel A", Entries: []tree.Ref{{ID: "X", Title: "Video X", URL: "u/X"}}},
			"u/C": tree.Container{ID: "C", Title: "Channel C", Entries: []tree.Ref{{ID: "X", Title: "Video X", URL: "u/X"}}},
			"u/X": tree.Leaf{ID: "X", Title: "Video X", URL: "u/X"},
		},
	}
}

func (f *fakeExtractor) Expand(_ context.Context, url string) (tree.Node, error) {
	node, ok := f.nodes[url]
	if !ok {
		return nil, os.ErrNotExist
	}
	return node, nil
}

func (f *fakeExtractor) Download(_ context.Context, url string, onComplete func(tree.Download) error) error {
	leaf, ok := f.nodes[url].(tree.Leaf)
	if !ok {
		return os.ErrNotExist
	}
	staged := filepath.Join(f.staging, string(leaf.ID)+".webm")
	if err := os.WriteFile(staged, []byte("video"), 0o644); err != nil {
		return err
	}
	return onComplete(tree.Download{ID: leaf.ID, FilePath: staged, Ext: "webm"})
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
