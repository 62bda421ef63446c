package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"ytnodup/internal/tree"
)

// stubExtractor serves nodes by URL and writes a staged file for every
// download it is asked for.
type stubExtractor struct {
	mu         sync.Mutex
	nodes      map[string]tree.Node
	staging    string
	expanded   []string
	downloaded []string
	// deliver overrides what a download URL produces.
	deliver     map[string][]tree.Download
	failExpand  map[string]error
	cancelOnURL string
	cancel      context.CancelFunc
}

var errStubMissing = errors.New("stub: no node for url")

func newStubExtractor(staging string, nodes map[string]tree.Node) *stubExtractor {
	return &stubExtractor{
		nodes:      nodes,
		staging:    staging,
		deliver:    map[string][]tree.Download{},
		failExpand: map[string]error{},
	}
}

func (s *stubExtractor) Expand(ctx context.Context, url string) (tree.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expanded = append(s.expanded, url)
	if url == s.cancelOnURL && s.cancel != nil {
		s.cancel()
		return nil, ctx.Err()
	}
	if err, ok := s.failExpand[url]; ok {
		return nil, err
	}
	node, ok := s.nodes[url]
	if !ok {
		return nil, errStubMissing
	}
	return node, nil
}

func (s *stubExtractor) Download(_ context.Context, url string, onComplete func(tree.Download) error) error {
	s.mu.Lock()
	s.downloaded = append(s.downloaded, url)
	downloads, ok := s.deliver[url]
	if !ok {
		leaf, isLeaf := s.nodes[url].(tree.Leaf)
		if !isLeaf {
			s.mu.Unlock()
			return errStubMissing
		}
		downloads = []tree.Download{{ID: leaf.ID, Ext: "mkv"}}
	}
	s.mu.Unlock()

	var errs []error
	for _, d := range downloads {
		if d.FilePath == "" {
			d.FilePath = filepath.Join(s.staging, string(d.ID)+".mkv")
		}
		if err := os.MkdirAll(filepath.Dir(d.FilePath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(d.FilePath, []byte("media:"+string(d.ID)), 0o644); err != nil {
			return err
		}
		if err := onComplete(d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// sharedVideoNodes is two channels that both contain video X.
func sharedVideoNodes() map[string]tree.Node {
	return map[string]tree.Node{
		"u/A": tree.Container{ID: "A", Title: "Channel A", URL: "u/A", Entries: []tree.Ref{
			{ID: "B", Title: "Playlist B", URL: "u/B"},
		}},
		"u/B": tree.Container{ID: "B", Title: "Playlist B", URL: "u/B", Entries: []tree.Ref{
			{ID: "X", Title: "Video X", URL: "u/X"},
		}},
		"u/X": tree.Leaf{ID: "X", Title: "Video X", URL: "u/X"},
		"u/C": tree.Container{ID: "C", Title: "Channel C", URL: "u/C", Entries: []tree.Ref{
			{ID: "X", Title: "Video X", URL: "u/X2"},
		}},
	}
}
