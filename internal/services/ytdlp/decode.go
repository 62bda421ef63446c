package ytdlp

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"ytnodup/internal/tree"
)

// infoJSON is the subset of yt-dlp's -J output the crawler reads.
type infoJSON struct {
	Type        string       `json:"_type"`
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	WebpageURL  string       `json:"webpage_url"`
	OriginalURL string       `json:"original_url"`
	Entries     []*entryJSON `json:"entries"`
}

type entryJSON struct {
	Type       string `json:"_type"`
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	WebpageURL string `json:"webpage_url"`
}

// completedJSON is printed once per item by --print after_move.
type completedJSON struct {
	ID       string `json:"id"`
	FilePath string `json:"filepath"`
	Ext      string `json:"ext"`
}

// decodeNode converts one -J document into a Leaf or Container. skipped counts
// entries that carried no identity.
func decodeNode(data []byte, requested string) (node tree.Node, skipped int, err error) {
	var info infoJSON
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, 0, fmt.Errorf("decode info json: %w", err)
	}
	if strings.TrimSpace(info.ID) == "" {
		return nil, 0, fmt.Errorf("info json has no id")
	}
	url := firstNonEmpty(info.WebpageURL, info.OriginalURL, info.URL, requested)

	switch info.Type {
	case "playlist", "multi_video":
		container := tree.Container{ID: tree.ID(info.ID), Title: info.Title, URL: url}
		for _, entry := range info.Entries {
			if entry == nil || strings.TrimSpace(entry.ID) == "" {
				skipped++
				continue
			}
			container.Entries = append(container.Entries, tree.Ref{
				ID:    tree.ID(entry.ID),
				Title: entry.Title,
				URL:   firstNonEmpty(entry.URL, entry.WebpageURL, entry.ID),
			})
		}
		return container, skipped, nil
	default:
		return tree.Leaf{ID: tree.ID(info.ID), Title: info.Title, URL: url}, 0, nil
	}
}

// decodeCompleted parses a line printed by --print after_move. ok is false
// for lines that are not completion records.
func decodeCompleted(line string) (tree.Download, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return tree.Download{}, false
	}
	var done completedJSON
	if err := json.Unmarshal([]byte(line), &done); err != nil || done.ID == "" || done.FilePath == "" {
		return tree.Download{}, false
	}
	ext := strings.TrimPrefix(done.Ext, ".")
	if ext == "" {
		ext = strings.TrimPrefix(filepath.Ext(done.FilePath), ".")
	}
	return tree.Download{ID: tree.ID(done.ID), FilePath: done.FilePath, Ext: ext}, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
