package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	startMarker = "<!-- SNAPSHOTS:START -->"
	endMarker   = "<!-- SNAPSHOTS:END -->"
)

var errNoSnapshotDir = errors.New("no snapshot directory provided")

// <name>_frame_<n>_<timestamp>.png, as written by the headless backend
var snapshotName = regexp.MustCompile(`^(.+)_frame_(\d+)_\d{8}_\d{6}\.png$`)

type snapshot struct {
	File  string
	Name  string
	Frame int
}

// collect lists the snapshots in dir ordered by name, then frame.
func collect(dir string) ([]snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var items []snapshot
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := snapshotName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		frame, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		items = append(items, snapshot{File: e.Name(), Name: m[1], Frame: frame})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].Frame < items[j].Frame
	})
	return items, nil
}

func renderTable(items []snapshot, dir string, cols, width int) string {
	if cols <= 0 {
		cols = 4
	}

	var sb strings.Builder
	sb.WriteString("<table>\n")
	for i := 0; i < len(items); i += cols {
		sb.WriteString("  <tr>\n")
		for c := 0; c < cols; c++ {
			if i+c >= len(items) {
				sb.WriteString("    <td></td>\n")
				continue
			}
			it := items[i+c]
			src := filepath.ToSlash(filepath.Join(dir, url.PathEscape(it.File)))
			fmt.Fprintf(&sb, "    <td align=\"center\"><img src=\"%s\" width=\"%d\" /><br><sub>%s frame %d</sub></td>\n",
				src, width, it.Name, it.Frame)
		}
		sb.WriteString("  </tr>\n")
	}
	sb.WriteString("</table>\n")
	return sb.String()
}

// replaceMarked swaps whatever sits between the markers for table.
func replaceMarked(content, table string) (string, error) {
	start := strings.Index(content, startMarker)
	end := strings.Index(content, endMarker)
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("markers not found, ensure %s and %s exist", startMarker, endMarker)
	}

	var sb strings.Builder
	sb.WriteString(content[:start+len(startMarker)])
	sb.WriteString("\n")
	sb.WriteString(table)
	sb.WriteString(content[end:])
	return sb.String(), nil
}

func writeTable(path, table string) error {
	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		content = []byte("# Snapshots\n\n" + startMarker + "\n" + endMarker + "\n")
	case err != nil:
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	updated, err := replaceMarked(string(content), table)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
