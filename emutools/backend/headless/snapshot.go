package headless

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultSnapshotName = "emutools"

// SnapshotConfig makes the renderer write every Interval-th presented frame
// as a PNG file named <Name>_frame_<n>_<timestamp>.png into Directory.
type SnapshotConfig struct {
	Enabled   bool
	Interval  int
	Directory string
	Name      string
}

// Due reports whether presented frame number frame (1-based) is saved.
func (c SnapshotConfig) Due(frame int) bool {
	return c.Enabled && c.Interval > 0 && frame%c.Interval == 0
}

// CreateSnapshotConfig builds a snapshot configuration from CLI values. A
// zero interval disables snapshots. An empty directory selects a fresh
// temporary one. name may be a path (a ROM file, say); only its base name
// without extension is kept.
func CreateSnapshotConfig(interval int, directory, name string) (SnapshotConfig, error) {
	if interval <= 0 {
		return SnapshotConfig{}, nil
	}

	dir, err := snapshotDir(directory)
	if err != nil {
		return SnapshotConfig{}, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	return SnapshotConfig{
		Enabled:   true,
		Interval:  interval,
		Directory: dir,
		Name:      snapshotName(name),
	}, nil
}

func snapshotDir(directory string) (string, error) {
	if directory == "" {
		return os.MkdirTemp("", defaultSnapshotName+"-snapshots-*")
	}
	return directory, os.MkdirAll(directory, 0755)
}

func snapshotName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return defaultSnapshotName
	}
	return base
}
