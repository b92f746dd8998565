package sequence

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Manifest is the JSON index written next to the frames.
type Manifest struct {
	Format string   `json:"format"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Frames []Result `json:"frames"`
}

// WriteManifest writes the manifest to path. Frame paths are stored relative
// to the manifest's directory.
func WriteManifest(path string, cfg Config, results []Result) error {
	dir := filepath.Dir(path)
	m := Manifest{
		Format: cfg.Format.String(),
		Width:  cfg.Width,
		Height: cfg.Height,
		Frames: make([]Result, len(results)),
	}
	for i, r := range results {
		if rel, err := filepath.Rel(dir, r.Path); err == nil && r.Path != "" {
			r.Path = filepath.ToSlash(rel)
		}
		m.Frames[i] = r
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
