package batch

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// discoverInputs walks root and collects files whose extension matches
// InputExtension case-insensitively. WalkDir reads each directory in lexical
// order, so discovery order (and with it progress numbering and manifest
// indices) is deterministic across runs.
func discoverInputs(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), InputExtension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
