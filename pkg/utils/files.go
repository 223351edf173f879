package utils

import (
	"os"
	"path/filepath"
)

// ReadSource resolves relPath to an absolute path and reads the script there.
func ReadSource(relPath string) (fullPath string, source string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return fullPath, "", err
	}
	return fullPath, string(data), nil
}

// OutputPath replaces the extension of src with ext, placing the result in
// dir when dir is non-empty.
func OutputPath(src, dir, ext string) string {
	base := filepath.Base(src)
	name := base[:len(base)-len(filepath.Ext(base))] + ext
	if dir == "" {
		return filepath.Join(filepath.Dir(src), name)
	}
	return filepath.Join(dir, name)
}
