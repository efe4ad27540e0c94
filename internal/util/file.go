package util

import (
	"os"
	"path/filepath"
	"strings"
)

// FLVExtensions is the list of file extensions treated as FLV containers.
var FLVExtensions = map[string]bool{
	".flv": true,
	".f4v": true,
}

// IsFLVFile checks if the given path is an existing file with an FLV extension.
func IsFLVFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	ext := strings.ToLower(filepath.Ext(path))
	return FLVExtensions[ext]
}

// FileExists reports whether path exists, whatever its type.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// GetFilename returns the filename from a path.
func GetFilename(path string) string {
	return filepath.Base(path)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}
