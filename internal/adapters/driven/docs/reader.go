// Package docs provides filesystem and web adapters for processed law
// documents.
package docs

import (
	"fmt"
	"os"

	"github.com/leyrag-labs/leyrag/internal/core/ports/driven"
)

// Ensure FileReader implements the interface.
var _ driven.DocumentReader = (*FileReader)(nil)

// FileReader reads processed markdown documents from the local
// filesystem.
type FileReader struct{}

// NewFileReader creates a filesystem document reader.
func NewFileReader() *FileReader {
	return &FileReader{}
}

// Read returns the content of the file at path.
func (r *FileReader) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document %s: %w", path, err)
	}
	return string(data), nil
}
