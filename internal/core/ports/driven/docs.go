package driven

import "context"

// DocumentReader reads processed markdown produced by the
// document-processing collaborator.
type DocumentReader interface {
	// Read returns the full text of the processed document at path.
	Read(path string) (string, error)
}

// DocumentProcessor converts a law's source URL into processed markdown.
// It is consumed only by ingestion; the query pipeline never calls it.
type DocumentProcessor interface {
	// Process fetches and converts the document, returning the path of
	// the stored markdown file and its content.
	Process(ctx context.Context, url, id string) (filePath, markdown string, err error)
}
