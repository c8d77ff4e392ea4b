package domain

import "strings"

// LawDocument represents an indexed legal text.
// The ID is derived from the law's official number (e.g. "ley_24714")
// and is stable for the lifetime of the document.
type LawDocument struct {
	// ID is the unique identifier, e.g. "ley_24714".
	ID string

	// Titulo is the official title of the law.
	Titulo string

	// URL is the official source location of the law text.
	URL string

	// FilePath points to the processed markdown produced by the
	// document-processing collaborator. May be empty if the document
	// was indexed without a local copy.
	FilePath string

	// Summary is a short description used as part of the embedded text.
	Summary string

	// Metadata holds scalar attributes such as "numero", "año", "categoria".
	Metadata map[string]any
}

// SearchableText returns the text that is embedded for similarity search.
// Following the ingestion convention, it combines title and summary.
func (d LawDocument) SearchableText() string {
	parts := make([]string, 0, 2)
	if d.Titulo != "" {
		parts = append(parts, d.Titulo)
	}
	if d.Summary != "" {
		parts = append(parts, d.Summary)
	}
	return strings.Join(parts, ". ")
}

// MetadataString returns a string metadata value, or empty if absent.
func (d LawDocument) MetadataString(key string) string {
	if d.Metadata == nil {
		return ""
	}
	if v, ok := d.Metadata[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
