package docs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/leyrag-labs/leyrag/internal/core/ports/driven"
)

// Ensure WebProcessor implements the interface.
var _ driven.DocumentProcessor = (*WebProcessor)(nil)

// Default configuration values.
const (
	DefaultTimeout = 60 * time.Second

	// maxBodyBytes bounds the response size read from a source page.
	maxBodyBytes = 10 << 20
)

// ProcessorConfig holds configuration for the web document processor.
type ProcessorConfig struct {
	// DataDir is where processed markdown files are written
	// (default: ~/.leyrag/data/leyes).
	DataDir string

	// Timeout is the per-fetch timeout (default: 60s).
	Timeout time.Duration
}

// WebProcessor fetches a law's source page, converts it to markdown
// and persists the result under the data directory.
type WebProcessor struct {
	client  *http.Client
	dataDir string
}

// NewWebProcessor creates a web document processor.
func NewWebProcessor(cfg ProcessorConfig) (*WebProcessor, error) {
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".leyrag", "data", "leyes")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	return &WebProcessor{
		client:  &http.Client{Timeout: cfg.Timeout},
		dataDir: cfg.DataDir,
	}, nil
}

// Process downloads the page at url, converts it to markdown and
// writes it to {dataDir}/{id}.md. It returns the file path and the
// markdown content.
func (p *WebProcessor) Process(ctx context.Context, url, id string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", url, err)
	}

	markdown, err := htmlToMarkdown(body)
	if err != nil {
		return "", "", fmt.Errorf("convert %s: %w", url, err)
	}
	if strings.TrimSpace(markdown) == "" {
		return "", "", fmt.Errorf("convert %s: empty document", url)
	}

	filePath := filepath.Join(p.dataDir, id+".md")
	if err := os.WriteFile(filePath, []byte(markdown), 0600); err != nil {
		return "", "", fmt.Errorf("write %s: %w", filePath, err)
	}
	return filePath, markdown, nil
}

// DataDir returns the directory processed files are written to.
func (p *WebProcessor) DataDir() string {
	return p.dataDir
}

// htmlToMarkdown converts an HTML page into plain markdown: headings
// become #-prefixed lines, block elements become paragraphs,
// navigation chrome is dropped.
func htmlToMarkdown(content []byte) (string, error) {
	doc, err := html.Parse(strings.NewReader(string(content)))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	var out strings.Builder
	renderNode(&out, doc)

	// Collapse runs of blank lines left by nested block elements.
	lines := strings.Split(out.String(), "\n")
	var result []string
	blank := true
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank {
				result = append(result, "")
			}
			blank = true
			continue
		}
		result = append(result, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(result, "\n")) + "\n", nil
}

// headingPrefixes maps heading tags to their markdown markers.
var headingPrefixes = map[string]string{
	"h1": "# ",
	"h2": "## ",
	"h3": "### ",
	"h4": "#### ",
}

func renderNode(out *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "head", "script", "style", "nav", "footer", "header", "aside", "noscript":
			return
		case "h1", "h2", "h3", "h4":
			out.WriteString("\n\n")
			out.WriteString(headingPrefixes[n.Data])
			out.WriteString(cleanInline(nodeText(n)))
			out.WriteString("\n\n")
			return
		case "p", "div", "li", "tr", "br":
			out.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		text := cleanInline(n.Data)
		if text != "" {
			out.WriteString(text)
			out.WriteString(" ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(out, c)
	}
}

// nodeText extracts all text from a node and its children.
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(nodeText(c))
	}
	return text.String()
}

// cleanInline collapses internal whitespace.
func cleanInline(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
