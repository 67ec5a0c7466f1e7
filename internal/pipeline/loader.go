package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/clauserisk/internal/extract"
)

// Format is the encoding of a raw document
type Format string

const (
	FormatAuto Format = ""     // Sniff from content
	FormatText Format = "text" // Plain text or Markdown
	FormatHTML Format = "html" // Reduced to visible text
)

// Document is decoded text ready for analysis
type Document struct {
	Source string // Path, URL, "stdin" or "request"
	Text   string
}

// Loader reads documents from files, stdin or HTTP(S) URLs
type Loader struct {
	fetcher  *Fetcher
	maxBytes int64
	stdin    io.Reader
}

// NewLoader creates a loader that rejects documents larger than maxBytes
func NewLoader(maxBytes int64, fetcher *Fetcher) *Loader {
	return &Loader{
		fetcher:  fetcher,
		maxBytes: maxBytes,
		stdin:    os.Stdin,
	}
}

// Load reads source: "-" for stdin, an http(s) URL, or a file path
func (l *Loader) Load(ctx context.Context, source string) (*Document, error) {
	switch {
	case source == "-":
		return ReadDocument(l.stdin, "stdin", FormatAuto, l.maxBytes)

	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		if l.fetcher == nil {
			return nil, fmt.Errorf("%w: fetching URLs is disabled", ErrInput)
		}
		result, err := l.fetcher.FetchWithRetry(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInput, err)
		}
		return Decode(result.FinalURL, result.Body, FormatFromContentType(result.ContentType))

	default:
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInput, err)
		}
		defer func() { _ = f.Close() }()
		return ReadDocument(f, source, FormatFromPath(source), l.maxBytes)
	}
}

// ReadDocument reads and decodes a document from r
func ReadDocument(r io.Reader, source string, format Format, maxBytes int64) (*Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInput, source, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrInput, source, maxBytes)
	}
	return Decode(source, data, format)
}

// Decode validates raw bytes as UTF-8 text and reduces HTML to visible text
func Decode(source string, data []byte, format Format) (*Document, error) {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: %s is a PDF; convert it to text first", ErrInput, source)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrInput, source)
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, fmt.Errorf("%w: %s contains binary data", ErrInput, source)
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	if format == FormatAuto && len(data) > 0 {
		if strings.HasPrefix(http.DetectContentType(data), "text/html") {
			format = FormatHTML
		}
	}

	text := string(data)
	if format == FormatHTML {
		visible, err := extract.VisibleText(text)
		if err != nil {
			return nil, fmt.Errorf("%w: parse HTML %s: %v", ErrInput, source, err)
		}
		text = visible
	}

	return &Document{Source: source, Text: text}, nil
}

// FormatFromPath picks a format from a file extension
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	case ".txt", ".text", ".md", ".markdown":
		return FormatText
	}
	return FormatAuto
}

// FormatFromContentType picks a format from a Content-Type header
func FormatFromContentType(contentType string) Format {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return FormatAuto
	}
	switch mediaType {
	case "text/html", "application/xhtml+xml":
		return FormatHTML
	case "text/plain", "text/markdown":
		return FormatText
	}
	return FormatAuto
}
