// Package pdftext wraps PDF plain-text extraction behind a narrow Source
// interface so the extraction pipeline can be driven from fixtures in tests.
package pdftext

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Source is a page-addressable plain-text view of a document. Page indexes
// are 0-based.
type Source interface {
	PageCount() int
	PageText(page int) (string, error)
	Text() (string, error)
	Close() error
}

type document struct {
	file   *os.File
	reader *pdf.Reader
}

// Open reads the PDF at path. The caller owns the returned Source and must
// Close it.
func Open(path string) (Source, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &document{file: file, reader: reader}, nil
}

func (d *document) PageCount() int {
	return d.reader.NumPage()
}

// PageText returns the plain text of one page. The underlying library counts
// pages from 1; this interface counts from 0.
func (d *document) PageText(page int) (string, error) {
	if page < 0 || page >= d.reader.NumPage() {
		return "", fmt.Errorf("page %d out of range (document has %d pages)", page, d.reader.NumPage())
	}
	p := d.reader.Page(page + 1)
	if p.V.IsNull() {
		return "", nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract text from page %d: %w", page, err)
	}
	return text, nil
}

func (d *document) Text() (string, error) {
	var sb strings.Builder
	for i := 0; i < d.reader.NumPage(); i++ {
		text, err := d.PageText(i)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func (d *document) Close() error {
	return d.file.Close()
}

// Static is an in-memory Source backed by a slice of page texts. It exists
// for tests and sample-data paths.
type Static struct {
	Pages []string
}

func (s *Static) PageCount() int { return len(s.Pages) }

func (s *Static) PageText(page int) (string, error) {
	if page < 0 || page >= len(s.Pages) {
		return "", fmt.Errorf("page %d out of range (document has %d pages)", page, len(s.Pages))
	}
	return s.Pages[page], nil
}

func (s *Static) Text() (string, error) {
	return strings.Join(s.Pages, "\n"), nil
}

func (s *Static) Close() error { return nil }
