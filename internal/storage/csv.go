package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/seoscope/seospider/internal/crawler"
)

// csvHeader is the flat-file column layout consumed by the reporting
// layer. Order matters; downstream tooling reads by position.
var csvHeader = []string{
	"url", "status_code", "title", "meta_description", "canonical",
	"schema_types", "text_length", "h1_count", "h2_count", "h3_count",
	"h4_count", "h5_count", "h6_count", "internal_links", "external_links",
	"nofollow_links", "target_keyword",
}

// CSVWriter appends page records to a CSV file, one row per page.
type CSVWriter struct {
	f *os.File
	w *csv.Writer
}

// NewCSVWriter creates the file and writes the header row.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	return &CSVWriter{f: f, w: w}, nil
}

// WritePage appends one page row.
func (c *CSVWriter) WritePage(page *crawler.PageRecord) error {
	row := []string{
		page.URL,
		strconv.Itoa(page.StatusCode),
		page.Title,
		page.MetaDescription,
		page.Canonical,
		strings.Join(page.SchemaTypes, ","),
		strconv.Itoa(page.TextLength),
		strconv.Itoa(page.HeadingCounts[0]),
		strconv.Itoa(page.HeadingCounts[1]),
		strconv.Itoa(page.HeadingCounts[2]),
		strconv.Itoa(page.HeadingCounts[3]),
		strconv.Itoa(page.HeadingCounts[4]),
		strconv.Itoa(page.HeadingCounts[5]),
		strconv.Itoa(page.InternalLinks),
		strconv.Itoa(page.ExternalLinks),
		strconv.Itoa(page.NofollowLinks),
		page.TargetKeyword,
	}
	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("failed to write CSV row for %s: %w", page.URL, err)
	}
	return nil
}

// Close flushes buffered rows and closes the file.
func (c *CSVWriter) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		_ = c.f.Close()
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return c.f.Close()
}
