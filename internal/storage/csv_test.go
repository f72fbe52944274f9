package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seoscope/seospider/internal/crawler"
)

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawl.csv")

	w, err := NewCSVWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.WritePage(&crawler.PageRecord{
		URL:             "https://example.com/",
		StatusCode:      200,
		Title:           "Home, sweet home",
		MetaDescription: "Welcome",
		Canonical:       "https://example.com/",
		SchemaTypes:     []string{"Organization", "WebSite"},
		TextLength:      42,
		HeadingCounts:   [6]int{1, 2, 0, 0, 0, 0},
		InternalLinks:   3,
		ExternalLinks:   1,
		NofollowLinks:   1,
	}))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, csvHeader, rows[0])

	row := rows[1]
	assert.Equal(t, "https://example.com/", row[0])
	assert.Equal(t, "200", row[1])
	assert.Equal(t, "Home, sweet home", row[2])
	assert.Equal(t, "Organization,WebSite", row[5])
	assert.Equal(t, "42", row[6])
	assert.Equal(t, "1", row[7])  // h1_count
	assert.Equal(t, "2", row[8])  // h2_count
	assert.Equal(t, "3", row[13]) // internal_links
	assert.Equal(t, "", row[16])  // target_keyword placeholder
}
