package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seoscope/seospider/internal/crawler"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := newTestStore(t)

	run := &CrawlRun{ID: "run-1", Domain: "example.com", Status: "running"}
	require.NoError(t, store.CreateRun(run))

	got, err := store.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "example.com", got.Domain)
	assert.Equal(t, "running", got.Status)
	assert.Empty(t, got.ErrorMessage)

	require.NoError(t, store.UpdateRunStatus("run-1", "failed", "seed unreachable"))

	got, err = store.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.Equal(t, "seed unreachable", got.ErrorMessage)
}

func TestSavePageDedupInvariant(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateRun(&CrawlRun{ID: "run-1", Domain: "example.com", Status: "running"}))

	page := &crawler.PageRecord{
		URL:             "https://example.com/",
		StatusCode:      200,
		Title:           "Home",
		MetaDescription: "Welcome",
		SchemaTypes:     []string{"Organization"},
		TextLength:      120,
		HeadingCounts:   [6]int{1, 3, 0, 0, 0, 0},
		InternalLinks:   5,
		ExternalLinks:   2,
		NofollowLinks:   1,
		CrawledAt:       time.Now().UTC(),
	}
	require.NoError(t, store.SavePage("run-1", page))

	// Same URL in the same run violates UNIQUE(crawl_id, url).
	assert.Error(t, store.SavePage("run-1", page))

	// The same URL in a different run is fine.
	require.NoError(t, store.CreateRun(&CrawlRun{ID: "run-2", Domain: "example.com", Status: "running"}))
	assert.NoError(t, store.SavePage("run-2", page))
}

func TestSaveLinkUpsert(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateRun(&CrawlRun{ID: "run-1", Domain: "example.com", Status: "running"}))

	edge := &crawler.LinkEdge{
		FromURL:  "https://example.com/",
		ToURL:    "https://example.com/about",
		Count:    2,
		Nofollow: false,
		Internal: true,
	}
	require.NoError(t, store.SaveLink("run-1", edge))

	// Second sighting accumulates count and ORs nofollow.
	edge2 := &crawler.LinkEdge{
		FromURL:  "https://example.com/",
		ToURL:    "https://example.com/about",
		Count:    1,
		Nofollow: true,
		Internal: true,
	}
	require.NoError(t, store.SaveLink("run-1", edge2))

	var count int
	var nofollow bool
	err := store.db.QueryRow(`
		SELECT link_count, is_nofollow FROM page_links
		WHERE crawl_id = 'run-1' AND from_url = ? AND to_url = ?
	`, edge.FromURL, edge.ToURL).Scan(&count, &nofollow)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.True(t, nofollow)
}

func TestSummarize(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateRun(&CrawlRun{ID: "run-1", Domain: "example.com", Status: "running"}))

	require.NoError(t, store.SavePage("run-1", &crawler.PageRecord{URL: "https://example.com/", StatusCode: 200}))
	require.NoError(t, store.SavePage("run-1", &crawler.PageRecord{URL: "https://example.com/a", StatusCode: 404}))
	require.NoError(t, store.SaveLink("run-1", &crawler.LinkEdge{
		FromURL: "https://example.com/", ToURL: "https://example.com/a", Count: 1, Internal: true,
	}))
	require.NoError(t, store.SaveImage("run-1", &crawler.ImageRecord{
		PageURL: "https://example.com/", Src: "https://example.com/logo.png", HasAlt: true, Alt: "logo", Format: "png",
	}))

	sum, err := store.Summarize("run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Pages)
	assert.Equal(t, 1, sum.Links)
	assert.Equal(t, 1, sum.Images)
}
