// Package storage persists the crawl engine's event stream. It provides
// a SQLite-backed store for runs, pages, link edges and images, plus a
// CSV writer mirroring the page table for flat-file export.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/seoscope/seospider/internal/crawler"
	// SQLite database driver (CGO-free)
	_ "modernc.org/sqlite"
)

// CrawlRun identifies one traversal. Owned by the orchestrating layer,
// not the engine: the engine is a pure function of (seed, bounds).
type CrawlRun struct {
	ID           string
	Domain       string
	Status       string // pending, running, finished, failed, cancelled
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SQLiteStore persists crawl output in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed initializes) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection prevents lock conflicts
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateRun inserts a new crawl run row.
func (s *SQLiteStore) CreateRun(run *CrawlRun) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(`
		INSERT INTO crawls (id, domain, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Domain, run.Status, now, now)
	if err != nil {
		return fmt.Errorf("failed to create crawl run: %w", err)
	}
	return nil
}

// UpdateRunStatus moves a run to a new lifecycle status.
func (s *SQLiteStore) UpdateRunStatus(runID, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE crawls SET status = ?, error_message = ?, updated_at = ?
		WHERE id = ?
	`, status, errorMessage, time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	return nil
}

// GetRun fetches one crawl run by ID.
func (s *SQLiteStore) GetRun(runID string) (*CrawlRun, error) {
	run := &CrawlRun{}
	var errMsg sql.NullString
	err := s.db.QueryRow(`
		SELECT id, domain, status, error_message, created_at, updated_at
		FROM crawls WHERE id = ?
	`, runID).Scan(&run.ID, &run.Domain, &run.Status, &errMsg, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl run: %w", err)
	}
	run.ErrorMessage = errMsg.String
	return run, nil
}

// SavePage inserts one page record. The engine's dedup invariant means
// conflicts indicate a bug, so they surface as errors rather than being
// silently ignored.
func (s *SQLiteStore) SavePage(runID string, page *crawler.PageRecord) error {
	schemaTypes, err := json.Marshal(page.SchemaTypes)
	if err != nil {
		return fmt.Errorf("failed to marshal schema types: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO pages (
			crawl_id, url, status_code, title, meta_description, canonical,
			schema_types, full_text, text_length,
			h1_count, h2_count, h3_count, h4_count, h5_count, h6_count,
			internal_links, external_links, nofollow_links,
			target_keyword, fetch_error, crawled_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID, page.URL, page.StatusCode, page.Title, page.MetaDescription,
		page.Canonical, string(schemaTypes), page.FullText, page.TextLength,
		page.HeadingCounts[0], page.HeadingCounts[1], page.HeadingCounts[2],
		page.HeadingCounts[3], page.HeadingCounts[4], page.HeadingCounts[5],
		page.InternalLinks, page.ExternalLinks, page.NofollowLinks,
		page.TargetKeyword, page.FetchError, page.CrawledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save page %s: %w", page.URL, err)
	}
	return nil
}

// SaveLink upserts one link edge: a second sighting of the same
// (from, to) pair accumulates the count and ORs the nofollow flag.
func (s *SQLiteStore) SaveLink(runID string, link *crawler.LinkEdge) error {
	_, err := s.db.Exec(`
		INSERT INTO page_links (crawl_id, from_url, to_url, link_count, is_nofollow, is_internal)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(crawl_id, from_url, to_url) DO UPDATE SET
			link_count = link_count + excluded.link_count,
			is_nofollow = is_nofollow OR excluded.is_nofollow
	`, runID, link.FromURL, link.ToURL, link.Count, link.Nofollow, link.Internal)
	if err != nil {
		return fmt.Errorf("failed to save link %s -> %s: %w", link.FromURL, link.ToURL, err)
	}
	return nil
}

// SaveImage inserts one image record.
func (s *SQLiteStore) SaveImage(runID string, img *crawler.ImageRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO page_images (crawl_id, page_url, src, alt, has_alt, format)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, img.PageURL, img.Src, img.Alt, img.HasAlt, img.Format)
	if err != nil {
		return fmt.Errorf("failed to save image %s: %w", img.Src, err)
	}
	return nil
}

// RunSummary is the roll-up printed when a crawl ends.
type RunSummary struct {
	Pages  int
	Links  int
	Images int
}

// Summarize counts what one run produced.
func (s *SQLiteStore) Summarize(runID string) (*RunSummary, error) {
	sum := &RunSummary{}
	err := s.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM pages WHERE crawl_id = ?),
			(SELECT COUNT(*) FROM page_links WHERE crawl_id = ?),
			(SELECT COUNT(*) FROM page_images WHERE crawl_id = ?)
	`, runID, runID, runID).Scan(&sum.Pages, &sum.Links, &sum.Images)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize run: %w", err)
	}
	return sum, nil
}
