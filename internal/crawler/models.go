package crawler

import "time"

// PageRecord is the per-URL extraction result. Exactly one record exists
// per normalized URL per crawl run.
type PageRecord struct {
	URL             string    // normalized URL (final URL after redirects)
	StatusCode      int       // HTTP status, 0 when the server was never reached
	Title           string    // first <title> element, trimmed
	MetaDescription string    // <meta name="description"> content
	Canonical       string    // <link rel="canonical"> href, normalized
	FullText        string    // visible text, whitespace-collapsed
	TextLength      int       // character count of FullText
	HeadingCounts   [6]int    // element counts for h1..h6
	InternalLinks   int       // outbound links to the seed host
	ExternalLinks   int       // outbound links elsewhere
	NofollowLinks   int       // anchors whose rel contains the nofollow token
	SchemaTypes     []string  // JSON-LD @type values, deduplicated
	TargetKeyword   string    // placeholder, populated downstream
	FetchError      string    // failure kind for non-HTTP failures, empty otherwise
	CrawledAt       time.Time // UTC
}

// LinkEdge is a directed edge in the cross-page link graph, aggregated
// per (from, to) pair on the source page.
type LinkEdge struct {
	FromURL  string
	ToURL    string
	Count    int  // occurrences of this exact edge on the source page
	Nofollow bool // true if any occurrence was nofollow
	Internal bool // target host matches the seed host
}

// ImageRecord is one distinct <img> tag encountered on a page.
type ImageRecord struct {
	PageURL string
	Src     string
	Alt     string
	HasAlt  bool
	Format  string // inferred from the src extension, "unknown" if absent
}

// Status is the terminal outcome of a crawl run.
type Status string

const (
	// StatusDone means the frontier drained or the page bound was reached.
	StatusDone Status = "done"
	// StatusFailed means a run-fatal condition stopped the crawl before
	// or during traversal. Per-page failures never produce this.
	StatusFailed Status = "failed"
	// StatusCancelled means the stop signal was observed mid-run.
	StatusCancelled Status = "cancelled"
)
