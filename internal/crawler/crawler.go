// Package crawler implements the crawl engine: a bounded, deduplicating
// breadth-first traversal of same-site pages that extracts SEO signals
// per page and a directed link graph, emitting a typed event stream.
//
// One goroutine owns the Frontier and VisitedSet and integrates results
// sequentially; a bounded pool of workers does fetch and extract. Page
// records may arrive out of discovery order under concurrency, but
// enqueueing and visited-set membership follow FIFO discovery order.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/seoscope/seospider/internal/config"
	"github.com/seoscope/seospider/internal/parser"
	"github.com/seoscope/seospider/internal/scope"
)

// Crawler runs one crawl at a time. All traversal state is created fresh
// inside Run, so independent runs of different domains never interfere.
type Crawler struct {
	cfg    *config.CrawlConfig
	client *HTTPClient
	pacer  *Pacer
	robots *RobotsPolicy
}

// New creates a crawler from the given configuration.
func New(cfg *config.CrawlConfig) *Crawler {
	client := NewHTTPClient(cfg.UserAgent, cfg.RequestTimeout)
	c := &Crawler{
		cfg:    cfg,
		client: client,
		pacer:  NewPacer(cfg.RequestDelay),
	}
	if cfg.RespectRobots {
		c.robots = NewRobotsPolicy(client, cfg.UserAgent)
	}
	return c
}

// Run starts the crawl and returns its event stream. The stream always
// ends with a RunFinished event and is then closed. Cancel the context
// to stop the run cooperatively: in-flight fetches may finish and emit,
// but nothing new is dequeued.
func (c *Crawler) Run(ctx context.Context) <-chan Event {
	events := make(chan Event, 64)
	go c.run(ctx, events)
	return events
}

// fetchResult is what a worker posts back to the coordinator.
type fetchResult struct {
	url        string // normalized URL as dequeued
	resp       *Response
	fetchErr   *FetchError
	extraction *parser.Extraction
	disallowed bool // blocked by robots.txt
}

// runState is the traversal state owned by the coordinating goroutine.
type runState struct {
	scope    *scope.Scope
	frontier *Frontier
	visited  VisitedSet
	events   chan<- Event
	seedURL  string
	pages    int
	fatal    error
}

func (c *Crawler) run(ctx context.Context, events chan<- Event) {
	defer close(events)
	defer c.client.Close()

	sc, err := scope.New(c.cfg.SeedDomain)
	if err != nil {
		events <- RunFinished{Status: StatusFailed, Err: err}
		return
	}

	st := &runState{
		scope:    sc,
		frontier: NewFrontier(),
		visited:  NewVisitedSet(),
		events:   events,
		seedURL:  sc.SeedURL(),
	}
	st.frontier.Push(st.seedURL)

	slog.Info("Starting crawl", "seed", st.seedURL, "max_pages", c.cfg.MaxPages, "concurrency", c.cfg.Concurrency)

	results := make(chan *fetchResult)
	inflight := 0
	cancelled := false
	done := ctx.Done()

	for {
		if !cancelled && ctx.Err() != nil {
			cancelled = true
			done = nil
		}

		if !cancelled {
			for inflight < c.cfg.Concurrency && st.pages < c.cfg.MaxPages {
				u, ok := st.frontier.Pop()
				if !ok {
					break
				}
				if !st.visited.Visit(u) {
					continue
				}
				st.pages++
				events <- Progress{Message: fmt.Sprintf("Crawling page %d: %s", st.pages, u)}
				events <- PageDiscovered{URL: u}
				inflight++
				go c.fetch(ctx, u, sc, results)
			}
		}

		if inflight == 0 {
			break
		}

		select {
		case <-done:
			cancelled = true
			done = nil
		case res := <-results:
			inflight--
			c.integrate(st, res)
		}
	}

	switch {
	case cancelled:
		slog.Info("Crawl cancelled", "pages", st.pages)
		events <- RunFinished{Status: StatusCancelled, Err: ctx.Err()}
	case st.fatal != nil:
		slog.Error("Crawl failed", "error", st.fatal)
		events <- RunFinished{Status: StatusFailed, Err: st.fatal}
	default:
		slog.Info("Crawl completed", "pages", st.pages)
		events <- RunFinished{Status: StatusDone}
	}
}

// fetch runs in a worker goroutine. It has no access to the frontier or
// visited-set; everything it learns travels back through the results
// channel for sequential integration.
func (c *Crawler) fetch(ctx context.Context, u string, sc *scope.Scope, results chan<- *fetchResult) {
	res := &fetchResult{url: u}
	defer func() { results <- res }()

	if c.robots != nil && !c.robots.Allowed(ctx, u) {
		res.disallowed = true
		return
	}

	if err := c.pacer.Wait(ctx, u); err != nil {
		res.fetchErr = &FetchError{URL: u, Kind: FetchNonHTTPError, Err: err}
		return
	}

	resp, err := c.client.Get(ctx, u)
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			fe = &FetchError{URL: u, Kind: FetchNonHTTPError, Err: err}
		}
		res.fetchErr = fe
		return
	}
	res.resp = resp

	// Error responses and non-HTML bodies become record-only pages; the
	// extractor is never invoked on them.
	if resp.StatusCode >= 400 || !resp.IsHTML() {
		return
	}

	extractor, err := parser.NewExtractor(resp.FinalURL, sc)
	if err != nil {
		slog.Warn("Skipping extraction", "url", u, "error", err)
		return
	}
	extraction, err := extractor.Extract(resp.Body)
	if err != nil {
		slog.Warn("Extraction failed", "url", u, "error", err)
		return
	}
	res.extraction = extraction
}

// integrate folds one worker result into the run: emits the page record,
// aggregates and emits link edges, emits images, and grows the frontier.
func (c *Crawler) integrate(st *runState, res *fetchResult) {
	now := time.Now().UTC()

	if res.disallowed {
		slog.Info("URL disallowed by robots.txt", "url", res.url)
		st.events <- PageRecorded{Page: &PageRecord{
			URL:        res.url,
			FetchError: "robots_disallowed",
			CrawledAt:  now,
		}}
		return
	}

	if res.fetchErr != nil {
		// Fetches abandoned because the run was stopped are not pages.
		if errors.Is(res.fetchErr, context.Canceled) {
			return
		}
		slog.Warn("Fetch failed", "url", res.url, "kind", string(res.fetchErr.Kind))
		st.events <- PageRecorded{Page: &PageRecord{
			URL:        res.url,
			FetchError: string(res.fetchErr.Kind),
			CrawledAt:  now,
		}}
		if res.url == st.seedURL {
			st.fatal = fmt.Errorf("seed unreachable: %w", res.fetchErr)
		}
		return
	}

	// Redirects are followed by the transport; the final URL is what gets
	// recorded and marked visited. A redirect landing on an already
	// visited page emits nothing.
	pageURL := res.url
	if final := st.scope.Normalize(res.resp.FinalURL); final != pageURL {
		if !st.visited.Visit(final) {
			slog.Debug("Redirect target already visited", "from", res.url, "to", final)
			return
		}
		pageURL = final
	}

	page := &PageRecord{
		URL:        pageURL,
		StatusCode: res.resp.StatusCode,
		CrawledAt:  now,
	}
	if ex := res.extraction; ex != nil {
		page.Title = ex.Title
		page.MetaDescription = ex.MetaDescription
		page.Canonical = ex.Canonical
		page.FullText = ex.FullText
		page.TextLength = ex.TextLength
		page.HeadingCounts = ex.HeadingCounts
		page.InternalLinks = ex.InternalLinks
		page.ExternalLinks = ex.ExternalLinks
		page.NofollowLinks = ex.NofollowLinks
		page.SchemaTypes = ex.SchemaTypes
	}
	st.events <- PageRecorded{Page: page}

	if res.extraction == nil {
		return
	}

	for _, edge := range aggregateEdges(pageURL, res.extraction.Links) {
		st.events <- LinkRecorded{Link: edge}
		if edge.Internal && !st.visited.Has(edge.ToURL) {
			st.frontier.Push(edge.ToURL)
		}
	}

	for _, img := range res.extraction.Images {
		st.events <- ImageRecorded{Image: &ImageRecord{
			PageURL: pageURL,
			Src:     img.Src,
			Alt:     img.Alt,
			HasAlt:  img.HasAlt,
			Format:  img.Format,
		}}
	}
}

// aggregateEdges merges repeated anchors to the same target into one edge
// with a count. Any nofollow occurrence marks the whole edge nofollow.
// First-seen order is preserved so enqueueing stays deterministic.
func aggregateEdges(from string, links []parser.Link) []*LinkEdge {
	byTarget := make(map[string]*LinkEdge)
	var edges []*LinkEdge

	for _, l := range links {
		edge, ok := byTarget[l.TargetURL]
		if !ok {
			edge = &LinkEdge{FromURL: from, ToURL: l.TargetURL, Internal: l.Internal}
			byTarget[l.TargetURL] = edge
			edges = append(edges, edge)
		}
		edge.Count++
		if l.Nofollow {
			edge.Nofollow = true
		}
	}
	return edges
}
