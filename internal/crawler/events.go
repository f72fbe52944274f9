package crawler

// Event is one item on the stream a crawl run emits. The engine never
// writes to a database or file itself; sinks consume these events.
type Event interface {
	event()
}

// PageDiscovered is emitted when a URL is dequeued for fetching.
type PageDiscovered struct {
	URL string
}

// PageRecorded carries the extraction result for one fetched URL.
type PageRecorded struct {
	Page *PageRecord
}

// LinkRecorded carries one aggregated link-graph edge.
type LinkRecorded struct {
	Link *LinkEdge
}

// ImageRecorded carries one image found on a page.
type ImageRecorded struct {
	Image *ImageRecord
}

// Progress is a human-readable status line.
type Progress struct {
	Message string
}

// RunFinished is the final event of every run. The event channel is
// closed immediately after it.
type RunFinished struct {
	Status Status
	Err    error
}

func (PageDiscovered) event() {}
func (PageRecorded) event()   {}
func (LinkRecorded) event()   {}
func (ImageRecorded) event()  {}
func (Progress) event()       {}
func (RunFinished) event()    {}
