package crawler

// Frontier is the FIFO queue of normalized URLs awaiting a visit, with a
// queued-set so the same URL is never enqueued twice. It is owned by the
// single coordinating goroutine of one run and is not safe for concurrent
// use.
type Frontier struct {
	queue  []string
	queued map[string]struct{}
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{queued: make(map[string]struct{})}
}

// Push enqueues a URL unless it is already queued. Returns true if the
// URL was added.
func (f *Frontier) Push(url string) bool {
	if _, ok := f.queued[url]; ok {
		return false
	}
	f.queued[url] = struct{}{}
	f.queue = append(f.queue, url)
	return true
}

// Pop dequeues the oldest URL. Breadth-first ordering falls out of strict
// FIFO: shallow pages are discovered, and therefore dequeued, first.
func (f *Frontier) Pop() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	url := f.queue[0]
	f.queue = f.queue[1:]
	return url, true
}

// Len returns the number of URLs waiting in the queue.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// VisitedSet tracks normalized URLs that have already been dequeued for
// fetching. Like the Frontier it is run-local and mutated only by the
// coordinating goroutine.
type VisitedSet map[string]struct{}

// NewVisitedSet creates an empty visited-set.
func NewVisitedSet() VisitedSet {
	return make(VisitedSet)
}

// Visit marks a URL visited. Returns false if it was already visited,
// which is the at-most-once check the dedup invariant rests on.
func (v VisitedSet) Visit(url string) bool {
	if _, ok := v[url]; ok {
		return false
	}
	v[url] = struct{}{}
	return true
}

// Has reports whether a URL has been visited.
func (v VisitedSet) Has(url string) bool {
	_, ok := v[url]
	return ok
}

// Len returns the number of visited URLs.
func (v VisitedSet) Len() int {
	return len(v)
}
