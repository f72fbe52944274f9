package crawler

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsPolicy checks URLs against robots.txt. The per-host rule set is
// fetched once and cached for the lifetime of the run. Fetch failures
// fall open: the URL is allowed.
type RobotsPolicy struct {
	client    *HTTPClient
	userAgent string

	mu     sync.Mutex
	groups map[string]*robotstxt.Group
}

// NewRobotsPolicy creates a policy that fetches robots.txt with the
// run's own HTTP client and user agent.
func NewRobotsPolicy(client *HTTPClient, userAgent string) *RobotsPolicy {
	return &RobotsPolicy{
		client:    client,
		userAgent: userAgent,
		groups:    make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether the URL may be fetched.
func (r *RobotsPolicy) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	group := r.group(ctx, u)
	if group == nil {
		return true
	}

	// Rules like "Disallow: /*?sessionid=" match on the query too.
	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return group.Test(path)
}

func (r *RobotsPolicy) group(ctx context.Context, u *url.URL) *robotstxt.Group {
	key := u.Scheme + "://" + u.Host

	r.mu.Lock()
	group, cached := r.groups[key]
	r.mu.Unlock()
	if cached {
		return group
	}

	group = r.fetchGroup(ctx, key)

	r.mu.Lock()
	r.groups[key] = group
	r.mu.Unlock()
	return group
}

func (r *RobotsPolicy) fetchGroup(ctx context.Context, hostURL string) *robotstxt.Group {
	resp, err := r.client.Get(ctx, fmt.Sprintf("%s/robots.txt", hostURL))
	if err != nil {
		return nil
	}

	robots, err := robotstxt.FromStatusAndBytes(resp.StatusCode, resp.Body)
	if err != nil {
		return nil
	}
	return robots.FindGroup(r.userAgent)
}
