// Package scope provides URL normalization and same-site classification
// for a crawl run. All frontier and visited-set bookkeeping operates on
// URLs normalized by this package.
package scope

import (
	"fmt"
	"net/url"
	"strings"
)

// Scope decides whether a URL belongs to the site being crawled.
// Membership is an exact hostname match against the seed URL; subdomains
// are treated as external.
type Scope struct {
	seed *url.URL
}

// Classification describes a resolved href.
type Classification struct {
	URL      string // absolute normalized URL
	Internal bool   // hostname matches the seed hostname
	HTTP     bool   // scheme is http or https
}

// New builds a Scope from a seed domain or URL. A bare domain like
// "example.com" is promoted to "https://example.com".
func New(seed string) (*Scope, error) {
	s := strings.TrimSpace(seed)
	if s == "" {
		return nil, fmt.Errorf("empty seed domain")
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid seed %q: %w", seed, err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("seed %q has no hostname", seed)
	}

	canonicalize(u)
	return &Scope{seed: u}, nil
}

// SeedURL returns the normalized seed URL the crawl starts from.
func (s *Scope) SeedURL() string {
	return s.seed.String()
}

// Host returns the seed hostname.
func (s *Scope) Host() string {
	return s.seed.Hostname()
}

// Classify resolves href against base and normalizes the result.
// It returns ok=false for hrefs that cannot be parsed; those are dropped
// silently by callers. Non-HTTP(S) schemes (mailto, tel, javascript)
// come back with HTTP=false and are always external.
func (s *Scope) Classify(base *url.URL, href string) (Classification, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return Classification{}, false
	}

	resolved := base.ResolveReference(ref)
	canonicalize(resolved)

	scheme := resolved.Scheme
	if scheme != "http" && scheme != "https" {
		return Classification{URL: resolved.String()}, true
	}

	return Classification{
		URL:      resolved.String(),
		Internal: resolved.Hostname() == s.seed.Hostname(),
		HTTP:     true,
	}, true
}

// Normalize canonicalizes an absolute URL string. It is idempotent and
// collapses fragment-only differences, so it is safe to use as a
// visited-set key. Unparsable input is returned unchanged.
func (s *Scope) Normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	canonicalize(u)
	return u.String()
}

// IsInternal reports whether an absolute URL points at the seed host.
func (s *Scope) IsInternal(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Hostname() == s.seed.Hostname()
}

// canonicalize lower-cases the scheme and host and strips the fragment.
// Path and query are kept as-is: two URLs differing only by "#section"
// are the same page, but query strings can select distinct content.
func canonicalize(u *url.URL) {
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
}
