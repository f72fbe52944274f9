// Package parser extracts SEO signals from HTML documents.
// It walks a leniently parsed DOM and collects page metadata, heading
// counts, visible text, outbound links, images and JSON-LD schema types.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/seoscope/seospider/internal/scope"
)

// Link is an outbound anchor that can be recorded in the link graph.
type Link struct {
	TargetURL string // normalized absolute URL
	Internal  bool
	Nofollow  bool
}

// Image is a distinct <img> tag found on the page.
type Image struct {
	Src    string // resolved absolute URL
	Alt    string
	HasAlt bool   // alt attribute present and non-blank
	Format string // lower-cased file extension, or "unknown"
}

// Extraction holds everything pulled from one HTML document.
type Extraction struct {
	Title           string
	MetaDescription string
	Canonical       string
	HeadingCounts   [6]int // element counts for h1..h6
	FullText        string
	TextLength      int
	InternalLinks   int
	ExternalLinks   int
	NofollowLinks   int
	Links           []Link
	Images          []Image
	SchemaTypes     []string
}

// Extractor parses pages fetched from a single crawl scope.
type Extractor struct {
	base  *url.URL
	scope *scope.Scope
}

// NewExtractor creates an extractor for a page. pageURL is the final URL
// after redirects; relative references resolve against it.
func NewExtractor(pageURL string, sc *scope.Scope) (*Extractor, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}
	return &Extractor{base: base, scope: sc}, nil
}

// Extract parses the document once and collects all signals. Malformed
// markup degrades to partial results; a broken element never aborts the
// rest of the page.
func (e *Extractor) Extract(body []byte) (*Extraction, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	result := &Extraction{}
	seenImages := make(map[string]bool)
	seenTypes := make(map[string]bool)
	e.walk(doc, result, seenImages, seenTypes)

	result.FullText = strings.Join(collectText(doc, nil), " ")
	result.TextLength = utf8.RuneCountInString(result.FullText)

	return result, nil
}

func (e *Extractor) walk(n *html.Node, result *Extraction, seenImages, seenTypes map[string]bool) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			if result.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				result.Title = strings.TrimSpace(n.FirstChild.Data)
			}
		case "meta":
			e.parseMeta(n, result)
		case "link":
			e.parseCanonical(n, result)
		case "a":
			e.parseAnchor(n, result)
		case "img":
			e.parseImage(n, result, seenImages)
		case "script":
			if strings.EqualFold(attr(n, "type"), "application/ld+json") {
				e.parseJSONLD(n, result, seenTypes)
			}
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(n.Data[1] - '0')
			result.HeadingCounts[level-1]++
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.walk(c, result, seenImages, seenTypes)
	}
}

func (e *Extractor) parseMeta(n *html.Node, result *Extraction) {
	// First description wins, same as the title handling.
	if result.MetaDescription == "" && strings.EqualFold(attr(n, "name"), "description") {
		result.MetaDescription = strings.TrimSpace(attr(n, "content"))
	}
}

func (e *Extractor) parseCanonical(n *html.Node, result *Extraction) {
	if !strings.EqualFold(attr(n, "rel"), "canonical") {
		return
	}
	href := attr(n, "href")
	if href == "" {
		return
	}
	if cls, ok := e.scope.Classify(e.base, href); ok {
		result.Canonical = cls.URL
	}
}

// parseAnchor classifies one <a href>. Per-page counters include every
// resolvable anchor; the Links slice carries only HTTP(S) targets that
// can become link-graph edges or frontier entries. Fragment-only hrefs
// count as internal but never produce an edge back to the same page.
func (e *Extractor) parseAnchor(n *html.Node, result *Extraction) {
	href := strings.TrimSpace(attr(n, "href"))
	if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return
	}

	nofollow := hasRelToken(attr(n, "rel"), "nofollow")

	if strings.HasPrefix(href, "#") {
		result.InternalLinks++
		if nofollow {
			result.NofollowLinks++
		}
		return
	}

	cls, ok := e.scope.Classify(e.base, href)
	if !ok {
		return
	}

	if cls.Internal {
		result.InternalLinks++
	} else {
		result.ExternalLinks++
	}
	if nofollow {
		result.NofollowLinks++
	}

	if !cls.HTTP {
		return
	}

	result.Links = append(result.Links, Link{
		TargetURL: cls.URL,
		Internal:  cls.Internal,
		Nofollow:  nofollow,
	})
}

func (e *Extractor) parseImage(n *html.Node, result *Extraction, seen map[string]bool) {
	src := strings.TrimSpace(attr(n, "src"))
	if src == "" {
		return
	}

	abs := src
	if ref, err := url.Parse(src); err == nil {
		abs = e.base.ResolveReference(ref).String()
	}
	if seen[abs] {
		return
	}
	seen[abs] = true

	alt := strings.TrimSpace(attr(n, "alt"))
	result.Images = append(result.Images, Image{
		Src:    abs,
		Alt:    alt,
		HasAlt: alt != "",
		Format: imageFormat(abs),
	})
}

// parseJSONLD collects @type values from one ld+json block. A block that
// fails to parse is skipped without affecting the rest of the page.
func (e *Extractor) parseJSONLD(n *html.Node, result *Extraction, seen map[string]bool) {
	var raw strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			raw.WriteString(c.Data)
		}
	}

	var data interface{}
	if err := json.Unmarshal([]byte(raw.String()), &data); err != nil {
		return
	}

	collectSchemaTypes(data, seen, &result.SchemaTypes)
}

// collectSchemaTypes walks the decoded JSON-LD structure and gathers every
// @type value, including nested objects and @graph arrays.
func collectSchemaTypes(data interface{}, seen map[string]bool, out *[]string) {
	switch v := data.(type) {
	case map[string]interface{}:
		if t, ok := v["@type"]; ok {
			switch tv := t.(type) {
			case string:
				addSchemaType(tv, seen, out)
			case []interface{}:
				for _, item := range tv {
					if s, ok := item.(string); ok {
						addSchemaType(s, seen, out)
					}
				}
			}
		}
		for _, child := range v {
			collectSchemaTypes(child, seen, out)
		}
	case []interface{}:
		for _, item := range v {
			collectSchemaTypes(item, seen, out)
		}
	}
}

func addSchemaType(t string, seen map[string]bool, out *[]string) {
	t = strings.TrimSpace(t)
	if t == "" || seen[t] {
		return
	}
	seen[t] = true
	*out = append(*out, t)
}

// collectText gathers visible text nodes, excluding script, style and
// other non-rendered subtrees. Whitespace is collapsed.
func collectText(n *html.Node, parts []string) []string {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template":
			return parts
		}
	}
	if n.Type == html.TextNode {
		if fields := strings.Fields(n.Data); len(fields) > 0 {
			parts = append(parts, strings.Join(fields, " "))
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parts = collectText(c, parts)
	}
	return parts
}

// hasRelToken reports whether a rel attribute contains the given token.
// Matching is case-insensitive and tokenized on whitespace, so
// rel="noopener nofollow" counts as nofollow.
func hasRelToken(rel, token string) bool {
	for _, t := range strings.Fields(rel) {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}

// imageFormat infers the image format from the URL's file extension.
func imageFormat(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return "unknown"
	}
	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	if ext == "" {
		return "unknown"
	}
	return strings.ToLower(ext)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
