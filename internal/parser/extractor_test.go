package parser

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/seoscope/seospider/internal/scope"
)

func newTestExtractor(t *testing.T, pageURL string) *Extractor {
	t.Helper()
	sc, err := scope.New("https://example.com")
	if err != nil {
		t.Fatalf("Failed to create scope: %v", err)
	}
	e, err := NewExtractor(pageURL, sc)
	if err != nil {
		t.Fatalf("Failed to create extractor: %v", err)
	}
	return e
}

func TestExtractMetadata(t *testing.T) {
	htmlContent := `
<!DOCTYPE html>
<html>
<head>
	<title>  Test Page Title  </title>
	<meta NAME="Description" content=" This is a test description ">
	<link rel="canonical" href="/canonical-page#frag">
</head>
<body>
	<h1>Main heading</h1>
	<h2>Sub one</h2>
	<h2>Sub two</h2>
	<h6>Fine print</h6>
</body>
</html>
`
	e := newTestExtractor(t, "https://example.com/test-page")
	result, err := e.Extract([]byte(htmlContent))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.Title != "Test Page Title" {
		t.Errorf("Expected title 'Test Page Title', got '%s'", result.Title)
	}
	if result.MetaDescription != "This is a test description" {
		t.Errorf("Unexpected meta description: '%s'", result.MetaDescription)
	}
	if result.Canonical != "https://example.com/canonical-page" {
		t.Errorf("Unexpected canonical: '%s'", result.Canonical)
	}

	wantHeadings := [6]int{1, 2, 0, 0, 0, 1}
	if result.HeadingCounts != wantHeadings {
		t.Errorf("Expected heading counts %v, got %v", wantHeadings, result.HeadingCounts)
	}
}

func TestExtractFirstMetaDescriptionWins(t *testing.T) {
	htmlContent := `
<html>
<head>
	<meta name="description" content="first description">
	<meta name="description" content="second description">
</head>
<body></body>
</html>
`
	e := newTestExtractor(t, "https://example.com/")
	result, err := e.Extract([]byte(htmlContent))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.MetaDescription != "first description" {
		t.Errorf("Expected the first description to win, got '%s'", result.MetaDescription)
	}
}

func TestExtractVisibleText(t *testing.T) {
	htmlContent := `
<html>
<head>
	<style>body { color: red; }</style>
	<script>var hidden = "should not appear";</script>
</head>
<body>
	<p>Hello    world</p>
	<noscript>also hidden</noscript>
	<div>second   block</div>
</body>
</html>
`
	e := newTestExtractor(t, "https://example.com/")
	result, err := e.Extract([]byte(htmlContent))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if strings.Contains(result.FullText, "hidden") {
		t.Errorf("Script/noscript content leaked into text: %q", result.FullText)
	}
	if !strings.Contains(result.FullText, "Hello world") {
		t.Errorf("Expected collapsed 'Hello world' in text, got %q", result.FullText)
	}
	if !strings.Contains(result.FullText, "second block") {
		t.Errorf("Expected 'second block' in text, got %q", result.FullText)
	}
	if result.TextLength != utf8.RuneCountInString(result.FullText) {
		t.Errorf("TextLength %d does not match rune count %d", result.TextLength, utf8.RuneCountInString(result.FullText))
	}
}

func TestExtractTextLengthCountsCharacters(t *testing.T) {
	htmlContent := `<html><body><p>héllo wörld — 日本語</p></body></html>`

	e := newTestExtractor(t, "https://example.com/")
	result, err := e.Extract([]byte(htmlContent))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.FullText != "héllo wörld — 日本語" {
		t.Fatalf("Unexpected text: %q", result.FullText)
	}
	// 17 characters, not the 27 bytes of the UTF-8 encoding.
	if result.TextLength != 17 {
		t.Errorf("Expected text length 17, got %d", result.TextLength)
	}
}

func TestExtractLinks(t *testing.T) {
	htmlContent := `
<html><body>
	<a href="/about" rel="nofollow">About</a>
	<a href="https://example.com/a">A</a>
	<a href="https://example.com/a">A again</a>
	<a href="https://other.com/b" rel="noopener NOFOLLOW">B</a>
	<a href="mailto:x@example.com">Mail</a>
	<a href="javascript:void(0)">JS</a>
	<a href="#section">Jump</a>
</body></html>
`
	e := newTestExtractor(t, "https://example.com/page")
	result, err := e.Extract([]byte(htmlContent))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// /about, /a twice, #section are internal; other.com and mailto external.
	if result.InternalLinks != 4 {
		t.Errorf("Expected 4 internal links, got %d", result.InternalLinks)
	}
	if result.ExternalLinks != 2 {
		t.Errorf("Expected 2 external links, got %d", result.ExternalLinks)
	}
	if result.NofollowLinks != 2 {
		t.Errorf("Expected 2 nofollow links, got %d", result.NofollowLinks)
	}

	// Only HTTP(S), non-fragment anchors become recordable links.
	wantLinks := []Link{
		{TargetURL: "https://example.com/about", Internal: true, Nofollow: true},
		{TargetURL: "https://example.com/a", Internal: true},
		{TargetURL: "https://example.com/a", Internal: true},
		{TargetURL: "https://other.com/b", Nofollow: true},
	}
	if len(result.Links) != len(wantLinks) {
		t.Fatalf("Expected %d links, got %d: %+v", len(wantLinks), len(result.Links), result.Links)
	}
	for i, want := range wantLinks {
		if result.Links[i] != want {
			t.Errorf("Link %d: expected %+v, got %+v", i, want, result.Links[i])
		}
	}
}

func TestExtractImages(t *testing.T) {
	htmlContent := `
<html><body>
	<img src="/img/logo.PNG" alt="Company logo">
	<img src="/img/logo.PNG" alt="duplicate">
	<img src="https://cdn.example.com/photo.webp?v=2" alt="   ">
	<img src="/banner" >
	<img src="" alt="empty src">
</body></html>
`
	e := newTestExtractor(t, "https://example.com/page")
	result, err := e.Extract([]byte(htmlContent))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	wantImages := []Image{
		{Src: "https://example.com/img/logo.PNG", Alt: "Company logo", HasAlt: true, Format: "png"},
		{Src: "https://cdn.example.com/photo.webp?v=2", Alt: "", HasAlt: false, Format: "webp"},
		{Src: "https://example.com/banner", Alt: "", HasAlt: false, Format: "unknown"},
	}
	if len(result.Images) != len(wantImages) {
		t.Fatalf("Expected %d images, got %d: %+v", len(wantImages), len(result.Images), result.Images)
	}
	for i, want := range wantImages {
		if result.Images[i] != want {
			t.Errorf("Image %d: expected %+v, got %+v", i, want, result.Images[i])
		}
	}
}

func TestExtractSchemaTypes(t *testing.T) {
	htmlContent := `
<html><head>
	<script type="application/ld+json">{"@type": "Product", "name": "X"}</script>
	<script type="application/ld+json">{this is not json</script>
	<script type="application/ld+json">
		{"@context": "https://schema.org", "@graph": [
			{"@type": "Organization"},
			{"@type": ["WebPage", "FAQPage"], "mainEntity": {"@type": "Question"}}
		]}
	</script>
	<script type="application/ld+json">{"@type": "Product"}</script>
</head></html>
`
	e := newTestExtractor(t, "https://example.com/")
	result, err := e.Extract([]byte(htmlContent))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	want := map[string]bool{
		"Product": true, "Organization": true, "WebPage": true,
		"FAQPage": true, "Question": true,
	}
	if len(result.SchemaTypes) != len(want) {
		t.Fatalf("Expected %d schema types, got %v", len(want), result.SchemaTypes)
	}
	for _, st := range result.SchemaTypes {
		if !want[st] {
			t.Errorf("Unexpected schema type %q", st)
		}
	}
}

func TestExtractMalformedHTML(t *testing.T) {
	// Broken nesting and an unclosed tag must not abort extraction.
	htmlContent := `<html><body><h1>Heading<p>text<a href="/ok">link</div></body>`

	e := newTestExtractor(t, "https://example.com/")
	result, err := e.Extract([]byte(htmlContent))
	if err != nil {
		t.Fatalf("Extract failed on malformed HTML: %v", err)
	}
	if result.HeadingCounts[0] != 1 {
		t.Errorf("Expected one h1, got %d", result.HeadingCounts[0])
	}
	if len(result.Links) != 1 || result.Links[0].TargetURL != "https://example.com/ok" {
		t.Errorf("Expected link to /ok, got %+v", result.Links)
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	e := newTestExtractor(t, "https://example.com/")
	result, err := e.Extract([]byte(""))
	if err != nil {
		t.Fatalf("Extract failed on empty body: %v", err)
	}
	if result.Title != "" || result.TextLength != 0 || len(result.Links) != 0 {
		t.Error("Expected empty extraction for empty document")
	}
}
