package sitemap

import (
	"testing"
)

const leafSitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/</loc></url>
  <url><loc>https://example.com/about</loc><lastmod>2024-01-01</lastmod></url>
  <url><loc>https://example.com/blog</loc></url>
</urlset>`

func TestExtractLeafDocumentOrder(t *testing.T) {
	doc, err := Extract([]byte(leafSitemap))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if doc.Kind != KindLeaf {
		t.Errorf("Expected leaf document, got kind %d", doc.Kind)
	}

	expected := []string{
		"https://example.com/",
		"https://example.com/about",
		"https://example.com/blog",
	}
	if len(doc.URLs) != len(expected) {
		t.Fatalf("Expected %d URLs, got %d", len(expected), len(doc.URLs))
	}
	for i, want := range expected {
		if doc.URLs[i] != want {
			t.Errorf("URL %d: expected %s, got %s", i, want, doc.URLs[i])
		}
	}
}

func TestExtractSitemapIndex(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://example.com/sitemap-1.xml</loc></sitemap>
  <sitemap><loc>https://example.com/sitemap-2.xml</loc></sitemap>
</sitemapindex>`

	doc, err := Extract([]byte(content))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if doc.Kind != KindIndex {
		t.Fatalf("Expected index document, got kind %d", doc.Kind)
	}
	if len(doc.URLs) != 2 {
		t.Fatalf("Expected 2 child sitemaps, got %d", len(doc.URLs))
	}
	if doc.URLs[0] != "https://example.com/sitemap-1.xml" {
		t.Errorf("Unexpected first child: %s", doc.URLs[0])
	}
}

func TestExtractAlternateLanguageLinks(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:xhtml="http://www.w3.org/1999/xhtml">
  <url>
    <loc>https://example.com/page</loc>
    <xhtml:link rel="alternate" hreflang="de" href="https://example.com/de/page"/>
    <xhtml:link rel="alternate" hreflang="fr" href="https://example.com/fr/page"/>
  </url>
</urlset>`

	doc, err := Extract([]byte(content))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	expected := []string{
		"https://example.com/page",
		"https://example.com/de/page",
		"https://example.com/fr/page",
	}
	if len(doc.URLs) != len(expected) {
		t.Fatalf("Expected %d URLs, got %d: %v", len(expected), len(doc.URLs), doc.URLs)
	}
	for i, want := range expected {
		if doc.URLs[i] != want {
			t.Errorf("URL %d: expected %s, got %s", i, want, doc.URLs[i])
		}
	}
}

func TestExtractTrimmedTier(t *testing.T) {
	// Garbage before the declaration and after the root close tag.
	content := "garbage prefix\n" + leafSitemap + "\ntrailing junk"

	doc, err := Extract([]byte(content))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(doc.URLs) != 3 {
		t.Errorf("Expected 3 URLs after trimming, got %d", len(doc.URLs))
	}
}

func TestExtractRegexFallback(t *testing.T) {
	// Unclosed tags defeat the XML tiers; loc pairs are still well formed.
	content := `<?xml version="1.0"?>
<urlset><url><loc>https://example.com/a</loc>
<url><loc>https://example.com/b</loc></url>
<broken`

	doc, err := Extract([]byte(content))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	want := map[string]bool{
		"https://example.com/a": true,
		"https://example.com/b": true,
	}
	if len(doc.URLs) != len(want) {
		t.Fatalf("Expected %d URLs, got %d: %v", len(want), len(doc.URLs), doc.URLs)
	}
	for _, u := range doc.URLs {
		if !want[u] {
			t.Errorf("Unexpected URL from regex fallback: %s", u)
		}
	}
}

func TestExtractRegexFallbackMatchesValidDocument(t *testing.T) {
	valid, err := Extract([]byte(leafSitemap))
	if err != nil {
		t.Fatalf("Extract of valid document failed: %v", err)
	}

	// Same loc content, structurally broken.
	broken := `<urlset>
<url><loc>https://example.com/</loc>
<url><loc>https://example.com/about</loc>
<url><loc>https://example.com/blog</loc>
<unclosed`
	recovered, err := Extract([]byte(broken))
	if err != nil {
		t.Fatalf("Extract of broken document failed: %v", err)
	}

	validSet := make(map[string]bool)
	for _, u := range valid.URLs {
		validSet[u] = true
	}
	if len(recovered.URLs) != len(valid.URLs) {
		t.Fatalf("Expected %d URLs, got %d", len(valid.URLs), len(recovered.URLs))
	}
	for _, u := range recovered.URLs {
		if !validSet[u] {
			t.Errorf("Recovered URL %s not in valid set", u)
		}
	}
}

func TestExtractLatin1Encoding(t *testing.T) {
	// ISO-8859-1 byte 0xE9 is not valid UTF-8 and defeats strict parsing.
	content := []byte(`<?xml version="1.0" encoding="ISO-8859-1"?>
<urlset><url><loc>https://example.com/caf`)
	content = append(content, 0xE9)
	content = append(content, []byte(`</loc></url></urlset>`)...)

	doc, err := Extract(content)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(doc.URLs) != 1 {
		t.Fatalf("Expected 1 URL, got %d", len(doc.URLs))
	}
	if doc.URLs[0] != "https://example.com/café" {
		t.Errorf("Unexpected URL: %q", doc.URLs[0])
	}
}

func TestExtractExhaustedTiers(t *testing.T) {
	if _, err := Extract([]byte("no xml and no urls here")); err == nil {
		t.Error("Expected error when every tier fails")
	}
}

func TestExtractEmptyIndex(t *testing.T) {
	content := `<?xml version="1.0"?><sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></sitemapindex>`
	doc, err := Extract([]byte(content))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if doc.Kind != KindIndex {
		t.Errorf("Expected index document, got kind %d", doc.Kind)
	}
	if len(doc.URLs) != 0 {
		t.Errorf("Expected no child sitemaps, got %d", len(doc.URLs))
	}
}

func TestExtractEmptyLeaf(t *testing.T) {
	content := `<?xml version="1.0"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`
	doc, err := Extract([]byte(content))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(doc.URLs) != 0 {
		t.Errorf("Expected no URLs, got %d", len(doc.URLs))
	}
}

func TestExtractAmpersandEscaping(t *testing.T) {
	content := `<?xml version="1.0"?>
<urlset><url><loc>https://example.com/search?q=a&b=c</loc></url></urlset>`

	doc, err := Extract([]byte(content))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(doc.URLs) != 1 {
		t.Fatalf("Expected 1 URL, got %d", len(doc.URLs))
	}
	if doc.URLs[0] != "https://example.com/search?q=a&b=c" {
		t.Errorf("Unexpected URL: %q", doc.URLs[0])
	}
}
