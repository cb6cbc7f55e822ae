package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Extract parses raw sitemap bytes into a Document through a tiered
// fallback chain: strict XML, trimmed-and-collapsed reparse, charset-safe
// reparse, then regex extraction. Each tier is a total function; the first
// one to succeed wins. Exhausting every tier returns an error.
func Extract(data []byte) (*Document, error) {
	if doc, err := parseStrict(data); err == nil {
		return doc, nil
	}
	if doc, err := parseTrimmed(data); err == nil {
		return doc, nil
	}
	if doc, err := parseCharsetSafe(data); err == nil {
		return doc, nil
	}
	if doc, err := parseRegex(data); err == nil {
		return doc, nil
	}
	return nil, fmt.Errorf("all parsing tiers exhausted")
}

// decode unmarshals with a charset reader so documents declaring a
// non-UTF-8 encoding still parse.
func decode(data []byte, v interface{}) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charsetReader
	return decoder.Decode(v)
}

// charsetReader maps the charsets seen in real sitemaps; anything else is
// passed through untouched.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "iso-8859-1", "latin1":
		return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
	case "iso-8859-15", "latin9":
		return transform.NewReader(input, charmap.ISO8859_15.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
	case "windows-1251", "cp1251":
		return transform.NewReader(input, charmap.Windows1251.NewDecoder()), nil
	default:
		return input, nil
	}
}

// parseStrict decodes well-formed sitemap XML. The index decode succeeds
// only when the root element is sitemapindex, so a clean decode is
// accepted even with zero entries.
func parseStrict(data []byte) (*Document, error) {
	var index xmlSitemapIndex
	if err := decode(data, &index); err == nil {
		doc := &Document{Kind: KindIndex}
		for _, ref := range index.Sitemaps {
			loc := strings.TrimSpace(ref.Loc)
			if loc != "" {
				doc.URLs = append(doc.URLs, loc)
			}
		}
		return doc, nil
	}

	var urlset xmlURLSet
	if err := decode(data, &urlset); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	doc := &Document{Kind: KindLeaf}
	for _, entry := range urlset.URLs {
		loc := strings.TrimSpace(entry.Loc)
		if loc == "" {
			continue
		}
		doc.URLs = append(doc.URLs, loc)
		for _, link := range entry.Links {
			href := strings.TrimSpace(link.Href)
			if href == "" || href == loc {
				continue
			}
			if link.Rel != "" && link.Rel != "alternate" {
				continue
			}
			doc.URLs = append(doc.URLs, href)
		}
	}
	return doc, nil
}

var interTagWhitespace = regexp.MustCompile(`>\s+<`)

// parseTrimmed recovers documents wrapped in stray bytes: it cuts the
// content down to the span from the first <?xml declaration through the
// matching root close tag, collapses inter-tag whitespace, and reparses.
func parseTrimmed(data []byte) (*Document, error) {
	content := string(data)

	start := strings.Index(content, "<?xml")
	if start < 0 {
		// No declaration; fall back to the first root tag.
		for _, root := range []string{"<sitemapindex", "<urlset"} {
			if i := strings.Index(content, root); i >= 0 {
				start = i
				break
			}
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("no XML document found in content")
	}
	content = content[start:]

	end := -1
	for _, closer := range []string{"</sitemapindex>", "</urlset>"} {
		if i := strings.LastIndex(content, closer); i >= 0 {
			end = i + len(closer)
			break
		}
	}
	if end < 0 {
		return nil, fmt.Errorf("no closing root tag found")
	}
	content = content[:end]

	content = interTagWhitespace.ReplaceAllString(content, "><")

	return parseStrict([]byte(content))
}

// parseCharsetSafe cleans illegal XML characters, converts the detected
// encoding to UTF-8, escapes stray ampersands, and reparses. The encoding
// declaration is rewritten so the charset reader does not decode twice.
func parseCharsetSafe(data []byte) (*Document, error) {
	if enc := detectEncoding(data); enc != nil {
		converted, err := transformBytes(data, enc)
		if err == nil {
			data = encodingDecl.ReplaceAll(converted, []byte(`encoding="UTF-8"`))
		}
	}

	cleaned := cleanXMLContent(data)
	if !utf8.Valid(cleaned) {
		cleaned = []byte(strings.ToValidUTF8(string(cleaned), ""))
	}

	return parseStrict(cleaned)
}

var (
	locPattern  = regexp.MustCompile(`<loc[^>]*>([^<]+)</loc>`)
	hrefPattern = regexp.MustCompile(`href=["']([^"']+)["']`)
)

// parseRegex is the last-resort tier: it pulls URLs straight out of the
// raw text. The document counts as an index when sitemapindex markup is
// still recognizable, so recursion keeps working on mangled indexes.
func parseRegex(data []byte) (*Document, error) {
	content := strings.ToValidUTF8(string(data), "")

	kind := KindLeaf
	if strings.Contains(content, "<sitemapindex") {
		kind = KindIndex
	}

	doc := &Document{Kind: kind}
	seen := make(map[string]bool)

	for _, pattern := range []*regexp.Regexp{locPattern, hrefPattern} {
		for _, match := range pattern.FindAllStringSubmatch(content, -1) {
			candidate := strings.TrimSpace(xmlUnescape(match[1]))
			if candidate == "" || seen[candidate] {
				continue
			}
			parsed, err := url.Parse(candidate)
			if err != nil || parsed.Scheme == "" || parsed.Host == "" {
				continue
			}
			seen[candidate] = true
			doc.URLs = append(doc.URLs, candidate)
		}
	}

	if len(doc.URLs) == 0 {
		return nil, fmt.Errorf("no valid URLs found with regex fallback")
	}
	return doc, nil
}

func xmlUnescape(s string) string {
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	return replacer.Replace(s)
}

var encodingDecl = regexp.MustCompile(`encoding=["']([^"']+)["']`)

// detectEncoding inspects the BOM and the XML declaration. UTF-8 content
// needs no conversion, so nil means "leave the bytes alone".
func detectEncoding(data []byte) encoding.Encoding {
	if len(data) >= 3 && bytes.Equal(data[:3], []byte{0xEF, 0xBB, 0xBF}) {
		return nil
	}

	head := string(data[:min(512, len(data))])
	if matches := encodingDecl.FindStringSubmatch(head); len(matches) > 1 {
		switch strings.ToLower(matches[1]) {
		case "iso-8859-1", "latin1":
			return charmap.ISO8859_1
		case "iso-8859-15", "latin9":
			return charmap.ISO8859_15
		case "windows-1252", "cp1252":
			return charmap.Windows1252
		case "windows-1251", "cp1251":
			return charmap.Windows1251
		case "utf-8", "utf-16":
			return nil
		}
	}

	if utf8.Valid(data) {
		return nil
	}
	return charmap.ISO8859_1
}

func transformBytes(data []byte, enc encoding.Encoding) ([]byte, error) {
	result, _, err := transform.Bytes(enc.NewDecoder(), data)
	return result, err
}

// cleanXMLContent strips control characters XML forbids and escapes bare
// ampersands, leaving declared entities intact.
func cleanXMLContent(data []byte) []byte {
	content := strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		if r < 0x20 || (r >= 0xFFFE && r <= 0xFFFF) || (r >= 0xD800 && r <= 0xDFFF) {
			return -1
		}
		return r
	}, string(data))

	content = escapeBareAmpersands(content)
	return []byte(content)
}

func escapeBareAmpersands(content string) string {
	// Go's regexp has no lookahead; swap known entities out, escape the
	// rest, swap back.
	replacements := []string{"&amp;", "&lt;", "&gt;", "&quot;", "&apos;", "&#"}
	for i, entity := range replacements {
		content = strings.ReplaceAll(content, entity, fmt.Sprintf("\x00%d\x00", i))
	}
	content = strings.ReplaceAll(content, "&", "&amp;")
	for i, entity := range replacements {
		content = strings.ReplaceAll(content, fmt.Sprintf("\x00%d\x00", i), entity)
	}
	return content
}
