package sitemap

import "encoding/xml"

// Kind distinguishes a leaf URL set from a sitemap index.
type Kind int

const (
	// KindLeaf is a urlset document listing page URLs.
	KindLeaf Kind = iota
	// KindIndex is a sitemapindex document listing nested sitemaps.
	KindIndex
)

// Document is the parsed form of one sitemap. For a leaf, URLs holds page
// URLs (loc values plus alternate-language hrefs) in encounter order; for
// an index, URLs holds the nested sitemap locations.
type Document struct {
	Kind Kind
	URLs []string
}

type xmlLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

type xmlURL struct {
	Loc string `xml:"loc"`
	// Links picks up xhtml:link alternate-language entries; encoding/xml
	// matches on the local element name regardless of namespace prefix.
	Links []xmlLink `xml:"link"`
}

type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []xmlURL `xml:"url"`
}

type xmlSitemapRef struct {
	Loc string `xml:"loc"`
}

type xmlSitemapIndex struct {
	XMLName  xml.Name        `xml:"sitemapindex"`
	Sitemaps []xmlSitemapRef `xml:"sitemap"`
}
