package scrape

import (
	"bytes"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// Extractor pulls a displayed price out of a search results page. Keeping
// this behind an interface isolates the markup-sensitive parsing from the
// network and storage concerns; when the site changes its markup only the
// extractor needs to be replaced.
type Extractor interface {
	// Extract returns the first price found in the page, or ok=false when
	// the page contains no usable price.
	Extract(body []byte) (price string, ok bool)
}

// priceRe matches a bare decimal number: digits with an optional single
// fractional part.
var priceRe = regexp.MustCompile(`\d+(\.\d+)?`)

// ensure priceExtractor implements Extractor
var _ Extractor = (*priceExtractor)(nil)

// priceExtractor locates the first element whose id starts with "dprice"
// (the site's displayed-price span) and takes its first nested span's text.
type priceExtractor struct {
	selector string
}

// NewPriceExtractor returns the production extractor for the part search
// results page.
func NewPriceExtractor() Extractor {
	return &priceExtractor{selector: `span[id^='dprice'] span`}
}

func (e *priceExtractor) Extract(body []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false
	}

	sel := doc.Find(e.selector).First()
	if sel.Length() == 0 {
		return "", false
	}

	m := priceRe.FindString(sel.Text())
	if m == "" {
		return "", false
	}
	return m, true
}

// ExtractNumeric re-applies the decimal-number match to an arbitrary cost
// string. The cleaning step uses it to normalize costs and drop sentinel
// values, which contain no digits.
func ExtractNumeric(s string) (string, bool) {
	m := priceRe.FindString(s)
	if m == "" {
		return "", false
	}
	return m, true
}
