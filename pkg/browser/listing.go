package browser

import (
	"context"
	"net/url"
	"strings"
	"time"

	"gigscout/pkg/extract"
	"gigscout/pkg/models"

	"github.com/PuerkitoBio/goquery"
)

// listingSettle gives the listing page's client-side table time to mount.
const listingSettle = time.Second

// ScanListing navigates the tab to the seller's gig listing and extracts one
// summary per gig. Rows without a usable link are skipped; duplicates by URL
// are dropped.
func (t *Tab) ScanListing(ctx context.Context, listingURL string) ([]models.GigSummary, error) {
	if err := t.Navigate(ctx, listingURL); err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(listingSettle):
	}

	html, err := t.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(listingURL)
	if err != nil {
		return nil, err
	}
	return ParseListing(doc, base), nil
}

// ParseListing pulls gig summaries out of a listing document. Exported so
// the scan is testable without a browser.
func ParseListing(doc *goquery.Document, base *url.URL) []models.GigSummary {
	seen := make(map[string]struct{})
	var out []models.GigSummary

	doc.Find(`[data-testid*="gig-row"], .gig-row, .gig-card, tr`).
		Each(func(_ int, row *goquery.Selection) {
			link := row.Find(`a[href*="/gigs/"], a[href*="gig"]`).First()
			href := resolve(base, link.AttrOr("href", ""))
			title := extract.Clean(link.Text())
			if href == "" || title == "" {
				return
			}
			if _, dup := seen[href]; dup {
				return
			}
			seen[href] = struct{}{}

			edit := resolve(base, row.Find(`a[href*="edit"]`).First().AttrOr("href", ""))
			out = append(out, models.GigSummary{
				Title:   title,
				URL:     href,
				EditURL: edit,
			})
		})
	return out
}

func resolve(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
