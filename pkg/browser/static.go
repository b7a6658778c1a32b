package browser

import (
	"context"
	"fmt"

	"github.com/gocolly/colly/v2"
)

// StaticPage is a fetched public page. It satisfies the same contract the
// controlled tab does, so the section extractors run on it unchanged.
type StaticPage struct {
	url  string
	html string
}

func (p *StaticPage) URL() string { return p.url }

func (p *StaticPage) HTML(context.Context) (string, error) { return p.html, nil }

// StaticFetcher retrieves public gig view pages over plain HTTP. Used when a
// gig has a public URL but no edit URL, where no login is required.
type StaticFetcher struct {
	Collector *colly.Collector
}

func NewStaticFetcher(allowedDomains ...string) *StaticFetcher {
	c := colly.NewCollector(
		colly.AllowedDomains(allowedDomains...),
		colly.UserAgent(userAgent),
	)
	return &StaticFetcher{Collector: c}
}

func (f *StaticFetcher) Fetch(pageURL string) (*StaticPage, error) {
	c := f.Collector.Clone()

	page := &StaticPage{url: pageURL}
	c.OnResponse(func(r *colly.Response) {
		page.html = string(r.Body)
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	if page.html == "" {
		return nil, fmt.Errorf("fetch %s: empty response", pageURL)
	}
	return page, nil
}
