// Package scrape turns a loaded page into one snapshot and routes
// tagged scrape requests to their handlers.
package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gigscout/pkg/extract"
	"gigscout/pkg/models"

	"github.com/PuerkitoBio/goquery"
)

// Page is a loaded page the orchestrator can snapshot. Implemented by the
// controlled browser tab and by the static fetcher.
type Page interface {
	URL() string
	HTML(ctx context.Context) (string, error)
}

type State int

const (
	StateIdle State = iota
	StateScraping
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScraping:
		return "scraping"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// settleDelay lets client-rendered content finish mounting before extraction.
const settleDelay = 500 * time.Millisecond

// Orchestrator runs every section extractor against the current page and
// assembles one snapshot. Extractors never fail; the error return is a
// last-resort net for anything that escapes assembly.
type Orchestrator struct {
	state  State
	settle time.Duration
	now    func() time.Time
}

func NewOrchestrator() *Orchestrator {
	return &Orchestrator{settle: settleDelay, now: time.Now}
}

// WithSettle overrides the settle delay. Tests pass zero.
func (o *Orchestrator) WithSettle(d time.Duration) *Orchestrator {
	o.settle = d
	return o
}

func (o *Orchestrator) State() State { return o.state }

func (o *Orchestrator) Scrape(ctx context.Context, page Page) (snap models.Snapshot, err error) {
	o.state = StateScraping
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("snapshot assembly: %v", r)
		}
		if err != nil {
			o.state = StateFailed
		} else {
			o.state = StateDone
		}
	}()

	select {
	case <-ctx.Done():
		return models.Snapshot{}, ctx.Err()
	case <-time.After(o.settle):
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("read page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("parse page: %w", err)
	}

	return extract.Snapshot(doc, page.URL(), o.now()), nil
}

// ScrapeResponse wraps Scrape in the request/response contract:
// {status: OK, details} on success, {status: ERR, error} otherwise.
func (o *Orchestrator) ScrapeResponse(ctx context.Context, page Page) Response {
	snap, err := o.Scrape(ctx, page)
	if err != nil {
		return Errf("%v", err)
	}
	resp := OK()
	resp.Details = &snap
	return resp
}
