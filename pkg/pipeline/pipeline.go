// Package pipeline walks each gig's edit wizard step by step, merges the
// per-step snapshots into one record, and runs that over a whole listing.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"gigscout/pkg/logger"
	"gigscout/pkg/models"
	"gigscout/pkg/scrape"
)

// Tab is the controlled browser tab the pipeline drives. Navigation state is
// shared and mutable, which is why gigs and steps run strictly in sequence.
type Tab interface {
	Navigate(ctx context.Context, url string) error
	scrape.Page
}

// Fetch retrieves a public page without the browser session. Optional; used
// for gigs that have a view URL but no edit URL.
type Fetch func(url string) (scrape.Page, error)

type Pipeline struct {
	tab   Tab
	orch  *scrape.Orchestrator
	fetch Fetch
	steps []Step
	now   func() time.Time
}

func New(tab Tab, fetch Fetch) *Pipeline {
	return &Pipeline{
		tab:   tab,
		orch:  scrape.NewOrchestrator(),
		fetch: fetch,
		steps: DefaultSteps,
		now:   time.Now,
	}
}

// ScrapeGig visits every wizard step of one gig and merges the snapshots.
// A failing step is logged and skipped: a partially merged record beats
// aborting the gig. The returned error marks gig-level failure (no URL, or
// nothing scraped at all); the gig is still returned with its Error field
// set so batches keep one output per input.
func (p *Pipeline) ScrapeGig(ctx context.Context, sum models.GigSummary) (models.Gig, error) {
	gig := models.NewGig(sum)

	if sum.EditURL == "" && sum.URL == "" {
		gig.Error = models.ErrNoURL.Error()
		return gig, models.ErrNoURL
	}

	if sum.EditURL == "" {
		err := p.scrapePublic(ctx, &gig, sum.URL)
		if err != nil {
			gig.Error = err.Error()
			return gig, err
		}
		gig.ScrapedAt = p.now()
		return gig, nil
	}

	scraped := 0
	var lastErr error
	for _, step := range p.steps {
		if err := p.runStep(ctx, &gig, sum.EditURL, step); err != nil {
			logger.Dedup("pipeline: gig %s step %s: %v", sum.URL, step.Name, err)
			lastErr = err
			continue
		}
		scraped++
	}
	gig.ScrapedAt = p.now()

	if scraped == 0 {
		gig.Error = fmt.Sprintf("all steps failed: %v", lastErr)
		return gig, fmt.Errorf("gig %s: all steps failed: %w", sum.URL, lastErr)
	}
	return gig, nil
}

func (p *Pipeline) runStep(ctx context.Context, gig *models.Gig, editURL string, step Step) error {
	stepURL, err := StepURL(editURL, step)
	if err != nil {
		return fmt.Errorf("derive step url: %w", err)
	}
	if err := p.tab.Navigate(ctx, stepURL); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(step.Settle):
	}

	snap, err := p.orch.Scrape(ctx, p.tab)
	if err != nil {
		return err
	}
	return Merge(gig, snap)
}

// scrapePublic runs the extractors once against the public view page. The
// extractors carry view-page fallback selectors, so one pass is all there is.
func (p *Pipeline) scrapePublic(ctx context.Context, gig *models.Gig, viewURL string) error {
	if p.fetch == nil {
		return fmt.Errorf("gig %s: no edit url and no public fetcher", viewURL)
	}
	page, err := p.fetch(viewURL)
	if err != nil {
		return err
	}
	snap, err := p.orch.Scrape(ctx, page)
	if err != nil {
		return err
	}
	return Merge(gig, snap)
}
