package pipeline

import (
	"context"
	"fmt"
	"time"

	"gigscout/pkg/logger"
	"gigscout/pkg/models"

	"github.com/google/uuid"
)

// GigScraper scrapes one gig. Satisfied by *Pipeline; fakes stand in for it
// in tests.
type GigScraper interface {
	ScrapeGig(ctx context.Context, sum models.GigSummary) (models.Gig, error)
}

// GigError is the per-gig failure record surfaced alongside the results.
type GigError struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Error string `json:"error"`
}

// Report is the outcome of one batch run. Gigs always has one entry per
// input summary; failed gigs appear with their Error field set and are
// additionally listed in Errors.
type Report struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Gigs       []models.Gig `json:"gigs"`
	Errors     []GigError   `json:"errors,omitempty"`
}

// Progress reports (current, total) after each gig.
type Progress func(current, total int)

// cooldown between gigs keeps the scrape from hammering the target site.
const defaultCooldown = 2 * time.Second

// Runner iterates the pipeline over a whole listing. Strictly sequential:
// every gig shares the one controlled tab.
type Runner struct {
	scraper  GigScraper
	cooldown time.Duration
	progress Progress
}

func NewRunner(scraper GigScraper, progress Progress) *Runner {
	return &Runner{scraper: scraper, cooldown: defaultCooldown, progress: progress}
}

// Run scrapes every gig in input order. A single gig's failure never aborts
// the batch; a best-effort record is collected for every input.
func (r *Runner) Run(ctx context.Context, sums []models.GigSummary) Report {
	report := Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	for i, sum := range sums {
		if ctx.Err() != nil {
			// Keep the one-output-per-input invariant for abandoned work.
			report.Gigs = append(report.Gigs, abandoned(sum, ctx.Err()))
			report.Errors = append(report.Errors, GigError{
				URL: sum.URL, Title: sum.Title, Error: ctx.Err().Error(),
			})
			if r.progress != nil {
				r.progress(i+1, len(sums))
			}
			continue
		}

		gig, err := r.scrapeOne(ctx, sum)
		if err != nil {
			logger.Dedup("runner: gig %q: %v", sum.Title, err)
			report.Errors = append(report.Errors, GigError{
				URL: sum.URL, Title: sum.Title, Error: gig.Error,
			})
		}
		report.Gigs = append(report.Gigs, gig)

		if r.progress != nil {
			r.progress(i+1, len(sums))
		}
		if i < len(sums)-1 && ctx.Err() == nil {
			select {
			case <-ctx.Done():
			case <-time.After(r.cooldown):
			}
		}
	}

	report.FinishedAt = time.Now()
	return report
}

// scrapeOne shields the batch from a panicking pipeline.
func (r *Runner) scrapeOne(ctx context.Context, sum models.GigSummary) (gig models.Gig, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("scrape panic: %v", rec)
			gig = models.NewGig(sum)
			gig.Error = err.Error()
		}
	}()
	gig, err = r.scraper.ScrapeGig(ctx, sum)
	if err != nil && gig.Error == "" {
		gig.Error = err.Error()
	}
	return gig, err
}

func abandoned(sum models.GigSummary, err error) models.Gig {
	gig := models.NewGig(sum)
	gig.Error = err.Error()
	return gig
}
