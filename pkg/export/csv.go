// Package export writes listing exports.
package export

import (
	"encoding/csv"
	"io"

	"gigscout/pkg/models"
)

// CSV writes (title, url) pairs with RFC4180 quoting.
func CSV(w io.Writer, gigs []models.GigSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Title", "URL"}); err != nil {
		return err
	}
	for _, g := range gigs {
		if err := cw.Write([]string{g.Title, g.URL}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVGigs exports merged records as (title, url) pairs.
func CSVGigs(w io.Writer, gigs []models.Gig) error {
	sums := make([]models.GigSummary, 0, len(gigs))
	for _, g := range gigs {
		sums = append(sums, models.GigSummary{Title: g.Title, URL: g.URL})
	}
	return CSV(w, sums)
}
