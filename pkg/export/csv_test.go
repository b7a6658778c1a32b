package export

import (
	"strings"
	"testing"

	"gigscout/pkg/models"

	"github.com/stretchr/testify/require"
)

func TestCSVQuoting(t *testing.T) {
	var buf strings.Builder
	err := CSV(&buf, []models.GigSummary{
		{Title: `He said "hi"`, URL: "https://www.fiverr.com/gigs/1"},
		{Title: "comma, separated", URL: "https://www.fiverr.com/gigs/2"},
		{Title: "plain", URL: "https://www.fiverr.com/gigs/3"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, []string{
		"Title,URL",
		`"He said ""hi""",https://www.fiverr.com/gigs/1`,
		`"comma, separated",https://www.fiverr.com/gigs/2`,
		"plain,https://www.fiverr.com/gigs/3",
	}, lines)
}

func TestCSVGigs(t *testing.T) {
	var buf strings.Builder
	err := CSVGigs(&buf, []models.Gig{
		{Title: "logo gig", URL: "https://www.fiverr.com/gigs/1"},
	})
	require.NoError(t, err)
	require.Equal(t, "Title,URL\nlogo gig,https://www.fiverr.com/gigs/1\n", buf.String())
}

func TestCSVEmptyListing(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, CSV(&buf, nil))
	require.Equal(t, "Title,URL\n", buf.String())
}
