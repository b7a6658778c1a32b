package pipeline

import (
	"testing"

	"gigscout/pkg/models"

	"github.com/stretchr/testify/require"
)

func snap(sections models.Sections) models.Snapshot {
	return models.Snapshot{URL: "https://www.fiverr.com/gigs/1", Sections: sections}
}

func TestMergeBlankNeverOverwrites(t *testing.T) {
	gig := models.NewGig(models.GigSummary{URL: "https://www.fiverr.com/gigs/1"})

	require.NoError(t, Merge(&gig, snap(models.Sections{
		Title:        "I will design your logo",
		DeliveryTime: "3 days",
	})))
	require.NoError(t, Merge(&gig, snap(models.Sections{
		Title:        "",
		DeliveryTime: "   ",
	})))

	require.Equal(t, "I will design your logo", gig.Sections.Title)
	require.Equal(t, "3 days", gig.DeliveryTime)
}

func TestMergeLaterNonBlankWins(t *testing.T) {
	gig := models.NewGig(models.GigSummary{URL: "https://www.fiverr.com/gigs/1"})

	require.NoError(t, Merge(&gig, snap(models.Sections{
		Seller: models.Seller{Name: "studiok"},
	})))
	require.NoError(t, Merge(&gig, snap(models.Sections{
		Seller: models.Seller{Name: "studiok_design", Rating: "4.9"},
	})))

	require.Equal(t, "studiok_design", gig.Seller.Name)
	require.Equal(t, "4.9", gig.Seller.Rating)
}

func TestMergeListsUnion(t *testing.T) {
	gig := models.NewGig(models.GigSummary{URL: "https://www.fiverr.com/gigs/1"})

	require.NoError(t, Merge(&gig, snap(models.Sections{
		Overview: models.Overview{Tags: []string{"logo", "branding"}},
		Gallery:  models.Gallery{Images: []string{"https://cdn.example.com/a.png"}},
	})))
	require.NoError(t, Merge(&gig, snap(models.Sections{
		Overview: models.Overview{Tags: []string{"branding", "design"}},
		Gallery:  models.Gallery{Images: []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"}},
	})))

	require.Equal(t, []string{"logo", "branding", "design"}, gig.Overview.Tags)
	require.Equal(t, []string{
		"https://cdn.example.com/a.png",
		"https://cdn.example.com/b.png",
	}, gig.Gallery.Images)
}

func TestMergePackagesUnionByValue(t *testing.T) {
	gig := models.NewGig(models.GigSummary{URL: "https://www.fiverr.com/gigs/1"})
	basic := models.Package{Name: "Basic", Price: "$10", Features: []models.Feature{}}

	require.NoError(t, Merge(&gig, snap(models.Sections{
		Pricing: models.Pricing{Packages: []models.Package{basic}},
	})))
	// Same package seen again on a later step collapses to one entry.
	require.NoError(t, Merge(&gig, snap(models.Sections{
		Pricing: models.Pricing{Packages: []models.Package{basic}},
	})))

	require.Equal(t, []models.Package{basic}, gig.Pricing.Packages)
}
