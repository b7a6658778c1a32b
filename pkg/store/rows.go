package store

import (
	"encoding/json"
	"regexp"
	"strconv"
	"time"

	"gigscout/pkg/models"
)

// Flattened relational projections of a merged gig. Produced only at the
// storage boundary, recreated on every sync.

type GigRow struct {
	ID      int64  `json:"id,omitempty"`
	UserID  string `json:"user_id"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	EditURL string `json:"edit_url,omitempty"`
	// Pointer so a never-scraped gig omits the field instead of patching
	// the remote row with the zero time.
	ScrapedAt           *time.Time `json:"scraped_at,omitempty"`
	OverviewTitle       string     `json:"overview_title"`
	OverviewDescription string     `json:"overview_description"`
	SellerName          string     `json:"seller_name"`
	SellerRating        string     `json:"seller_rating"`
	SellerLevel         string     `json:"seller_level"`
	DeliveryTime        string     `json:"delivery_time"`
	Price               *int64     `json:"price"`
	Tags                string     `json:"tags"`
	Images              string     `json:"images"`
	Error               string     `json:"error,omitempty"`
}

type PackageRow struct {
	GigID        int64  `json:"gig_id"`
	Position     int    `json:"position"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	Description  string `json:"description"`
	DeliveryTime string `json:"delivery_time"`
	Revisions    string `json:"revisions"`
	Features     string `json:"features"`
}

type FeatureRow struct {
	GigID       int64  `json:"gig_id"`
	PackageName string `json:"package_name"`
	Name        string `json:"name"`
	Value       string `json:"value"`
}

type DetailRow struct {
	GigID         int64  `json:"gig_id"`
	Description   string `json:"description_content"`
	FAQ           string `json:"faq"`
	Requirements  string `json:"requirements"`
	WhatToProvide string `json:"what_to_provide"`
	WhatYouGet    string `json:"what_you_get"`
	GalleryImages string `json:"gallery_images"`
	GalleryVideos string `json:"gallery_videos"`
}

// encode serializes a nested collection as an opaque blob; nil encodes as an
// empty list, never null.
func encode(v any) string {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return "[]"
	}
	return string(data)
}

var digitRun = regexp.MustCompile(`\d+`)

// ParsePrice extracts the first contiguous digit run of a price string:
// "$ 80" -> 80. No digits -> nil.
func ParsePrice(s string) *int64 {
	m := digitRun.FindString(s)
	if m == "" {
		return nil
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// firstPrice is the price string of the first package that has one.
func firstPrice(g models.Gig) string {
	for _, p := range g.Pricing.Packages {
		if p.Price != "" {
			return p.Price
		}
	}
	return ""
}

func flattenGig(userID string, g models.Gig) GigRow {
	tags := g.Overview.Tags
	images := g.Overview.Images
	if len(images) == 0 {
		images = g.Gallery.Images
	}
	var scrapedAt *time.Time
	if !g.ScrapedAt.IsZero() {
		scrapedAt = &g.ScrapedAt
	}
	return GigRow{
		UserID:              userID,
		URL:                 g.URL,
		Title:               g.Title,
		EditURL:             g.EditURL,
		ScrapedAt:           scrapedAt,
		OverviewTitle:       g.Overview.Title,
		OverviewDescription: g.Overview.Description,
		SellerName:          g.Seller.Name,
		SellerRating:        g.Seller.Rating,
		SellerLevel:         g.Seller.Level,
		DeliveryTime:        g.DeliveryTime,
		Price:               ParsePrice(firstPrice(g)),
		Tags:                encode(tags),
		Images:              encode(images),
		Error:               g.Error,
	}
}

func packageRows(gigID int64, g models.Gig) []PackageRow {
	var rows []PackageRow
	for i, p := range g.Pricing.Packages {
		rows = append(rows, PackageRow{
			GigID:        gigID,
			Position:     i,
			Name:         p.Name,
			Price:        p.Price,
			Description:  p.Description,
			DeliveryTime: p.DeliveryTime,
			Revisions:    p.Revisions,
			Features:     encode(p.Features),
		})
	}
	return rows
}

func featureRows(gigID int64, g models.Gig) []FeatureRow {
	var rows []FeatureRow
	for _, p := range g.Pricing.Packages {
		for _, f := range p.Features {
			rows = append(rows, FeatureRow{
				GigID:       gigID,
				PackageName: p.Name,
				Name:        f.Name,
				Value:       f.Value,
			})
		}
	}
	return rows
}

func detailRow(gigID int64, g models.Gig) DetailRow {
	return DetailRow{
		GigID:         gigID,
		Description:   g.Description.Content,
		FAQ:           encode(g.Description.FAQ),
		Requirements:  encode(g.Requirements.List),
		WhatToProvide: encode(g.Requirements.WhatToProvide),
		WhatYouGet:    encode(g.Requirements.WhatYouGet),
		GalleryImages: encode(g.Gallery.Images),
		GalleryVideos: encode(g.Gallery.Videos),
	}
}
