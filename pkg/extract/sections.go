package extract

import (
	"regexp"
	"time"

	"gigscout/pkg/models"

	"github.com/PuerkitoBio/goquery"
)

// Title is the ordered fallback list for the gig title.
var Title = Chain{
	FromInput(`input[name="title"]`),
	FromText(`h1, [data-testid="gig-title"]`),
	FromText("title"),
}

var overviewDescription = Chain{
	func(doc *goquery.Document) string {
		return Clean(doc.Find(`textarea[name="description"]`).Text())
	},
	FromText(`.description, [data-testid="description"]`),
}

var sellerName = Chain{
	FromInput(`input[name="seller_name"]`),
	FromText(`[data-testid="seller-name"], .seller-name`),
}

const galleryImageSel = `.gallery img, .gig-gallery img, [data-testid="gallery"] img, img[alt*="gig"]`

func Overview(doc *goquery.Document) models.Overview {
	return models.Overview{
		Title:       Title.First(doc),
		Description: overviewDescription.First(doc),
		Tags:        Tags(doc),
		Images:      Images(doc, galleryImageSel),
	}
}

var requiredPattern = regexp.MustCompile(`(?i)required|mandatory`)

func RequirementsSection(doc *goquery.Document) models.Requirements {
	var out models.Requirements

	doc.Find(`[data-testid*="requirement"], .requirement-row`).
		Each(func(_ int, row *goquery.Selection) {
			label := Clean(row.Find(`input[name*="label"]`).AttrOr("value", ""))
			if label == "" {
				label = Clean(row.Find("label").First().Text())
			}
			if label == "" {
				return
			}
			kind := row.Find("select option[selected]").AttrOr("value", "")
			out.List = append(out.List, models.Requirement{
				Label:    label,
				Type:     kind,
				Required: requiredPattern.MatchString(row.Text()),
			})
		})

	provide := doc.Find(`[data-testid*="provide"], [class*="provide"]`).First()
	out.WhatToProvide = Texts(provide, `li, .item, [class*="item"]`)

	benefits := doc.Find(`[data-testid*="get"], [class*="benefits"]`).First()
	out.WhatYouGet = Texts(benefits, `li, .item, [class*="item"]`)

	return out
}

func GallerySection(doc *goquery.Document) models.Gallery {
	var videos []string
	doc.Find(`video source, [data-testid*="video"] source`).
		Each(func(_ int, s *goquery.Selection) {
			if src := s.AttrOr("src", ""); src != "" {
				videos = append(videos, src)
			}
		})
	return models.Gallery{
		Images: Images(doc, galleryImageSel),
		Videos: videos,
	}
}

func SellerSection(doc *goquery.Document) models.Seller {
	return models.Seller{
		Name:   sellerName.First(doc),
		Rating: FromText(`[data-testid="rating"], .rating, .seller-rating`)(doc),
		Sold:   FromText(`.orders-sold, .deliveries, [class*="sold"]`)(doc),
		Level:  FromText(`.level, [class*="level"]`)(doc),
	}
}

// Snapshot runs every section extractor against a loaded page and assembles
// one snapshot stamped with the page URL and wall-clock time.
func Snapshot(doc *goquery.Document, pageURL string, now time.Time) models.Snapshot {
	overview := Overview(doc)
	return models.Snapshot{
		URL:       pageURL,
		ScrapedAt: now,
		Sections: models.Sections{
			Title:        overview.Title,
			Overview:     overview,
			Description:  DescriptionFAQ(doc),
			Pricing:      models.Pricing{Packages: Packages(doc)},
			Requirements: RequirementsSection(doc),
			Gallery:      GallerySection(doc),
			Seller:       SellerSection(doc),
			DeliveryTime: FromText(`.delivery-time, [data-testid="delivery-time"]`)(doc),
		},
	}
}
