package models

import (
	"errors"
	"time"
)

// ErrNoURL marks a gig that cannot be scraped because the listing scan
// produced no usable URL for it.
var ErrNoURL = errors.New("no_url")

// GigSummary is one entry of the seller's gig listing. Identity key is URL.
type GigSummary struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	EditURL string `json:"edit_url,omitempty"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Feature is a pricing-table row that does not map to a known package field.
type Feature struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Package struct {
	Name         string    `json:"name"`
	Price        string    `json:"price,omitempty"`
	Description  string    `json:"description,omitempty"`
	DeliveryTime string    `json:"delivery_time,omitempty"`
	Revisions    string    `json:"revisions,omitempty"`
	Features     []Feature `json:"features"`
}

type Requirement struct {
	Label    string `json:"label"`
	Type     string `json:"type,omitempty"`
	Required bool   `json:"required"`
}

type Overview struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Images      []string `json:"images,omitempty"`
}

type Description struct {
	Content string `json:"content,omitempty"`
	FAQ     []FAQ  `json:"faq,omitempty"`
}

type Pricing struct {
	Packages []Package `json:"packages,omitempty"`
}

type Requirements struct {
	List          []Requirement `json:"list,omitempty"`
	WhatToProvide []string      `json:"what_to_provide,omitempty"`
	WhatYouGet    []string      `json:"what_you_get,omitempty"`
}

type Gallery struct {
	Images []string `json:"images,omitempty"`
	Videos []string `json:"videos,omitempty"`
}

type Seller struct {
	Name   string `json:"name,omitempty"`
	Rating string `json:"rating,omitempty"`
	Sold   string `json:"sold,omitempty"`
	Level  string `json:"level,omitempty"`
}

// Sections holds everything the extractors can pull from a page. It is the
// unit of merging: scalars prefer the first non-blank value seen, lists
// accumulate across wizard steps.
type Sections struct {
	Title        string       `json:"title,omitempty"`
	Overview     Overview     `json:"overview"`
	Description  Description  `json:"description"`
	Pricing      Pricing      `json:"pricing"`
	Requirements Requirements `json:"requirements"`
	Gallery      Gallery      `json:"gallery"`
	Seller       Seller       `json:"seller"`
	DeliveryTime string       `json:"delivery_time,omitempty"`
}

// Snapshot is the extracted data of one page load. It is consumed by the
// merge immediately after it is produced.
type Snapshot struct {
	URL       string    `json:"url"`
	ScrapedAt time.Time `json:"scraped_at"`
	Sections
}

// Gig is the accumulation of all snapshots for one gig. Error is set instead
// of scraped content when the gig could not be scraped at all.
type Gig struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	EditURL string `json:"edit_url,omitempty"`
	Sections
	ScrapedAt time.Time `json:"scraped_at,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// NewGig seeds an empty merged record from a listing entry.
func NewGig(s GigSummary) Gig {
	return Gig{Title: s.Title, URL: s.URL, EditURL: s.EditURL}
}
