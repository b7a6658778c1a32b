// Package extract pulls gig fields out of marketplace pages. The host markup
// is a foreign, unversioned schema, so every field is resolved through an
// ordered list of heuristics and a miss is never an error: the field just
// comes back empty.
package extract

import (
	"regexp"
	"strings"

	"gigscout/pkg/logger"

	"github.com/PuerkitoBio/goquery"
)

var innerWhitespace = regexp.MustCompile(`\s+`)

// Clean collapses whitespace runs to single spaces and trims.
func Clean(s string) string {
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(s, " "))
}

// Strategy produces one candidate value for a field. Empty means no match.
type Strategy func(doc *goquery.Document) string

// Chain is an ordered list of strategies by descending specificity.
// The first non-empty value wins.
type Chain []Strategy

func (c Chain) First(doc *goquery.Document) string {
	for _, s := range c {
		if v := run(s, doc); v != "" {
			return v
		}
	}
	return ""
}

// run shields callers from a panicking strategy. Heuristics must never take
// down the whole snapshot.
func run(s Strategy, doc *goquery.Document) (out string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Dedup("extract: strategy panic: %v", r)
			out = ""
		}
	}()
	return s(doc)
}

// FromText resolves to the cleaned text of the first element matching sel.
func FromText(sel string) Strategy {
	return func(doc *goquery.Document) string {
		return Clean(doc.Find(sel).First().Text())
	}
}

// FromInput resolves to the cleaned value attribute of the first match.
func FromInput(sel string) Strategy {
	return func(doc *goquery.Document) string {
		return Clean(doc.Find(sel).First().AttrOr("value", ""))
	}
}

// Texts returns the cleaned, non-empty texts of every element under root
// matching sel.
func Texts(root *goquery.Selection, sel string) []string {
	var out []string
	root.Find(sel).Each(func(_ int, s *goquery.Selection) {
		if t := Clean(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// Images collects src attributes, dropping embedded data URIs and junk
// shorter than ten characters. Duplicates are kept in page order; only tag
// lists are deduplicated.
func Images(doc *goquery.Document, sel string) []string {
	var out []string
	doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if src == "" || strings.Contains(src, "data:") || len(src) <= 10 {
			return
		}
		out = append(out, src)
	})
	return out
}

// Tags reads tag/skill values from input-like elements first and falls back
// to displayed tag elements. The result is a set: duplicates are removed.
func Tags(doc *goquery.Document) []string {
	var tags []string
	doc.Find(`input[name*="tag"], input[name*="skill"], [data-testid*="tag"] input`).
		Each(func(_ int, s *goquery.Selection) {
			if v := Clean(s.AttrOr("value", "")); v != "" {
				tags = append(tags, v)
			}
		})

	if len(tags) == 0 {
		doc.Find(`.tag, .skill, [class*="tag"], [class*="skill"]`).
			Each(func(_ int, s *goquery.Selection) {
				if v := Clean(s.Text()); v != "" {
					tags = append(tags, v)
				}
			})
	}

	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
