package extract

import (
	"strings"

	"gigscout/pkg/models"

	"github.com/PuerkitoBio/goquery"
)

// The long-form description lives in a rich-text editor whose markup also
// hosts empty editors and placeholder prompts. A candidate only counts when
// it is long enough, contains none of the known placeholder phrases, and has
// at least one interior space (single-token junk guard).
const minDescriptionLen = 100

var placeholderPhrases = []string{
	"Please choose",
	"Briefly Describe",
	"shorter than",
}

func isRealDescription(text string) bool {
	if len(text) <= minDescriptionLen {
		return false
	}
	for _, p := range placeholderPhrases {
		if strings.Contains(text, p) {
			return false
		}
	}
	return strings.Contains(text, " ")
}

func firstQualifying(sel *goquery.Selection, qualify func(string) bool) string {
	found := ""
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := Clean(s.Text()); qualify(text) {
			found = text
			return false
		}
		return true
	})
	return found
}

// DescriptionChain is the ordered fallback list for the rich description:
// rich-text editors, then contenteditable containers, then a hidden input.
var DescriptionChain = Chain{
	func(doc *goquery.Document) string {
		return firstQualifying(doc.Find("div.ql-editor"), isRealDescription)
	},
	func(doc *goquery.Document) string {
		return firstQualifying(doc.Find(`div[contenteditable="true"]`), isRealDescription)
	},
	func(doc *goquery.Document) string {
		v := Clean(doc.Find(`input[type="hidden"][name="description"]`).AttrOr("value", ""))
		if len(v) > minDescriptionLen {
			return v
		}
		return ""
	},
}

// DescriptionFAQ extracts the long description plus the FAQ entries.
func DescriptionFAQ(doc *goquery.Document) models.Description {
	out := models.Description{Content: DescriptionChain.First(doc)}

	doc.Find(`[data-testid*="faq"], .faq-item, [class*="faq"]`).
		Each(func(_ int, row *goquery.Selection) {
			q := Clean(row.Find(`input[name*="question"]`).AttrOr("value", ""))
			if q == "" {
				q = Clean(row.Find("h4, .question").First().Text())
			}
			a := Clean(row.Find(`textarea[name*="answer"]`).Text())
			if a == "" {
				a = Clean(row.Find("p, .answer").First().Text())
			}
			if q != "" || a != "" {
				out.FAQ = append(out.FAQ, models.FAQ{Question: q, Answer: a})
			}
		})

	return out
}
