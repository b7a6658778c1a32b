package pipeline

import (
	"net/url"
	"time"
)

// Step is one page of a gig's multi-page edit wizard. Each step exposes a
// different subset of fields under the same path, selected by a query
// parameter.
type Step struct {
	Name   string
	Param  string
	Settle time.Duration
}

// stepParam is the query parameter identifying the wizard tab.
const stepParam = "step"

// DefaultSteps is the fixed visiting order. The pricing tab mounts its
// comparison table asynchronously, hence the longer settle.
var DefaultSteps = []Step{
	{Name: "general", Param: "general", Settle: time.Second},
	{Name: "pricing", Param: "pricing", Settle: 3 * time.Second},
	{Name: "description", Param: "description_faq", Settle: time.Second},
	{Name: "requirements", Param: "requirements", Settle: time.Second},
	{Name: "gallery", Param: "gallery", Settle: time.Second},
}

// StepURL derives the wizard-step URL from the gig's base edit URL.
func StepURL(editURL string, step Step) (string, error) {
	u, err := url.Parse(editURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(stepParam, step.Param)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
