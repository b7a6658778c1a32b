package scrape

import (
	"context"
	"fmt"

	"gigscout/pkg/models"
)

// Kind tags a scrape request. The set mirrors the actions the controlled tab
// supports: snapshot the current page, check the marketplace session, scan
// the seller's gig listing.
type Kind string

const (
	KindScrapeGig   Kind = "SCRAPE_GIG"
	KindCheckLogin  Kind = "CHECK_LOGIN"
	KindScanListing Kind = "SCAN_LISTING"
)

type Status string

const (
	StatusOK  Status = "OK"
	StatusErr Status = "ERR"
)

type Request struct {
	Kind Kind `json:"type"`
}

// Response is the tagged result of a dispatched request: success carries the
// payload for the request's kind, failure carries only the reason.
type Response struct {
	Status   Status              `json:"status"`
	Details  *models.Snapshot    `json:"details,omitempty"`
	LoggedIn *bool               `json:"logged_in,omitempty"`
	Gigs     []models.GigSummary `json:"gigs,omitempty"`
	Error    string              `json:"error,omitempty"`
}

func OK() Response { return Response{Status: StatusOK} }

func Errf(format string, args ...any) Response {
	return Response{Status: StatusErr, Error: fmt.Sprintf(format, args...)}
}

type Handler func(ctx context.Context, req Request) Response

// Mux routes requests to handlers by kind.
type Mux struct {
	handlers map[Kind]Handler
}

func NewMux() *Mux {
	return &Mux{handlers: make(map[Kind]Handler)}
}

func (m *Mux) Handle(kind Kind, h Handler) {
	m.handlers[kind] = h
}

func (m *Mux) Dispatch(ctx context.Context, req Request) Response {
	h, ok := m.handlers[req.Kind]
	if !ok {
		return Errf("unknown request type %q", req.Kind)
	}
	return h(ctx, req)
}
