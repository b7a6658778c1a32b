package scrape

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePage struct {
	url  string
	html string
	err  error
}

func (p fakePage) URL() string { return p.url }

func (p fakePage) HTML(context.Context) (string, error) { return p.html, p.err }

func TestOrchestratorScrape(t *testing.T) {
	page := fakePage{
		url: "https://www.fiverr.com/gigs/1/edit?step=general",
		html: `<html><body>
			<input name="title" value="I will design your logo">
			<input name="tags[]" value="logo">
		</body></html>`,
	}

	o := NewOrchestrator().WithSettle(0)
	require.Equal(t, StateIdle, o.State())

	snap, err := o.Scrape(context.Background(), page)
	require.NoError(t, err)
	require.Equal(t, StateDone, o.State())
	require.Equal(t, page.url, snap.URL)
	require.Equal(t, "I will design your logo", snap.Title)
	require.Equal(t, []string{"logo"}, snap.Overview.Tags)
	require.False(t, snap.ScrapedAt.IsZero())
}

func TestOrchestratorScrapeFailure(t *testing.T) {
	page := fakePage{url: "https://www.fiverr.com/gigs/1", err: errors.New("tab crashed")}

	o := NewOrchestrator().WithSettle(0)
	_, err := o.Scrape(context.Background(), page)
	require.Error(t, err)
	require.Equal(t, StateFailed, o.State())
}

func TestOrchestratorScrapeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator().WithSettle(time.Minute)
	_, err := o.Scrape(ctx, fakePage{url: "https://www.fiverr.com/gigs/1"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestScrapeResponseContract(t *testing.T) {
	o := NewOrchestrator().WithSettle(0)

	ok := o.ScrapeResponse(context.Background(), fakePage{
		url:  "https://www.fiverr.com/gigs/1",
		html: "<html><body><h1>Gig</h1></body></html>",
	})
	require.Equal(t, StatusOK, ok.Status)
	require.NotNil(t, ok.Details)
	require.Empty(t, ok.Error)

	bad := o.ScrapeResponse(context.Background(), fakePage{
		url: "https://www.fiverr.com/gigs/1",
		err: errors.New("tab crashed"),
	})
	require.Equal(t, StatusErr, bad.Status)
	require.Nil(t, bad.Details)
	require.Contains(t, bad.Error, "tab crashed")
}

func TestMuxDispatch(t *testing.T) {
	mux := NewMux()
	mux.Handle(KindCheckLogin, func(context.Context, Request) Response {
		loggedIn := true
		resp := OK()
		resp.LoggedIn = &loggedIn
		return resp
	})

	resp := mux.Dispatch(context.Background(), Request{Kind: KindCheckLogin})
	require.Equal(t, StatusOK, resp.Status)
	require.NotNil(t, resp.LoggedIn)
	require.True(t, *resp.LoggedIn)
}

func TestMuxDispatchUnknownKind(t *testing.T) {
	mux := NewMux()

	resp := mux.Dispatch(context.Background(), Request{Kind: "REBOOT"})
	require.Equal(t, StatusErr, resp.Status)
	require.Contains(t, resp.Error, "unknown request type")
}

func TestStateString(t *testing.T) {
	require.Equal(t, "idle", StateIdle.String())
	require.Equal(t, "scraping", StateScraping.String())
	require.Equal(t, "done", StateDone.String())
	require.Equal(t, "failed", StateFailed.String())
}
