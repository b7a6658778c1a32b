// Package browser drives the single controlled Chrome tab all scraping goes
// through, plus a plain-HTTP fetcher for public pages that need no session.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// loadTimeout bounds waiting for a wizard page to finish loading.
const loadTimeout = 30 * time.Second

// Tab is the one browser tab the pipeline owns. Its navigation state is a
// shared mutable resource, so callers must not use it concurrently.
type Tab struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	loadTimeout time.Duration
	current     string
}

func NewTab(parent context.Context) (*Tab, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// Launch the browser eagerly so the first Navigate doesn't pay for it.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &Tab{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		loadTimeout: loadTimeout,
	}, nil
}

func (t *Tab) Close() {
	t.cancelTab()
	t.cancelAlloc()
}

// Navigate loads url and waits for the page body, bounded by the load
// timeout.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := context.WithTimeout(t.ctx, t.loadTimeout)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	t.current = url
	return nil
}

func (t *Tab) URL() string { return t.current }

func (t *Tab) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := context.WithTimeout(t.ctx, t.loadTimeout)
	defer cancel()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Evaluate(`document.documentElement.outerHTML`, &html),
	)
	if err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}
	return html, nil
}

// LoggedIn reports whether the marketplace session in the tab looks
// authenticated. Purely heuristic: it checks for the logged-in user menu.
func (t *Tab) LoggedIn(ctx context.Context) (bool, error) {
	runCtx, cancel := context.WithTimeout(t.ctx, t.loadTimeout)
	defer cancel()

	var loggedIn bool
	err := chromedp.Run(runCtx,
		chromedp.Evaluate(
			`!!document.querySelector('[data-testid="user-menu"], .user-menu, .user-avatar, a[href*="logout"]')`,
			&loggedIn,
		),
	)
	if err != nil {
		return false, fmt.Errorf("check login: %w", err)
	}
	return loggedIn, nil
}
