package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"gigscout/pkg/api"
	"gigscout/pkg/browser"
	"gigscout/pkg/config"
	"gigscout/pkg/export"
	"gigscout/pkg/kv"
	"gigscout/pkg/models"
	"gigscout/pkg/pipeline"
	"gigscout/pkg/remote"
	"gigscout/pkg/scheduler"
	"gigscout/pkg/scrape"
	"gigscout/pkg/session"
	"gigscout/pkg/store"

	scalargo "github.com/bdpiprava/scalar-go"
)

type server struct {
	cfg     config.Config
	local   *kv.Store
	session *session.Session
	gateway *store.Gateway
	fetcher *browser.StaticFetcher
	msgMux  *scrape.Mux

	// The controlled tab is a shared mutable resource: one batch at a time.
	tabMu    sync.Mutex
	tab      *browser.Tab
	lastScan []models.GigSummary
}

func main() {
	cfgPath := os.Getenv("GIGSCOUT_CONFIG")
	if cfgPath == "" {
		cfgPath = "./gigscout.json5"
	}
	cfg, err := config.Read(cfgPath)
	if err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}
	if v := os.Getenv("GIGSCOUT_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("GIGSCOUT_DB_PATH"); v != "" {
		cfg.KVPath = v
	}

	local, err := kv.Open(cfg.KVPath)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer local.Close()
	log.Printf("Local store at %s", cfg.KVPath)

	sess := session.New(local, cfg.Remote)
	if err := sess.Load(context.Background()); err != nil {
		log.Fatalf("Failed to load session: %v", err)
	}
	if st := sess.Status(); st.Connected {
		log.Printf("Remote store connected")
	} else {
		log.Printf("Remote store offline: %s (local-only persistence)", st.Error)
	}

	srv := &server{
		cfg:     cfg,
		local:   local,
		session: sess,
		gateway: store.NewGateway(local, sess, cfg.UserID),
		fetcher: browser.NewStaticFetcher(cfg.AllowedDomains...),
	}
	srv.msgMux = srv.messageMux()
	defer srv.closeTab()

	sched := scheduler.New(cfg.Schedule, srv.runScheduled)
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()
	if cfg.Schedule != "" {
		log.Printf("Scheduled re-scrape: %s", cfg.Schedule)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", srv.handleDocs)
	mux.HandleFunc("POST /scan", srv.handleScan)
	mux.HandleFunc("POST /scrape", srv.handleScrape)
	mux.HandleFunc("GET /gigs", srv.handleGigs)
	mux.HandleFunc("GET /gigs/export.csv", srv.handleExport)
	mux.HandleFunc("GET /status", srv.handleStatus)
	mux.HandleFunc("GET /config", srv.handleGetConfig)
	mux.HandleFunc("PUT /config", srv.handleSetConfig)
	mux.HandleFunc("POST /message", srv.handleMessage)

	if ip := GetOutboundIP(); ip != nil {
		fmt.Printf("Local Network URL: http://%s%s\n", ip.String(), cfg.Addr)
	}
	fmt.Printf("Access URL: http://localhost%s\n", cfg.Addr)
	fmt.Printf("API Docs: http://localhost%s/\n", cfg.Addr)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Fatal(httpServer.ListenAndServe())
}

func GetOutboundIP() net.IP {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		addrs, _ := net.InterfaceAddrs()
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					return ipnet.IP
				}
			}
		}
		return nil
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP
}

// ensureTab lazily launches the controlled browser tab.
func (s *server) ensureTab() (*browser.Tab, error) {
	if s.tab != nil {
		return s.tab, nil
	}
	tab, err := browser.NewTab(context.Background())
	if err != nil {
		return nil, err
	}
	s.tab = tab
	return tab, nil
}

func (s *server) closeTab() {
	if s.tab != nil {
		s.tab.Close()
		s.tab = nil
	}
}

func (s *server) handleDocs(w http.ResponseWriter, r *http.Request) {
	html, err := scalargo.NewV2(
		scalargo.WithSpecDir("./"),
		scalargo.WithMetaDataOpts(
			scalargo.WithTitle("Gigscout API"),
		),
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

func (s *server) handleScan(w http.ResponseWriter, r *http.Request) {
	if !s.tabMu.TryLock() {
		api.WriteConflict(w, "A scrape batch is already running.", r.URL.Path)
		return
	}
	defer s.tabMu.Unlock()

	tab, err := s.ensureTab()
	if err != nil {
		api.WriteUnavailable(w, "Browser unavailable: "+err.Error(), r.URL.Path)
		return
	}

	loggedIn, err := tab.LoggedIn(r.Context())
	if err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}
	if !loggedIn {
		api.WriteUnavailable(w, "Marketplace session not logged in. Sign in using the controlled browser window, then scan again.", r.URL.Path)
		return
	}

	sums, err := tab.ScanListing(r.Context(), s.cfg.ListingURL)
	if err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}
	s.lastScan = sums

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"count": len(sums),
		"gigs":  sums,
	})
}

type scrapeRequest struct {
	Gigs []models.GigSummary `json:"gigs"`
}

func (s *server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if r.Body != nil {
		// Body is optional; an empty one means "use the last scan".
		json.NewDecoder(r.Body).Decode(&req)
		r.Body.Close()
	}

	if !s.tabMu.TryLock() {
		api.WriteConflict(w, "A scrape batch is already running.", r.URL.Path)
		return
	}
	defer s.tabMu.Unlock()

	sums := req.Gigs
	if len(sums) == 0 {
		sums = s.lastScan
	}
	if len(sums) == 0 {
		api.WriteBadRequest(w, "No gigs to scrape. Run a scan first or provide gigs in the request body.", r.URL.Path)
		return
	}

	tab, err := s.ensureTab()
	if err != nil {
		api.WriteUnavailable(w, "Browser unavailable: "+err.Error(), r.URL.Path)
		return
	}

	report, result, err := s.scrapeAndSync(r.Context(), tab, sums)
	if err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"report": report,
		"sync":   result,
	})
}

// scrapeAndSync runs the batch over the tab and persists the outcome.
// Callers hold tabMu.
func (s *server) scrapeAndSync(ctx context.Context, tab *browser.Tab, sums []models.GigSummary) (pipeline.Report, store.SyncResult, error) {
	pipe := pipeline.New(tab, func(url string) (scrape.Page, error) {
		return s.fetcher.Fetch(url)
	})
	runner := pipeline.NewRunner(pipe, func(current, total int) {
		log.Printf("Scrape progress: %d/%d", current, total)
	})

	report := runner.Run(ctx, sums)

	result, err := s.gateway.Sync(ctx, report.Gigs)
	if err != nil {
		return report, result, err
	}
	log.Printf("Batch %s: %d gigs, %d errors, %d synced remotely",
		report.RunID, len(report.Gigs), len(report.Errors), result.Remote)
	return report, result, nil
}

// runScheduled is the cron job: scan the listing and scrape everything.
func (s *server) runScheduled() {
	s.tabMu.Lock()
	defer s.tabMu.Unlock()

	ctx := context.Background()
	tab, err := s.ensureTab()
	if err != nil {
		log.Printf("Scheduled run: browser unavailable: %v", err)
		return
	}
	loggedIn, err := tab.LoggedIn(ctx)
	if err != nil || !loggedIn {
		log.Printf("Scheduled run skipped: not logged in (err=%v)", err)
		return
	}
	sums, err := tab.ScanListing(ctx, s.cfg.ListingURL)
	if err != nil {
		log.Printf("Scheduled run: listing scan failed: %v", err)
		return
	}
	s.lastScan = sums
	if _, _, err := s.scrapeAndSync(ctx, tab, sums); err != nil {
		log.Printf("Scheduled run: sync failed: %v", err)
	}
}

func (s *server) handleGigs(w http.ResponseWriter, r *http.Request) {
	gigs, err := s.gateway.Load()
	if err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"count": len(gigs),
		"gigs":  gigs,
	})
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	gigs, err := s.gateway.Load()
	if err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}
	filename := fmt.Sprintf("gigscout_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.CSVGigs(w, gigs); err != nil {
		log.Printf("Error writing CSV export: %v", err)
	}
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "1" {
		s.session.Test(r.Context())
	}
	api.WriteJSON(w, http.StatusOK, s.session.Status())
}

func (s *server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.session.Config()
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"url": cfg.URL,
		"key": maskKey(cfg.Key),
	})
}

func (s *server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var cfg remote.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		api.WriteBadRequest(w, "Invalid JSON body. Expected {url, key}.", r.URL.Path)
		return
	}
	if !cfg.Valid() {
		api.WriteBadRequest(w, "Both url and key are required.", r.URL.Path)
		return
	}
	if err := s.session.SetConfig(r.Context(), cfg); err != nil {
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}
	api.WriteJSON(w, http.StatusOK, s.session.Status())
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "********"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// handleMessage exposes the tagged request contract directly:
// {"type": "SCRAPE_GIG"} and friends.
func (s *server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req scrape.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid JSON body. Expected {type}.", r.URL.Path)
		return
	}

	// Every message handler drives the shared tab; one holder at a time.
	if !s.tabMu.TryLock() {
		api.WriteConflict(w, "A scrape batch is already running.", r.URL.Path)
		return
	}
	defer s.tabMu.Unlock()

	api.WriteJSON(w, http.StatusOK, s.msgMux.Dispatch(r.Context(), req))
}

func (s *server) messageMux() *scrape.Mux {
	mux := scrape.NewMux()

	mux.Handle(scrape.KindScrapeGig, func(ctx context.Context, _ scrape.Request) scrape.Response {
		if s.tab == nil {
			return scrape.Errf("no active tab")
		}
		return scrape.NewOrchestrator().ScrapeResponse(ctx, s.tab)
	})

	mux.Handle(scrape.KindCheckLogin, func(ctx context.Context, _ scrape.Request) scrape.Response {
		tab, err := s.ensureTab()
		if err != nil {
			return scrape.Errf("browser unavailable: %v", err)
		}
		loggedIn, err := tab.LoggedIn(ctx)
		if err != nil {
			return scrape.Errf("%v", err)
		}
		resp := scrape.OK()
		resp.LoggedIn = &loggedIn
		return resp
	})

	mux.Handle(scrape.KindScanListing, func(ctx context.Context, _ scrape.Request) scrape.Response {
		tab, err := s.ensureTab()
		if err != nil {
			return scrape.Errf("browser unavailable: %v", err)
		}
		sums, err := tab.ScanListing(ctx, s.cfg.ListingURL)
		if err != nil {
			return scrape.Errf("%v", err)
		}
		resp := scrape.OK()
		resp.Gigs = sums
		return resp
	})

	return mux
}
