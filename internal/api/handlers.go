package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/matkollen/offerscraper/internal/browser"
	"github.com/matkollen/offerscraper/internal/models"
	"github.com/matkollen/offerscraper/internal/scraper"
	"github.com/matkollen/offerscraper/internal/syncer"
)

// ChainInfo is the per-chain configuration exposed on /chains.
type ChainInfo struct {
	ID            models.Chain `json:"id"`
	Name          string       `json:"name"`
	StoreSpecific bool         `json:"store_specific_offers"`
}

func chainInfos() []ChainInfo {
	return []ChainInfo{
		{ID: models.ChainICA, Name: "ICA", StoreSpecific: true},
		{ID: models.ChainHemkop, Name: "Hemköp", StoreSpecific: true},
		{ID: models.ChainCoop, Name: "Coop", StoreSpecific: false},
		{ID: models.ChainLidl, Name: "Lidl", StoreSpecific: false},
	}
}

// Handlers is the thin HTTP layer over the scraper fleet. Scrapers are
// created lazily per chain and reused; operations on one scraper instance
// are serialized because a browser context handles one operation at a time.
type Handlers struct {
	browserOpts *browser.Options
	syncer      *syncer.Syncer
	logger      *slog.Logger

	mu       sync.Mutex
	scrapers map[models.Chain]scraper.Scraper
	locks    map[models.Chain]*sync.Mutex
}

func NewHandlers(browserOpts *browser.Options, syn *syncer.Syncer, logger *slog.Logger) *Handlers {
	return &Handlers{
		browserOpts: browserOpts,
		syncer:      syn,
		logger:      logger,
		scrapers:    make(map[models.Chain]scraper.Scraper),
		locks:       make(map[models.Chain]*sync.Mutex),
	}
}

// Routes mounts every endpoint of the HTTP surface.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/chains", h.Chains)
	r.Get("/chains/{chain}/stores", h.SearchStores)
	r.Post("/chains/{chain}/offers", h.GetOffers)
	r.Post("/chains/{chain}/sync", h.SyncStore)
	r.Get("/validate", h.ValidateAll)
	r.Get("/validate/{chain}", h.ValidateChain)
}

// Close tears down every scraper the handler created.
func (h *Handlers) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for chain, s := range h.scrapers {
		if err := s.Close(); err != nil {
			h.logger.Error("failed to close scraper", "chain", chain, "error", err)
		}
	}
}

func (h *Handlers) scraperFor(chain models.Chain) (scraper.Scraper, *sync.Mutex, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.scrapers[chain]; ok {
		return s, h.locks[chain], nil
	}

	s, err := scraper.New(chain, h.browserOpts)
	if err != nil {
		return nil, nil, err
	}
	h.scrapers[chain] = s
	h.locks[chain] = &sync.Mutex{}
	return s, h.locks[chain], nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"chains": models.Chains(),
	})
}

func (h *Handlers) Chains(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, chainInfos())
}

func (h *Handlers) SearchStores(w http.ResponseWriter, r *http.Request) {
	chain, ok := models.ParseChain(chi.URLParam(r, "chain"))
	if !ok {
		h.respondError(w, http.StatusBadRequest, "unknown chain")
		return
	}

	query := r.URL.Query().Get("q")

	s, lock, err := h.scraperFor(chain)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	lock.Lock()
	result := s.SearchStores(r.Context(), query)
	lock.Unlock()

	if !result.Success {
		h.respondJSON(w, http.StatusBadGateway, result)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetOffers(w http.ResponseWriter, r *http.Request) {
	chain, ok := models.ParseChain(chi.URLParam(r, "chain"))
	if !ok {
		h.respondError(w, http.StatusBadRequest, "unknown chain")
		return
	}

	var store models.Store
	if err := json.NewDecoder(r.Body).Decode(&store); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid store body")
		return
	}
	if store.ID == "" {
		h.respondError(w, http.StatusBadRequest, "store id is required")
		return
	}
	store.Chain = chain

	s, lock, err := h.scraperFor(chain)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	lock.Lock()
	result := s.GetOffers(r.Context(), store)
	lock.Unlock()

	if !result.Success {
		h.respondJSON(w, http.StatusBadGateway, result)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// SyncStore scrapes the posted store and swaps its offers in the database.
// Only mounted usefully when a database is configured.
func (h *Handlers) SyncStore(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		h.respondError(w, http.StatusServiceUnavailable, "sync requires a configured database")
		return
	}

	chain, ok := models.ParseChain(chi.URLParam(r, "chain"))
	if !ok {
		h.respondError(w, http.StatusBadRequest, "unknown chain")
		return
	}

	var store models.Store
	if err := json.NewDecoder(r.Body).Decode(&store); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid store body")
		return
	}
	if store.ID == "" {
		h.respondError(w, http.StatusBadRequest, "store id is required")
		return
	}
	store.Chain = chain

	s, lock, err := h.scraperFor(chain)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	lock.Lock()
	report := h.syncer.SyncStores(r.Context(), s, []models.Store{store})
	lock.Unlock()

	status := http.StatusOK
	if report.Failed > 0 {
		status = http.StatusBadGateway
	}
	h.respondJSON(w, status, report)
}

func (h *Handlers) ValidateAll(w http.ResponseWriter, r *http.Request) {
	var results []models.ScraperResult[models.ValidationResult]
	allValid := true

	for _, chain := range models.Chains() {
		result := h.validateOne(r, chain)
		if !result.Success || !result.Data.Valid {
			allValid = false
		}
		results = append(results, result)
	}

	status := http.StatusOK
	if !allValid {
		status = http.StatusBadGateway
	}
	h.respondJSON(w, status, results)
}

func (h *Handlers) ValidateChain(w http.ResponseWriter, r *http.Request) {
	chain, ok := models.ParseChain(chi.URLParam(r, "chain"))
	if !ok {
		h.respondError(w, http.StatusBadRequest, "unknown chain")
		return
	}

	result := h.validateOne(r, chain)
	status := http.StatusOK
	if !result.Success || !result.Data.Valid {
		status = http.StatusBadGateway
	}
	h.respondJSON(w, status, result)
}

func (h *Handlers) validateOne(r *http.Request, chain models.Chain) models.ScraperResult[models.ValidationResult] {
	s, lock, err := h.scraperFor(chain)
	if err != nil {
		return models.ScraperResult[models.ValidationResult]{Error: err.Error()}
	}

	lock.Lock()
	defer lock.Unlock()
	return s.Validate(r.Context())
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
