package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/matkollen/offerscraper/internal/browser"
	"github.com/matkollen/offerscraper/internal/models"
)

// base carries the shared lifecycle for every chain scraper: a lazily
// launched browser that is reused across operations and torn down by Close.
// After Close the same scraper object can be used again; the next operation
// relaunches the browser.
type base struct {
	chain  models.Chain
	opts   *browser.Options
	logger *slog.Logger

	mu sync.Mutex
	b  *browser.Browser
}

func newBase(chain models.Chain, opts *browser.Options) *base {
	if opts == nil {
		opts = browser.DefaultOptions()
	}
	return &base{
		chain:  chain,
		opts:   opts,
		logger: slog.Default().With("component", "scraper", "chain", string(chain)),
	}
}

func (s *base) Chain() models.Chain {
	return s.chain
}

// init launches the browser if not already running. Repeated calls are
// no-ops once initialized.
func (s *base) init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.b != nil {
		return nil
	}

	b, err := browser.New(s.opts)
	if err != nil {
		return fmt.Errorf("failed to init browser: %w", err)
	}
	s.b = b
	s.logger.Info("browser initialized")
	return nil
}

// newPage auto-initializes the browser and opens a fresh page.
func (s *base) newPage() (playwright.Page, error) {
	if err := s.init(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	b := s.b
	s.mu.Unlock()

	if b == nil {
		return nil, ErrBrowserClosed
	}
	return b.NewPage()
}

func (s *base) navigate(page playwright.Page, url string) error {
	s.mu.Lock()
	b := s.b
	s.mu.Unlock()

	if b == nil {
		return ErrBrowserClosed
	}
	return b.Navigate(page, url)
}

// Close tears the browser down and resets the scraper to its uninitialized
// state so the instance can be reused cleanly.
func (s *base) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.b == nil {
		return nil
	}

	err := s.b.Close()
	s.b = nil
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	s.logger.Info("browser closed")
	return nil
}

// acceptCookies clicks the first matching consent button. Consent banners
// are cosmetic obstacles, not functional blockers, so a miss is swallowed
// and reported as false rather than failing the operation.
func (s *base) acceptCookies(page playwright.Page, selectors ...string) bool {
	for _, selector := range selectors {
		btn := page.Locator(selector).First()
		count, err := btn.Count()
		if err != nil || count == 0 {
			continue
		}
		if err := btn.Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(3000),
		}); err != nil {
			s.logger.Debug("consent click failed", "selector", selector, "error", err)
			continue
		}
		s.logger.Debug("accepted cookies", "selector", selector)
		time.Sleep(500 * time.Millisecond)
		return true
	}
	return false
}

// clickIfPresent is a best-effort click used for optional surface discovery
// steps (tabs, store pickers). Failure is expected and normal.
func (s *base) clickIfPresent(page playwright.Page, selector string) bool {
	loc := page.Locator(selector).First()
	count, err := loc.Count()
	if err != nil || count == 0 {
		return false
	}
	if err := loc.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(3000),
	}); err != nil {
		return false
	}
	return true
}

// scrollOptions drives the lazy-content materialization loop.
type scrollOptions struct {
	// TargetSelector counts the containers we are trying to materialize.
	TargetSelector string
	// MinCount stops scrolling as soon as this many containers exist.
	MinCount int
	// MaxRounds caps the loop no matter what the page does.
	MaxRounds int
	// Settle is the fixed wait after each scroll for content to arrive.
	Settle time.Duration
	// LoadMoreSelector, when set, is probed and clicked mid-loop.
	LoadMoreSelector string
}

func defaultScrollOptions(target string, minCount int) scrollOptions {
	return scrollOptions{
		TargetSelector: target,
		MinCount:       minCount,
		MaxRounds:      12,
		Settle:         1200 * time.Millisecond,
	}
}

// scrollToLoad repeatedly scrolls to the bottom to force lazy content to
// materialize. It stops on whichever comes first: the target container count
// is reached, the scroll height stops growing for three consecutive rounds,
// or the round cap is hit. Returns the final container count.
func (s *base) scrollToLoad(ctx context.Context, page playwright.Page, opts scrollOptions) int {
	lastHeight := -1
	stalled := 0

	for round := 0; round < opts.MaxRounds; round++ {
		if ctx.Err() != nil {
			break
		}

		count, err := page.Locator(opts.TargetSelector).Count()
		if err == nil && opts.MinCount > 0 && count >= opts.MinCount {
			s.logger.Debug("target container count reached", "count", count, "rounds", round)
			return count
		}

		if opts.LoadMoreSelector != "" {
			if s.clickIfPresent(page, opts.LoadMoreSelector) {
				s.logger.Debug("clicked load-more button")
			}
		}

		if _, err := page.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`); err != nil {
			s.logger.Debug("scroll failed", "error", err)
			break
		}
		time.Sleep(opts.Settle)

		height := 0
		if v, err := page.Evaluate(`document.body.scrollHeight`); err == nil {
			switch h := v.(type) {
			case int:
				height = h
			case float64:
				height = int(h)
			}
		}

		if height <= lastHeight {
			stalled++
			if stalled >= 3 {
				s.logger.Debug("scroll height stalled", "rounds", round)
				break
			}
		} else {
			stalled = 0
		}
		lastHeight = height
	}

	count, _ := page.Locator(opts.TargetSelector).Count()
	return count
}

// validateMarkers loads url and counts how many of the given page-intact
// markers are present. It is the shared body behind every chain's Validate.
func (s *base) validateMarkers(ctx context.Context, url string, markers []string) (models.ValidationResult, error) {
	result := models.ValidationResult{
		Chain:     s.chain,
		CheckedAt: time.Now(),
	}

	page, err := s.newPage()
	if err != nil {
		return result, err
	}
	defer page.Close()

	if err := s.navigate(page, url); err != nil {
		return result, err
	}

	found := 0
	var missing []string
	for _, marker := range markers {
		count, err := page.Locator(marker).Count()
		if err == nil && count > 0 {
			found++
		} else {
			missing = append(missing, marker)
		}
	}

	result.Valid = found == len(markers)
	if result.Valid {
		result.Message = fmt.Sprintf("all %d page markers present", len(markers))
	} else {
		result.Message = fmt.Sprintf("%d/%d page markers present, missing: %s",
			found, len(markers), strings.Join(missing, ", "))
	}
	return result, nil
}

// dedupSet rejects offers whose (name, price) pair has already been accepted
// within one extraction pass. Dedup is pass-local only; offer identity does
// not survive across scrapes.
type dedupSet map[string]struct{}

func (d dedupSet) accept(o *models.Offer) bool {
	key := fmt.Sprintf("%s|%.2f", strings.ToLower(strings.TrimSpace(o.Name)), o.OfferPrice)
	if _, seen := d[key]; seen {
		return false
	}
	d[key] = struct{}{}
	return true
}
