package webmotors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"vehicle-insights/config"
	"vehicle-insights/metrics"
	"vehicle-insights/models"
	"vehicle-insights/utils"
)

// ErrForbidden means the cookie expired or the client was blocked.
var ErrForbidden = errors.New("webmotors: access forbidden (cookie expired or IP blocked)")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// PageFetcher retrieves one search page. A non-200 status is reported
// through status, not err.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (status int, body []byte, err error)
	Close() error
}

// Scraper walks the paginated search API until it runs out of results.
type Scraper struct {
	cfg      *config.Config
	logger   *utils.Logger
	fetcher  PageFetcher
	throttle *utils.Throttle
	seen     *utils.KeySet
	metrics  *metrics.Registry

	listings []*models.RawListing
}

// New creates a ready-to-use Scraper. reg may be nil.
func New(cfg *config.Config, logger *utils.Logger, fetcher PageFetcher, reg *metrics.Registry) *Scraper {
	return &Scraper{
		cfg:      cfg,
		logger:   logger,
		fetcher:  fetcher,
		throttle: utils.NewThrottle(cfg.MinDelayMs, cfg.MaxDelayMs),
		seen:     utils.NewKeySet(),
		metrics:  reg,
		listings: make([]*models.RawListing, 0),
	}
}

// NewFetcher builds the transport named by cfg.Transport.
func NewFetcher(cfg *config.Config, logger *utils.Logger) (PageFetcher, error) {
	switch cfg.Transport {
	case "", "http":
		return NewHTTPFetcher(cfg), nil
	case "browser":
		return NewBrowserFetcher(cfg, logger)
	default:
		return nil, fmt.Errorf("webmotors: unknown transport %q", cfg.Transport)
	}
}

// PageURL fills the {page} placeholder of the URL template.
func PageURL(template string, page int) string {
	return strings.ReplaceAll(template, "{page}", strconv.Itoa(page))
}

// Scrape requests pages 1, 2, ... until a page comes back empty or the page
// cap is reached. A forbidden or failed page also ends the walk; the listings
// gathered so far are returned together with the error.
func (s *Scraper) Scrape(ctx context.Context) ([]*models.RawListing, error) {
	if err := s.cfg.ValidateScrape(); err != nil {
		return nil, err
	}
	s.logger.Info("[webmotors] Starting scrape via %s transport (delay %d-%dms)",
		s.cfg.Transport, s.cfg.MinDelayMs, s.cfg.MaxDelayMs)

	for page := 1; s.cfg.MaxPages <= 0 || page <= s.cfg.MaxPages; page++ {
		if err := s.throttle.Wait(ctx); err != nil {
			return s.listings, fmt.Errorf("webmotors: page %d: %w", page, err)
		}

		s.logger.Info("[webmotors] Processing page %d...", page)
		pageListings, err := s.scrapePage(ctx, page)
		if err != nil {
			s.logger.Error("[webmotors] Page %d failed: %v", page, err)
			return s.listings, err
		}
		if len(pageListings) == 0 {
			s.logger.Info("[webmotors] Page %d is empty, end of results", page)
			break
		}

		added := 0
		for _, l := range pageListings {
			// Results without an id all share the bare listing URL.
			if l.Link == listingBaseURL || s.seen.Add(l.Link) {
				s.listings = append(s.listings, l)
				added++
			}
		}
		s.metrics.Page(added)
		s.logger.Info("[webmotors] Page %d done: %d vehicles (%d new), %d collected so far",
			page, len(pageListings), added, len(s.listings))
	}

	s.logger.Info("[webmotors] Scrape complete, total raw listings: %d", len(s.listings))
	return s.listings, nil
}

func (s *Scraper) scrapePage(ctx context.Context, page int) ([]*models.RawListing, error) {
	status, body, err := s.fetcher.Fetch(ctx, PageURL(s.cfg.URLTemplate, page))
	if err != nil {
		return nil, fmt.Errorf("webmotors: page %d: %w", page, err)
	}
	switch {
	case status == http.StatusForbidden:
		return nil, ErrForbidden
	case status != http.StatusOK:
		return nil, fmt.Errorf("webmotors: page %d: unexpected status %d", page, status)
	}
	return decodePage(body)
}
