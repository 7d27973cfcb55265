// Package scraper fetches catalog listing pages in order and parses product
// entries into a raw snapshot.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/qiyanche/book-price-analysis-project/config"
	"github.com/qiyanche/book-price-analysis-project/models"
	"github.com/qiyanche/book-price-analysis-project/parser"
)

// Scraper wraps a synchronous colly collector. Pages are visited one at a
// time with a randomized courtesy delay between requests; the first failed
// fetch or empty page ends pagination for the run.
type Scraper struct {
	cfg       *config.Config
	collector *colly.Collector
	Metrics   *Metrics

	mu           sync.Mutex
	pageItems    []models.RawItem
	requestCount int
	errorCount   int
	errorsByType map[string]int
}

// NewScraper builds a scraper configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Host),
		colly.UserAgent(cfg.UserAgent),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       cfg.Delay,
		RandomDelay: cfg.RandomDelay,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limits: %w", err)
	}

	s := &Scraper{
		cfg:          cfg,
		collector:    collector,
		Metrics:      NewMetrics(),
		errorsByType: make(map[string]int),
	}
	s.registerHandlers()
	return s, nil
}

// Run walks listing pages starting at 1 until a page fails, yields no
// products, or the page ceiling is reached. Fetch failures end the run but
// are never propagated as errors; the snapshot holds whatever was captured.
func (s *Scraper) Run(ctx context.Context) (*models.Snapshot, *models.ScrapeResult) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	snapshot := &models.Snapshot{
		SnapshotTime: start.UTC().Format(time.RFC3339),
	}
	result := &models.ScrapeResult{StartTime: start}

	base := strings.TrimRight(s.cfg.BaseURL, "/")
	for page := 1; page <= s.cfg.MaxPages; page++ {
		if ctx.Err() != nil {
			slog.Info("scrape cancelled", slog.Int("page", page))
			break
		}

		pageURL := fmt.Sprintf("%s/catalogue/page-%d.html", base, page)
		slog.Info("fetching page", slog.Int("page", page), slog.String("url", pageURL))

		items, err := s.fetchPage(pageURL)
		if err != nil {
			slog.Warn("page fetch failed, stopping pagination",
				slog.Int("page", page),
				slog.Any("error", err),
			)
			break
		}
		if len(items) == 0 {
			slog.Info("no products on page, stopping pagination", slog.Int("page", page))
			break
		}

		snapshot.Items = append(snapshot.Items, items...)
		result.PageCount++
		s.Metrics.IncPages()
		slog.Debug("page parsed", slog.Int("page", page), slog.Int("items", len(items)))
	}

	s.mu.Lock()
	result.RequestCount = s.requestCount
	result.ErrorCount = s.errorCount
	result.ErrorsByType = make(map[string]int, len(s.errorsByType))
	for k, v := range s.errorsByType {
		result.ErrorsByType[k] = v
	}
	s.mu.Unlock()

	result.ItemCount = len(snapshot.Items)
	result.EndTime = time.Now()
	return snapshot, result
}

// fetchPage visits one listing page and returns the items parsed from it.
// The collector is synchronous, so Visit blocks until handlers have run.
func (s *Scraper) fetchPage(pageURL string) ([]models.RawItem, error) {
	s.mu.Lock()
	s.pageItems = s.pageItems[:0]
	s.mu.Unlock()

	if err := s.collector.Visit(pageURL); err != nil {
		return nil, err
	}
	s.collector.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]models.RawItem, len(s.pageItems))
	copy(items, s.pageItems)
	return items, nil
}

func (s *Scraper) registerHandlers() {
	s.collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", s.cfg.Accept)
		r.Headers.Set("Accept-Language", s.cfg.AcceptLanguage)
		r.Ctx.Put("start", time.Now())

		s.mu.Lock()
		s.requestCount++
		s.mu.Unlock()
		s.Metrics.IncRequests()
	})

	s.collector.OnResponse(func(r *colly.Response) {
		if start, ok := r.Ctx.GetAny("start").(time.Time); ok {
			s.Metrics.ObserveDuration(time.Since(start))
		}
	})

	s.collector.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		pageURL := ""
		if r != nil {
			statusCode = r.StatusCode
			if r.Request != nil && r.Request.URL != nil {
				pageURL = r.Request.URL.String()
			}
		}
		category := classifyError(err, statusCode)

		s.mu.Lock()
		s.errorCount++
		s.errorsByType[category]++
		s.mu.Unlock()

		slog.Error("request error",
			slog.String("url", pageURL),
			slog.Int("status", statusCode),
			slog.String("category", category),
			slog.Any("error", err),
		)
		s.Metrics.IncError(category)
	})

	s.collector.OnHTML("article.product_pod", func(e *colly.HTMLElement) {
		item := s.extractItem(e)
		if item == nil {
			return
		}
		s.Metrics.IncItems()

		s.mu.Lock()
		s.pageItems = append(s.pageItems, *item)
		s.mu.Unlock()
	})
}

// extractItem parses one product pod. Missing price or availability text
// propagates as nil/empty; the cleaner decides what to drop.
func (s *Scraper) extractItem(e *colly.HTMLElement) *models.RawItem {
	name := strings.TrimSpace(e.ChildAttr("h3 a", "title"))
	if name == "" {
		name = strings.TrimSpace(e.ChildText("h3 a"))
	}
	href := e.ChildAttr("h3 a", "href")
	if name == "" && href == "" {
		return nil
	}

	priceText := strings.TrimSpace(e.ChildText("p.price_color"))

	availability := strings.TrimSpace(e.ChildText("p.instock.availability"))
	if availability == "" {
		availability = strings.TrimSpace(e.ChildText("p.availability"))
	}

	return &models.RawItem{
		Site:         s.cfg.Site,
		Name:         name,
		URL:          e.Request.AbsoluteURL(href),
		Price:        parser.ExtractPrice(priceText),
		Currency:     s.cfg.DefaultCurrency,
		Availability: availability,
		SourceURL:    e.Request.URL.String(),
	}
}
