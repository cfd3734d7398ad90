package collector

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"paperforge/internal/domain"
	"paperforge/internal/util"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ScraperConfig controls fetch pacing and the optional CSS selectors used
// for structured question extraction.
type ScraperConfig struct {
	RateLimit         time.Duration
	ContainerSelector string
	QuestionSelector  string
	OptionSelector    string
}

// DefaultScraperConfig paces requests at one per second with unstructured
// body-text extraction.
func DefaultScraperConfig() ScraperConfig {
	return ScraperConfig{RateLimit: time.Second}
}

var blankLines = regexp.MustCompile(`\n\s*\n`)

// Scraper fetches web pages and converts them into raw chunks. Each URL
// yields exactly one chunk; a fetch or parse failure yields a failed chunk
// rather than aborting the batch.
type Scraper struct {
	client *http.Client
	logger *zap.Logger
}

func NewScraper(client *http.Client, logger *zap.Logger) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Scraper{client: client, logger: logger}
}

// Scrape processes urls in order, sleeping between fetches, and hands each
// resulting chunk to onChunk as it is produced. Cancelling ctx stops the
// batch after the in-flight URL.
func (s *Scraper) Scrape(ctx context.Context, urls []string, cfg ScraperConfig, onChunk func(domain.RawChunk)) error {
	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = time.Second
	}

	for _, rawURL := range urls {
		cleanURL := strings.TrimSpace(rawURL)
		if cleanURL == "" {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rateLimit):
		}

		s.logger.Info("Starting scrape", zap.String("url", cleanURL))

		text, err := s.fetchAndExtract(ctx, cleanURL, cfg)
		if err != nil {
			s.logger.Error("Failed to scrape", zap.String("url", cleanURL), zap.Error(err))
			onChunk(domain.RawChunk{
				ID:         util.NewULID(),
				SourceType: domain.SourceScraper,
				SourceName: cleanURL,
				SourceRef:  cleanURL,
				Status:     domain.ChunkFailed,
				Error:      err.Error(),
			})
			continue
		}

		if len(text) < minPageChars {
			s.logger.Warn("Low content extracted", zap.String("url", cleanURL), zap.Int("length", len(text)))
		}

		onChunk(domain.RawChunk{
			ID:         util.NewULID(),
			Text:       text,
			SourceType: domain.SourceScraper,
			SourceName: cleanURL,
			SourceRef:  cleanURL,
			Status:     domain.ChunkPending,
		})
		s.logger.Info("Successfully extracted content", zap.String("url", cleanURL))
	}
	return nil
}

func (s *Scraper) fetchAndExtract(ctx context.Context, url string, cfg ScraperConfig) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", domain.NewNetworkError(url, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", domain.NewNetworkError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domain.NewNetworkError(url, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", domain.NewNetworkError(url, err)
	}

	if cfg.ContainerSelector != "" {
		return s.extractStructured(doc, cfg), nil
	}
	return extractBodyText(doc), nil
}

// extractStructured walks the configured container elements and reassembles
// each into a labelled block. The block markers help the AI cleaner split
// questions later.
func (s *Scraper) extractStructured(doc *goquery.Document, cfg ScraperConfig) string {
	var sb strings.Builder

	containers := doc.Find(cfg.ContainerSelector)
	s.logger.Info("Found containers",
		zap.Int("count", containers.Length()),
		zap.String("selector", cfg.ContainerSelector))

	containers.Each(func(idx int, container *goquery.Selection) {
		var qText string
		if cfg.QuestionSelector != "" {
			qText = strings.TrimSpace(container.Find(cfg.QuestionSelector).First().Text())
		} else {
			qText = strings.TrimSpace(container.Text())
		}

		if cfg.OptionSelector != "" {
			container.Find(cfg.OptionSelector).Each(func(_ int, opt *goquery.Selection) {
				qText += "\nOption: " + strings.TrimSpace(opt.Text())
			})
		}

		if len(qText) > 10 {
			fmt.Fprintf(&sb, "\n--- QUESTION BLOCK %d ---\n%s\n", idx, qText)
		}
	})

	return sb.String()
}

func extractBodyText(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, header").Remove()
	text := doc.Find("body").Text()
	return strings.TrimSpace(blankLines.ReplaceAllString(text, "\n\n"))
}
