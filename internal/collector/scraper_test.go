package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"paperforge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const questionPage = `<html>
<head><title>Mock Test</title><style>body { color: red }</style></head>
<body>
<nav>Home | Tests | Login</nav>
<div class="question-card">
  <p class="q-text">A particle moves with constant acceleration. Find its displacement after 3 seconds.</p>
  <span class="opt">4.5 m</span>
  <span class="opt">9 m</span>
  <span class="opt">13.5 m</span>
  <span class="opt">18 m</span>
</div>
<div class="question-card">
  <p class="q-text">Short</p>
</div>
<footer>Join our Telegram channel!</footer>
<script>trackVisit();</script>
</body>
</html>`

func fastScraperConfig() ScraperConfig {
	cfg := DefaultScraperConfig()
	cfg.RateLimit = 1
	return cfg
}

func collectChunks(t *testing.T, s *Scraper, urls []string, cfg ScraperConfig) []domain.RawChunk {
	t.Helper()
	var chunks []domain.RawChunk
	err := s.Scrape(context.Background(), urls, cfg, func(c domain.RawChunk) {
		chunks = append(chunks, c)
	})
	require.NoError(t, err)
	return chunks
}

func TestScrapeUnstructuredStripsChrome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(questionPage))
	}))
	defer srv.Close()

	s := NewScraper(srv.Client(), zap.NewNop())
	chunks := collectChunks(t, s, []string{srv.URL}, fastScraperConfig())

	require.Len(t, chunks, 1)
	c := chunks[0]
	assert.Equal(t, domain.ChunkPending, c.Status)
	assert.Equal(t, domain.SourceScraper, c.SourceType)
	assert.Equal(t, srv.URL, c.SourceName)
	assert.Equal(t, srv.URL, c.SourceRef)
	assert.Contains(t, c.Text, "constant acceleration")
	assert.NotContains(t, c.Text, "trackVisit")
	assert.NotContains(t, c.Text, "color: red")
	assert.NotContains(t, c.Text, "Home | Tests | Login")
	assert.NotContains(t, c.Text, "Telegram")
}

func TestScrapeStructuredExtractionUsesSelectors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(questionPage))
	}))
	defer srv.Close()

	cfg := fastScraperConfig()
	cfg.ContainerSelector = ".question-card"
	cfg.QuestionSelector = ".q-text"
	cfg.OptionSelector = ".opt"

	s := NewScraper(srv.Client(), zap.NewNop())
	chunks := collectChunks(t, s, []string{srv.URL}, cfg)

	require.Len(t, chunks, 1)
	text := chunks[0].Text
	assert.Contains(t, text, "--- QUESTION BLOCK 0 ---")
	assert.Contains(t, text, "Find its displacement")
	assert.Contains(t, text, "Option: 4.5 m")
	assert.Contains(t, text, "Option: 18 m")
	// The second card's text is below the length floor and is dropped.
	assert.NotContains(t, text, "QUESTION BLOCK 1")
}

func TestScrapeHTTPErrorYieldsFailedChunk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewScraper(srv.Client(), zap.NewNop())
	chunks := collectChunks(t, s, []string{srv.URL}, fastScraperConfig())

	require.Len(t, chunks, 1)
	c := chunks[0]
	assert.Equal(t, domain.ChunkFailed, c.Status)
	assert.Contains(t, c.Error, "HTTP 500")
	assert.Empty(t, c.Text)
}

func TestScrapeFailureDoesNotAbortBatch(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		w.Write([]byte(questionPage))
	}))
	defer srv.Close()

	s := NewScraper(srv.Client(), zap.NewNop())
	chunks := collectChunks(t, s, []string{srv.URL + "/missing", srv.URL + "/ok"}, fastScraperConfig())

	require.Len(t, chunks, 2)
	assert.Equal(t, domain.ChunkFailed, chunks[0].Status)
	assert.Equal(t, domain.ChunkPending, chunks[1].Status)
}

func TestScrapeSkipsBlankURLs(t *testing.T) {
	s := NewScraper(nil, zap.NewNop())

	chunks := collectChunks(t, s, []string{"", "   "}, fastScraperConfig())

	assert.Empty(t, chunks)
}

func TestScrapeCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(questionPage))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScraper(srv.Client(), zap.NewNop())
	err := s.Scrape(ctx, []string{srv.URL}, DefaultScraperConfig(), func(domain.RawChunk) {
		t.Fatal("no chunk expected after cancellation")
	})

	assert.ErrorIs(t, err, context.Canceled)
}
