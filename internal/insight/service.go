package insight

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds a single request to the text-generation service.
const DefaultTimeout = 30 * time.Second

// Result is a generated summary for one prompt.
type Result struct {
	Prompt string `json:"prompt"`
	Text   string `json:"text"`
	HTML   string `json:"html"`
	Cached bool   `json:"cached"`
}

// Service memoizes summaries by exact prompt text. Concurrent requests for
// the same prompt share one outbound call; failures are never cached.
type Service struct {
	gen     Generator
	timeout time.Duration
	log     zerolog.Logger

	mu       sync.RWMutex
	results  map[string]string
	inflight map[string]bool
	group    singleflight.Group
}

// NewService creates a Service. A non-positive timeout selects DefaultTimeout.
func NewService(gen Generator, timeout time.Duration, log zerolog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		gen:      gen,
		timeout:  timeout,
		log:      log,
		results:  make(map[string]string),
		inflight: make(map[string]bool),
	}
}

// Summarize builds the prompt for facts and returns its summary.
func (s *Service) Summarize(ctx context.Context, f Facts) (*Result, error) {
	return s.Generate(ctx, Prompt(f))
}

// Generate returns the summary for prompt, calling the generator at most
// once per distinct prompt that succeeds.
func (s *Service) Generate(ctx context.Context, prompt string) (*Result, error) {
	if text, ok := s.cached(prompt); ok {
		return newResult(prompt, text, true), nil
	}

	v, err, _ := s.group.Do(prompt, func() (interface{}, error) {
		if text, ok := s.cached(prompt); ok {
			return text, nil
		}

		s.setInflight(prompt, true)
		defer s.setInflight(prompt, false)

		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		start := time.Now()
		text, err := s.gen.Generate(callCtx, prompt)
		if err != nil {
			s.log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("Insight generation failed")
			return nil, err
		}

		s.mu.Lock()
		s.results[prompt] = text
		s.mu.Unlock()

		s.log.Info().Dur("elapsed", time.Since(start)).Int("chars", len(text)).Msg("Insight generated")
		return text, nil
	})
	if err != nil {
		return nil, fmt.Errorf("Generate: %w: %w", ErrUnavailable, err)
	}

	return newResult(prompt, v.(string), false), nil
}

// Cached reports whether a summary for prompt is already stored.
func (s *Service) Cached(prompt string) bool {
	_, ok := s.cached(prompt)
	return ok
}

// Pending reports whether a request for prompt is in flight.
func (s *Service) Pending(prompt string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight[prompt]
}

func (s *Service) setInflight(prompt string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.inflight[prompt] = true
	} else {
		delete(s.inflight, prompt)
	}
}

func (s *Service) cached(prompt string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.results[prompt]
	return text, ok
}

func newResult(prompt, text string, cached bool) *Result {
	return &Result{
		Prompt: prompt,
		Text:   text,
		HTML:   RenderHTML(text),
		Cached: cached,
	}
}

// RenderHTML converts the model's markdown answer to HTML.
func RenderHTML(text string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(text))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return string(bytes.TrimSpace(markdown.Render(doc, renderer)))
}
