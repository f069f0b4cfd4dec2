package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ecstudy/shopctl/internal/model"
)

// Suggestion fetch parameters: the debounce settles on the final query, the
// 2-character gate decides whether it fires at all.
const (
	SuggestDebounce = 300 * time.Millisecond
	SuggestMinChars = 2
)

// Suggester debounces search-suggestion fetches. In-flight requests are not
// cancelled; instead every input bumps a sequence number and a response is
// delivered only while its sequence is still current, so a late response for
// an abandoned query can never populate stale suggestions.
type Suggester struct {
	catalog *CatalogService
	log     *zap.Logger
	deliver func(query string, products []model.Product)

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewSuggester wires deliver as the sink for settled, still-current results.
func NewSuggester(catalog *CatalogService, deliver func(string, []model.Product), log *zap.Logger) *Suggester {
	if log == nil {
		log = zap.NewNop()
	}
	return &Suggester{catalog: catalog, deliver: deliver, log: log}
}

// Input feeds one keystroke's worth of query. Each call invalidates any
// pending fetch and any in-flight response; a fetch is scheduled only when
// the query still meets the character gate after the debounce delay.
func (s *Suggester) Input(query string) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if len([]rune(query)) < SuggestMinChars {
		return
	}
	seq := s.seq
	s.timer = time.AfterFunc(SuggestDebounce, func() { s.fetch(seq, query) })
}

// Stop invalidates everything pending and in flight, for navigation away.
func (s *Suggester) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Suggester) fetch(seq uint64, query string) {
	s.mu.Lock()
	current := s.seq == seq
	s.mu.Unlock()
	if !current {
		return
	}

	products, err := s.catalog.Products(context.Background(), query)
	if err != nil {
		s.log.Debug("suggestion fetch failed", zap.String("query", query), zap.Error(err))
		return
	}

	s.mu.Lock()
	current = s.seq == seq
	s.mu.Unlock()
	if !current {
		return
	}
	s.deliver(query, products)
}
