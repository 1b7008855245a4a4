package browse

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pders01/newsroom/internal/debuglog"
	"github.com/pders01/newsroom/internal/newsapi"
	"github.com/pders01/newsroom/internal/refdata"
)

const (
	// DefaultFrontPageTarget is the number of successful fetches a batch aims for.
	DefaultFrontPageTarget = 10
	// DefaultFrontPageConcurrency bounds the requests in flight per window.
	DefaultFrontPageConcurrency = 6

	unknownSource = "Unknown Source"
)

var (
	ErrNoCountry = &newsapi.ValidationError{Msg: "Please select a country first."}
	ErrNoSources = &newsapi.ValidationError{Msg: "No newspapers configured for this country."}
)

// FrontPageFetcher retrieves single front pages.
type FrontPageFetcher interface {
	FrontPageBySource(ctx context.Context, identifier, date string) (newsapi.FrontPage, error)
	FrontPageByCountry(ctx context.Context, country, date string) (newsapi.FrontPage, error)
}

// FrontPage is one fetched cover image. Fields the API left empty are taken
// from the request.
type FrontPage struct {
	URL        string
	SourceName string
	Identifier string
	Country    string
	Date       string
	Language   string
}

// FrontPageSession tracks how far through a country's sources browsing has
// progressed. Cursor counts attempted identifiers, not successes.
type FrontPageSession struct {
	Country     string
	Date        string
	Identifiers []string
	Cursor      int

	// FallbackUsed is set once the country-level lookup has been tried.
	FallbackUsed bool
	loaded       bool
}

// Exhausted reports whether every identifier has been attempted.
func (s *FrontPageSession) Exhausted() bool {
	return s.Cursor >= len(s.Identifiers)
}

// Remaining is the number of identifiers not yet attempted.
func (s *FrontPageSession) Remaining() int {
	return len(s.Identifiers) - s.Cursor
}

// Batch is the outcome of one load.
type Batch struct {
	Pages     []FrontPage
	Append    bool
	Exhausted bool
	// Fallback is true when Pages came from the country-level lookup.
	Fallback bool
}

// Batcher fans out per-source front-page requests in bounded windows.
type Batcher struct {
	client      FrontPageFetcher
	target      int
	concurrency int
	now         Clock
}

// BatcherOption configures a Batcher.
type BatcherOption func(*Batcher)

func WithTarget(n int) BatcherOption {
	return func(b *Batcher) {
		if n > 0 {
			b.target = n
		}
	}
}

func WithConcurrency(n int) BatcherOption {
	return func(b *Batcher) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

func WithClock(c Clock) BatcherOption {
	return func(b *Batcher) {
		if c != nil {
			b.now = c
		}
	}
}

func NewBatcher(client FrontPageFetcher, opts ...BatcherOption) *Batcher {
	b := &Batcher{
		client:      client,
		target:      DefaultFrontPageTarget,
		concurrency: DefaultFrontPageConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// StartBatch creates a session for a country and date. A date after today,
// or an empty date, becomes today. With a source filter only that source is
// attempted, otherwise every source of the country in dataset order.
func (b *Batcher) StartBatch(ds refdata.Dataset, country, date, sourceFilter string) (*FrontPageSession, error) {
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		return nil, ErrNoCountry
	}

	clamped, err := ClampDate(date, b.now())
	if err != nil {
		return nil, &newsapi.ValidationError{Msg: err.Error()}
	}

	var ids []string
	if sourceFilter = strings.TrimSpace(sourceFilter); sourceFilter != "" {
		ids = []string{sourceFilter}
	} else {
		ids = ds.Identifiers(country)
	}
	if len(ids) == 0 {
		return nil, ErrNoSources
	}

	return &FrontPageSession{Country: country, Date: clamped, Identifiers: ids}, nil
}

// NextBatch dispatches windows of up to the concurrency limit until the
// target number of successes is reached or the identifiers run out. The
// cursor advances by the window size before its requests are awaited, and
// every request in a window is awaited before the next window starts.
// Per-source failures are dropped; the only error is a cancelled context.
func (b *Batcher) NextBatch(ctx context.Context, s *FrontPageSession) ([]FrontPage, error) {
	var results []FrontPage

	for !s.Exhausted() && len(results) < b.target {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		start := s.Cursor
		end := min(start+b.concurrency, len(s.Identifiers))
		window := s.Identifiers[start:end]
		s.Cursor = end

		slots := make([]*FrontPage, len(window))
		var g errgroup.Group
		for i, id := range window {
			i, id := i, id
			g.Go(func() error {
				slots[i] = b.fetchOne(ctx, s, id)
				return nil
			})
		}
		_ = g.Wait()

		for _, fp := range slots {
			if fp != nil {
				results = append(results, *fp)
			}
		}
	}

	return results, ctx.Err()
}

func (b *Batcher) fetchOne(ctx context.Context, s *FrontPageSession, id string) *FrontPage {
	fp, err := b.client.FrontPageBySource(ctx, id, s.Date)
	if err != nil {
		debuglog.WithFields(map[string]interface{}{"source": id}).Debugf("front page unavailable: %v", err)
		return nil
	}
	return &FrontPage{
		URL:        fp.ImageURL,
		SourceName: orDefault(fp.Name, id),
		Identifier: id,
		Country:    orDefault(fp.Country, s.Country),
		Date:       orDefault(fp.Date, s.Date),
		Language:   fp.Language,
	}
}

// LoadInitial runs the first batch of a session. When it yields nothing the
// single country-level lookup is tried; its failure is not reported.
func (b *Batcher) LoadInitial(ctx context.Context, s *FrontPageSession) (Batch, error) {
	pages, err := b.NextBatch(ctx, s)
	first := !s.loaded
	s.loaded = true
	if err != nil {
		return Batch{Pages: pages, Exhausted: s.Exhausted()}, err
	}

	batch := Batch{Pages: pages, Exhausted: s.Exhausted()}
	if len(pages) == 0 && first && !s.FallbackUsed {
		s.FallbackUsed = true
		if fp, ok := b.fallback(ctx, s); ok {
			batch.Pages = []FrontPage{fp}
			batch.Fallback = true
		}
	}
	return batch, nil
}

// LoadMore runs a follow-up batch. The country-level lookup is never tried here.
func (b *Batcher) LoadMore(ctx context.Context, s *FrontPageSession) (Batch, error) {
	s.loaded = true
	pages, err := b.NextBatch(ctx, s)
	return Batch{Pages: pages, Append: true, Exhausted: s.Exhausted()}, err
}

func (b *Batcher) fallback(ctx context.Context, s *FrontPageSession) (FrontPage, bool) {
	fp, err := b.client.FrontPageByCountry(ctx, s.Country, s.Date)
	if err != nil {
		debuglog.WithFields(map[string]interface{}{"country": s.Country}).Debugf("country front page unavailable: %v", err)
		return FrontPage{}, false
	}
	return FrontPage{
		URL:        fp.ImageURL,
		SourceName: orDefault(fp.Name, unknownSource),
		Country:    orDefault(fp.Country, s.Country),
		Date:       orDefault(fp.Date, s.Date),
		Language:   fp.Language,
	}, true
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
