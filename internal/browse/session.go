package browse

import (
	"context"
	"errors"
	"sync"

	"github.com/pders01/newsroom/internal/refdata"
)

// Session owns the live pagination state of the search and front-page views.
// Starting a new search or front-page load supersedes the previous one;
// results of a request issued for a superseded session are discarded.
type Session struct {
	paginator *Paginator
	batcher   *Batcher

	mu        sync.Mutex
	search    *SearchSession
	searchGen uint64
	front     *FrontPageSession
	frontGen  uint64

	// sessions with a fetch in flight; a second load-more on them is refused
	searchBusy *SearchSession
	frontBusy  *FrontPageSession
}

func NewSession(p *Paginator, b *Batcher) *Session {
	return &Session{paginator: p, batcher: b}
}

// ErrSuperseded is returned when a newer session replaced the one a
// request was made for.
var ErrSuperseded = errors.New("superseded by a newer request")

// ErrBusy is returned when a load-more is requested while the previous one
// for the same session is still running.
var ErrBusy = errors.New("still loading the previous page")

// Search starts a fresh search, replacing any previous one.
func (s *Session) Search(ctx context.Context, c Criteria) (Page, error) {
	s.mu.Lock()
	s.searchGen++
	gen := s.searchGen
	s.mu.Unlock()

	sess, page, err := s.paginator.StartSearch(ctx, c)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.searchGen {
		return Page{}, ErrSuperseded
	}
	if err != nil {
		return Page{}, err
	}
	s.search = sess
	return page, nil
}

// MoreResults fetches the next page of the current search.
func (s *Session) MoreResults(ctx context.Context) (Page, error) {
	s.mu.Lock()
	sess, gen := s.search, s.searchGen
	if sess == nil {
		s.mu.Unlock()
		return Page{}, ErrNoCriteria
	}
	if s.searchBusy == sess {
		s.mu.Unlock()
		return Page{}, ErrBusy
	}
	s.searchBusy = sess
	// Work on a copy so a superseded request cannot move the live offset.
	work := *sess
	s.mu.Unlock()

	page, err := s.paginator.ContinueSearch(ctx, &work)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.searchBusy == sess {
		s.searchBusy = nil
	}
	if gen != s.searchGen || s.search != sess {
		return Page{}, ErrSuperseded
	}
	if err != nil {
		return Page{}, err
	}
	*sess = work
	return page, nil
}

// CurrentSearch returns a copy of the live search state, if any.
func (s *Session) CurrentSearch() (SearchSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.search == nil {
		return SearchSession{}, false
	}
	return *s.search, true
}

// ClearSearch discards the search state.
func (s *Session) ClearSearch() {
	s.mu.Lock()
	s.searchGen++
	s.search = nil
	s.mu.Unlock()
}

// FrontPages starts a fresh front-page session and loads its first batch.
func (s *Session) FrontPages(ctx context.Context, fs *FrontPageSession) (Batch, error) {
	s.mu.Lock()
	s.frontGen++
	gen := s.frontGen
	s.front = fs
	s.frontBusy = fs
	work := *fs
	s.mu.Unlock()

	batch, err := s.batcher.LoadInitial(ctx, &work)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frontBusy == fs {
		s.frontBusy = nil
	}
	if gen != s.frontGen {
		return Batch{}, ErrSuperseded
	}
	*fs = work
	return batch, err
}

// StartFrontPages builds a session for the filters and loads its first
// batch. Validation errors leave the current session in place.
func (s *Session) StartFrontPages(ctx context.Context, ds refdata.Dataset, country, date, source string) (Batch, error) {
	fs, err := s.batcher.StartBatch(ds, country, date, source)
	if err != nil {
		return Batch{}, err
	}
	return s.FrontPages(ctx, fs)
}

// MoreFrontPages loads the next batch of the current front-page session.
func (s *Session) MoreFrontPages(ctx context.Context) (Batch, error) {
	s.mu.Lock()
	fs, gen := s.front, s.frontGen
	if fs == nil {
		s.mu.Unlock()
		return Batch{}, ErrNoCountry
	}
	if s.frontBusy == fs {
		s.mu.Unlock()
		return Batch{}, ErrBusy
	}
	if fs.Exhausted() {
		s.mu.Unlock()
		return Batch{Append: true, Exhausted: true}, nil
	}
	s.frontBusy = fs
	work := *fs
	s.mu.Unlock()

	batch, err := s.batcher.LoadMore(ctx, &work)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frontBusy == fs {
		s.frontBusy = nil
	}
	if gen != s.frontGen || s.front != fs {
		return Batch{}, ErrSuperseded
	}
	*fs = work
	return batch, err
}

// CurrentFrontPages returns a copy of the live front-page state, if any.
func (s *Session) CurrentFrontPages() (FrontPageSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.front == nil {
		return FrontPageSession{}, false
	}
	return *s.front, true
}
