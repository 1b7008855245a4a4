package browse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsroom/internal/newsapi"
	"github.com/pders01/newsroom/internal/refdata"
)

type fakeFrontPages struct {
	succeed func(id string) bool
	gate    chan struct{}

	mu          sync.Mutex
	requested   []string
	dates       []string
	countryHits int
	countryErr  error

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeFrontPages) FrontPageBySource(ctx context.Context, id, date string) (newsapi.FrontPage, error) {
	if f.gate != nil {
		<-f.gate
	}
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)

	f.mu.Lock()
	f.requested = append(f.requested, id)
	f.dates = append(f.dates, date)
	f.mu.Unlock()

	if f.succeed != nil && f.succeed(id) {
		return newsapi.FrontPage{ImageURL: "https://img/" + id + ".jpg"}, nil
	}
	return newsapi.FrontPage{}, &newsapi.APIError{StatusCode: 400}
}

func (f *fakeFrontPages) FrontPageByCountry(ctx context.Context, country, date string) (newsapi.FrontPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countryHits++
	if f.countryErr != nil {
		return newsapi.FrontPage{}, f.countryErr
	}
	return newsapi.FrontPage{ImageURL: "https://img/country.jpg", Language: "en"}, nil
}

func identifiers(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("src-%02d", i)
	}
	return ids
}

func index(id string) int {
	var i int
	_, _ = fmt.Sscanf(id, "src-%d", &i)
	return i
}

func listing(country string, ids []string) refdata.Dataset {
	var b strings.Builder
	b.WriteString("name\tcountry\tlang\tid\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "Paper %s\t%s\ten\t%s\n", id, country, id)
	}
	return refdata.Parse(b.String())
}

var fixedNow = func() time.Time { return time.Date(2025, time.May, 20, 12, 0, 0, 0, time.Local) }

func TestNextBatch_CollectsSparseSuccesses(t *testing.T) {
	ok := map[int]bool{0: true, 3: true, 7: true, 15: true, 20: true}
	client := &fakeFrontPages{succeed: func(id string) bool { return ok[index(id)] }}
	b := NewBatcher(client, WithClock(fixedNow))

	s := &FrontPageSession{Country: "us", Date: "2025-05-20", Identifiers: identifiers(23)}
	pages, err := b.NextBatch(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, pages, 5)
	assert.Equal(t, 23, s.Cursor)
	assert.True(t, s.Exhausted())
	assert.Len(t, client.requested, 23, "every identifier attempted exactly once")
	assert.LessOrEqual(t, client.maxInFlight.Load(), int32(6))

	got := make([]string, len(pages))
	for i, p := range pages {
		got[i] = p.Identifier
	}
	assert.Equal(t, []string{"src-00", "src-03", "src-07", "src-15", "src-20"}, got)
}

func TestNextBatch_StopsOnceTargetReached(t *testing.T) {
	client := &fakeFrontPages{succeed: func(id string) bool { return index(id) < 10 }}
	b := NewBatcher(client)

	s := &FrontPageSession{Country: "us", Date: "2025-05-20", Identifiers: identifiers(50)}
	pages, err := b.NextBatch(context.Background(), s)
	require.NoError(t, err)

	assert.Len(t, pages, 10)
	assert.Equal(t, 12, s.Cursor)
	assert.Equal(t, 38, s.Remaining())
	assert.False(t, s.Exhausted())

	// The next call resumes at the cursor and repeats nothing.
	more, err := b.NextBatch(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, more)
	assert.True(t, s.Exhausted())
	assert.Len(t, client.requested, 50)
}

func TestNextBatch_FieldsDefaultFromRequest(t *testing.T) {
	client := &fakeFrontPages{succeed: func(string) bool { return true }}
	b := NewBatcher(client)

	s := &FrontPageSession{Country: "fr", Date: "2025-05-01", Identifiers: []string{"le-monde"}}
	pages, err := b.NextBatch(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	assert.Equal(t, FrontPage{
		URL:        "https://img/le-monde.jpg",
		SourceName: "le-monde",
		Identifier: "le-monde",
		Country:    "fr",
		Date:       "2025-05-01",
	}, pages[0])
}

func TestNextBatch_CancelledContext(t *testing.T) {
	client := &fakeFrontPages{}
	b := NewBatcher(client)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &FrontPageSession{Country: "us", Identifiers: identifiers(8)}
	_, err := b.NextBatch(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Cursor)
}

func TestStartBatch(t *testing.T) {
	ds := listing("us", identifiers(3))
	b := NewBatcher(&fakeFrontPages{}, WithClock(fixedNow))

	s, err := b.StartBatch(ds, "US", "2099-01-01", "")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-20", s.Date, "future dates are clamped to today")
	assert.Equal(t, "us", s.Country)
	assert.Equal(t, identifiers(3), s.Identifiers)

	s, err = b.StartBatch(ds, "us", "2025-05-01", "src-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"src-01"}, s.Identifiers)
	assert.Equal(t, "2025-05-01", s.Date)

	_, err = b.StartBatch(ds, "", "", "")
	assert.ErrorIs(t, err, ErrNoCountry)

	_, err = b.StartBatch(ds, "jp", "", "")
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestFutureDateClampedBeforeRequest(t *testing.T) {
	client := &fakeFrontPages{succeed: func(string) bool { return true }}
	b := NewBatcher(client, WithClock(fixedNow))

	s, err := b.StartBatch(listing("us", identifiers(2)), "us", "2025-05-21", "")
	require.NoError(t, err)
	_, err = b.LoadInitial(context.Background(), s)
	require.NoError(t, err)

	for _, d := range client.dates {
		assert.Equal(t, "2025-05-20", d)
	}
}

func TestLoadInitial_FallbackOnlyOnce(t *testing.T) {
	client := &fakeFrontPages{succeed: func(string) bool { return false }}
	b := NewBatcher(client)

	s := &FrontPageSession{Country: "us", Date: "2025-05-20", Identifiers: identifiers(4)}
	batch, err := b.LoadInitial(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, batch.Pages, 1)
	assert.True(t, batch.Fallback)
	assert.True(t, batch.Exhausted)
	assert.Equal(t, "Unknown Source", batch.Pages[0].SourceName)
	assert.Equal(t, "us", batch.Pages[0].Country)
	assert.Equal(t, "2025-05-20", batch.Pages[0].Date)
	assert.True(t, s.FallbackUsed)

	more, err := b.LoadMore(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, more.Pages)
	assert.Equal(t, 1, client.countryHits)
}

func TestLoadInitial_NoFallbackWhenSomethingFound(t *testing.T) {
	client := &fakeFrontPages{succeed: func(id string) bool { return id == "src-02" }}
	b := NewBatcher(client)

	s := &FrontPageSession{Country: "us", Date: "2025-05-20", Identifiers: identifiers(3)}
	batch, err := b.LoadInitial(context.Background(), s)
	require.NoError(t, err)
	assert.Len(t, batch.Pages, 1)
	assert.False(t, batch.Fallback)
	assert.Equal(t, 0, client.countryHits)
}

func TestLoadInitial_SingleSourceFilterFailing(t *testing.T) {
	client := &fakeFrontPages{countryErr: errors.New("nothing")}
	b := NewBatcher(client, WithClock(fixedNow))

	s, err := b.StartBatch(listing("us", identifiers(5)), "us", "", "src-03")
	require.NoError(t, err)

	batch, err := b.LoadInitial(context.Background(), s)
	require.NoError(t, err, "fallback failures are not reported")
	assert.Empty(t, batch.Pages)
	assert.True(t, batch.Exhausted)
	assert.Equal(t, 1, client.countryHits)
}

func TestLoadMore_NeverFallsBack(t *testing.T) {
	client := &fakeFrontPages{succeed: func(id string) bool { return index(id) < 10 }}
	b := NewBatcher(client)

	s := &FrontPageSession{Country: "us", Date: "2025-05-20", Identifiers: identifiers(30)}
	first, err := b.LoadInitial(context.Background(), s)
	require.NoError(t, err)
	assert.Len(t, first.Pages, 10)

	more, err := b.LoadMore(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, more.Pages)
	assert.True(t, more.Append)
	assert.True(t, more.Exhausted)
	assert.Equal(t, 0, client.countryHits)
}

func TestSession_FrontPages(t *testing.T) {
	client := &fakeFrontPages{succeed: func(id string) bool { return index(id)%2 == 0 }}
	b := NewBatcher(client, WithTarget(2), WithConcurrency(2))
	session := NewSession(nil, b)
	ctx := context.Background()

	_, err := session.MoreFrontPages(ctx)
	assert.ErrorIs(t, err, ErrNoCountry)

	fs := &FrontPageSession{Country: "us", Date: "2025-05-20", Identifiers: identifiers(6)}
	batch, err := session.FrontPages(ctx, fs)
	require.NoError(t, err)
	assert.Len(t, batch.Pages, 2)

	cur, ok := session.CurrentFrontPages()
	require.True(t, ok)
	assert.Equal(t, 4, cur.Cursor)

	batch, err = session.MoreFrontPages(ctx)
	require.NoError(t, err)
	assert.Len(t, batch.Pages, 1)
	assert.True(t, batch.Exhausted)

	batch, err = session.MoreFrontPages(ctx)
	require.NoError(t, err)
	assert.True(t, batch.Exhausted)
	assert.Empty(t, batch.Pages)
}

func TestSession_StartFrontPages(t *testing.T) {
	client := &fakeFrontPages{succeed: func(id string) bool { return true }}
	b := NewBatcher(client, WithTarget(3), WithConcurrency(3), WithClock(fixedNow))
	session := NewSession(nil, b)
	ds := listing("fr", identifiers(5))
	ctx := context.Background()

	_, err := session.StartFrontPages(ctx, ds, "", "", "")
	assert.ErrorIs(t, err, ErrNoCountry)
	_, ok := session.CurrentFrontPages()
	assert.False(t, ok, "validation failure starts nothing")

	batch, err := session.StartFrontPages(ctx, ds, "fr", "2099-01-01", "")
	require.NoError(t, err)
	assert.Len(t, batch.Pages, 3)
	assert.False(t, batch.Append)

	cur, ok := session.CurrentFrontPages()
	require.True(t, ok)
	assert.Equal(t, "2025-05-20", cur.Date)
	assert.Equal(t, 3, cur.Cursor)

	batch, err = session.StartFrontPages(ctx, ds, "fr", "2025-05-01", "src-04")
	require.NoError(t, err)
	require.Len(t, batch.Pages, 1)
	assert.Equal(t, "src-04", batch.Pages[0].Identifier)
}

func TestSession_OverlappingMoreFrontPagesRefused(t *testing.T) {
	client := &fakeFrontPages{succeed: func(id string) bool { return true }}
	session := NewSession(nil, NewBatcher(client, WithTarget(2), WithConcurrency(2)))
	ctx := context.Background()

	fs := &FrontPageSession{Country: "us", Date: "2025-05-20", Identifiers: identifiers(10)}
	_, err := session.FrontPages(ctx, fs)
	require.NoError(t, err)

	client.gate = make(chan struct{})
	type result struct {
		batch Batch
		err   error
	}
	done := make(chan result, 1)
	go func() {
		b, err := session.MoreFrontPages(ctx)
		done <- result{b, err}
	}()
	require.Eventually(t, func() bool {
		session.mu.Lock()
		defer session.mu.Unlock()
		return session.frontBusy != nil
	}, time.Second, time.Millisecond)

	_, err = session.MoreFrontPages(ctx)
	assert.ErrorIs(t, err, ErrBusy)

	close(client.gate)
	first := <-done
	require.NoError(t, first.err)
	require.Len(t, first.batch.Pages, 2)

	client.mu.Lock()
	assert.ElementsMatch(t, []string{"src-00", "src-01", "src-02", "src-03"}, client.requested,
		"no source is requested twice")
	client.mu.Unlock()

	cur, ok := session.CurrentFrontPages()
	require.True(t, ok)
	assert.Equal(t, 4, cur.Cursor)

	next, err := session.MoreFrontPages(ctx)
	require.NoError(t, err)
	require.Len(t, next.Pages, 2)
	assert.Equal(t, "src-04", next.Pages[0].Identifier)
}

func TestSession_MoreFrontPagesDuringInitialLoad(t *testing.T) {
	client := &fakeFrontPages{succeed: func(id string) bool { return true }, gate: make(chan struct{})}
	session := NewSession(nil, NewBatcher(client, WithTarget(2), WithConcurrency(2)))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := session.FrontPages(ctx, &FrontPageSession{Country: "us", Date: "2025-05-20", Identifiers: identifiers(6)})
		done <- err
	}()
	require.Eventually(t, func() bool {
		session.mu.Lock()
		defer session.mu.Unlock()
		return session.frontBusy != nil
	}, time.Second, time.Millisecond)

	_, err := session.MoreFrontPages(ctx)
	assert.ErrorIs(t, err, ErrBusy)

	close(client.gate)
	require.NoError(t, <-done)
	cur, _ := session.CurrentFrontPages()
	assert.Equal(t, 2, cur.Cursor)
}
