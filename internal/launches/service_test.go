package launches

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/yegors/launchboard/pkg/logger"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []observation
}

type observation struct {
	query  string
	cached bool
	failed bool
}

func (o *recordingObserver) ObserveQuery(query string, cached bool, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, observation{query: query, cached: cached, failed: err != nil})
}

func newTestService(t *testing.T, cacheSize int) (*Service, *recordingObserver) {
	t.Helper()
	obs := &recordingObserver{}
	svc, err := NewService(launchTable(t), cacheSize, obs, logger.Wrap(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return svc, obs
}

func TestServiceMemoisesSummary(t *testing.T) {
	svc, obs := newTestService(t, 16)

	first, err := svc.SiteSuccessSummary("KSC LC-39A")
	require.NoError(t, err)
	second, err := svc.SiteSuccessSummary("KSC LC-39A")
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.Equal(t, []observation{
		{query: QuerySiteSummary, cached: false},
		{query: QuerySiteSummary, cached: true},
	}, obs.calls)
}

func TestServiceCachedResultsAreCopies(t *testing.T) {
	svc, _ := newTestService(t, 16)

	first, err := svc.SiteSuccessSummary("KSC LC-39A")
	require.NoError(t, err)
	first[0].Count = 999
	*first[0].Outcome = OutcomeFailure

	second, err := svc.SiteSuccessSummary("KSC LC-39A")
	require.NoError(t, err)
	require.Equal(t, 4, second[0].Count)
	require.Equal(t, OutcomeSuccess, *second[0].Outcome)

	points, err := svc.PayloadOutcomeFilter(AllSites, FixedPayloadBounds())
	require.NoError(t, err)
	points[0].PayloadMassKg = -1

	again, err := svc.PayloadOutcomeFilter(AllSites, FixedPayloadBounds())
	require.NoError(t, err)
	require.Equal(t, 0.0, again[0].PayloadMassKg)
}

func TestServiceSharesEntryForClampedRanges(t *testing.T) {
	svc, obs := newTestService(t, 16)

	_, err := svc.PayloadOutcomeFilter(AllSites, PayloadRange{Low: -50, High: 20000})
	require.NoError(t, err)
	_, err = svc.PayloadOutcomeFilter(AllSites, PayloadRange{Low: 0, High: 10000})
	require.NoError(t, err)

	require.Len(t, obs.calls, 2)
	require.True(t, obs.calls[1].cached)
}

func TestServiceErrorsAreNotCached(t *testing.T) {
	svc, obs := newTestService(t, 16)

	for i := 0; i < 2; i++ {
		_, err := svc.SiteSuccessSummary("nowhere")
		require.ErrorIs(t, err, ErrUnknownSite)
	}
	require.Equal(t, []observation{
		{query: QuerySiteSummary, failed: true},
		{query: QuerySiteSummary, failed: true},
	}, obs.calls)
}

func TestServiceWithoutCache(t *testing.T) {
	svc, obs := newTestService(t, 0)

	for i := 0; i < 2; i++ {
		_, err := svc.PayloadOutcomeFilter("VAFB SLC-4E", FixedPayloadBounds())
		require.NoError(t, err)
	}
	for _, c := range obs.calls {
		require.False(t, c.cached)
	}
}

func TestServiceConcurrentReaders(t *testing.T) {
	svc, _ := newTestService(t, 4)
	sites := append([]string{AllSites}, svc.Dataset().Sites()...)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			site := sites[i%len(sites)]
			_, err := svc.SiteSuccessSummary(site)
			assert.NoError(t, err)
			_, err = svc.PayloadOutcomeFilter(site, PayloadRange{Low: float64(i * 100), High: 10000})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}

func TestNewServiceRequiresDataset(t *testing.T) {
	_, err := NewService(nil, 8, nil, logger.Nop())
	require.Error(t, err)
}
