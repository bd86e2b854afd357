package launches

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/yegors/launchboard/pkg/logger"
)

// Query names reported to observers
const (
	QuerySiteSummary   = "site_success_summary"
	QueryPayloadFilter = "payload_outcome_filter"
)

// Observer receives per-query timing; implementations must be safe for
// concurrent use
type Observer interface {
	ObserveQuery(query string, cached bool, duration time.Duration, err error)
}

type scatterKey struct {
	site string
	rng  PayloadRange
}

// Service answers dashboard queries over one Dataset and memoises results.
// The dataset never changes, so cached entries never go stale.
type Service struct {
	dataset   *Dataset
	summaries *lru.Cache[string, []SummarySlice]
	scatters  *lru.Cache[scatterKey, []ScatterPoint]
	observer  Observer
	logger    *logger.Logger
}

// NewService creates a query service. cacheSize <= 0 disables memoisation.
func NewService(dataset *Dataset, cacheSize int, observer Observer, log *logger.Logger) (*Service, error) {
	if dataset == nil {
		return nil, fmt.Errorf("dataset is required")
	}

	s := &Service{
		dataset:  dataset,
		observer: observer,
		logger:   log.Named("launches-service"),
	}

	if cacheSize > 0 {
		var err error
		if s.summaries, err = lru.New[string, []SummarySlice](cacheSize); err != nil {
			return nil, fmt.Errorf("failed to create summary cache: %w", err)
		}
		if s.scatters, err = lru.New[scatterKey, []ScatterPoint](cacheSize); err != nil {
			return nil, fmt.Errorf("failed to create scatter cache: %w", err)
		}
	}

	s.logger.Debug("Query service ready",
		logger.Int("records", dataset.Len()),
		logger.Int("sites", len(dataset.sites)),
		logger.Int("cache_size", cacheSize),
	)

	return s, nil
}

// Dataset returns the underlying immutable dataset
func (s *Service) Dataset() *Dataset {
	return s.dataset
}

// SiteSuccessSummary is the memoised form of the package-level function
func (s *Service) SiteSuccessSummary(site string) ([]SummarySlice, error) {
	start := time.Now()

	if s.summaries != nil {
		if cached, ok := s.summaries.Get(site); ok {
			s.observe(QuerySiteSummary, true, start, nil)
			return cloneSlices(cached), nil
		}
	}

	slices, err := SiteSuccessSummary(s.dataset, site)
	s.observe(QuerySiteSummary, false, start, err)
	if err != nil {
		s.logger.Debug("Summary query rejected", logger.String("site", site), logger.Error(err))
		return nil, err
	}

	if s.summaries != nil {
		s.summaries.Add(site, cloneSlices(slices))
	}
	return slices, nil
}

// PayloadOutcomeFilter is the memoised form of the package-level function.
// The cache key uses the clamped range so equivalent requests share an entry.
func (s *Service) PayloadOutcomeFilter(site string, r PayloadRange) ([]ScatterPoint, error) {
	start := time.Now()

	clamped, err := ClampRange(r)
	if err != nil {
		s.observe(QueryPayloadFilter, false, start, err)
		return nil, err
	}
	key := scatterKey{site: site, rng: clamped}

	if s.scatters != nil {
		if cached, ok := s.scatters.Get(key); ok {
			s.observe(QueryPayloadFilter, true, start, nil)
			return clonePoints(cached), nil
		}
	}

	points, err := PayloadOutcomeFilter(s.dataset, site, clamped)
	s.observe(QueryPayloadFilter, false, start, err)
	if err != nil {
		s.logger.Debug("Payload query rejected",
			logger.String("site", site),
			logger.Float64("low", r.Low),
			logger.Float64("high", r.High),
			logger.Error(err),
		)
		return nil, err
	}

	if s.scatters != nil {
		s.scatters.Add(key, clonePoints(points))
	}
	return points, nil
}

func (s *Service) observe(query string, cached bool, start time.Time, err error) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveQuery(query, cached, time.Since(start), err)
}

func cloneSlices(in []SummarySlice) []SummarySlice {
	out := make([]SummarySlice, len(in))
	for i, sl := range in {
		out[i] = sl
		if sl.Outcome != nil {
			o := *sl.Outcome
			out[i].Outcome = &o
		}
	}
	return out
}

func clonePoints(in []ScatterPoint) []ScatterPoint {
	out := make([]ScatterPoint, len(in))
	copy(out, in)
	return out
}
