package launches

import (
	"fmt"
	"math"
	"sort"
)

// SiteSuccessSummary counts outcomes for the pie chart.
//
// With site == AllSites it returns one slice per site holding that site's
// number of successful launches; sites without a success are left out rather
// than reported as zero. With a concrete site it returns one slice per outcome
// class that occurs at that site, largest count first.
func SiteSuccessSummary(d *Dataset, site string) ([]SummarySlice, error) {
	if err := checkSite(d, site); err != nil {
		return nil, err
	}

	if site == AllSites {
		successes := make(map[string]int, len(d.sites))
		for _, rec := range d.records {
			if rec.OutcomeClass == OutcomeSuccess {
				successes[rec.LaunchSite]++
			}
		}

		slices := make([]SummarySlice, 0, len(successes))
		for _, s := range d.sites {
			if n := successes[s]; n > 0 {
				slices = append(slices, SummarySlice{Label: s, Count: n})
			}
		}
		return slices, nil
	}

	var counts [2]int
	for _, rec := range d.records {
		if rec.LaunchSite == site {
			counts[rec.OutcomeClass]++
		}
	}

	slices := make([]SummarySlice, 0, 2)
	for _, outcome := range []Outcome{OutcomeSuccess, OutcomeFailure} {
		if counts[outcome] == 0 {
			continue
		}
		o := outcome
		slices = append(slices, SummarySlice{Label: o.String(), Count: counts[o], Outcome: &o})
	}
	// Stable keeps success ahead of failure on ties
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Count > slices[j].Count
	})
	return slices, nil
}

// PayloadOutcomeFilter returns the records whose payload lies in r (bounds
// included), restricted to site unless site == AllSites, in dataset order.
//
// Bounds outside [0, 10000] are clamped. An inverted range matches nothing.
func PayloadOutcomeFilter(d *Dataset, site string, r PayloadRange) ([]ScatterPoint, error) {
	if err := checkSite(d, site); err != nil {
		return nil, err
	}
	r, err := ClampRange(r)
	if err != nil {
		return nil, err
	}

	points := make([]ScatterPoint, 0)
	if r.Low > r.High {
		return points, nil
	}
	for _, rec := range d.records {
		if !r.Contains(rec.PayloadMassKg) {
			continue
		}
		if site != AllSites && rec.LaunchSite != site {
			continue
		}
		points = append(points, ScatterPoint{
			PayloadMassKg:          rec.PayloadMassKg,
			OutcomeClass:           rec.OutcomeClass,
			BoosterVersionCategory: rec.BoosterVersionCategory,
		})
	}
	return points, nil
}

// ClampRange pins both ends of r into the fixed payload bounds. NaN ends are
// rejected. The order of Low and High is preserved, so an inverted range stays
// inverted.
func ClampRange(r PayloadRange) (PayloadRange, error) {
	if math.IsNaN(r.Low) || math.IsNaN(r.High) {
		return PayloadRange{}, fmt.Errorf("%w: [%v, %v]", ErrInvalidRange, r.Low, r.High)
	}
	clamp := func(v float64) float64 {
		return math.Max(MinPayloadKg, math.Min(MaxPayloadKg, v))
	}
	return PayloadRange{Low: clamp(r.Low), High: clamp(r.High)}, nil
}

func checkSite(d *Dataset, site string) error {
	if site == AllSites || d.HasSite(site) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownSite, site)
}
