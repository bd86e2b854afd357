package dashboard

import (
	"fmt"
	"math"
	"strconv"

	"github.com/yegors/launchboard/internal/launches"
	"github.com/yegors/launchboard/pkg/logger"
)

// Aggregator turns query results into chart descriptors
type Aggregator struct {
	service           *launches.Service
	useObservedBounds bool
	logger            *logger.Logger
}

// NewAggregator creates a new aggregator. With useObservedBounds the slider
// spans the data's own payload range; queries still clamp to the fixed bounds.
func NewAggregator(service *launches.Service, useObservedBounds bool, log *logger.Logger) *Aggregator {
	return &Aggregator{
		service:           service,
		useObservedBounds: useObservedBounds,
		logger:            log.Named("dashboard"),
	}
}

// Service returns the underlying query service
func (a *Aggregator) Service() *launches.Service {
	return a.service
}

// SliderBounds returns the range the payload slider spans
func (a *Aggregator) SliderBounds() launches.PayloadRange {
	dataset := a.service.Dataset()
	if !a.useObservedBounds {
		return dataset.PayloadBounds()
	}
	observed := dataset.ObservedPayloadRange()
	fixed := dataset.PayloadBounds()
	return launches.PayloadRange{
		Low:  math.Max(fixed.Low, math.Floor(observed.Low/SliderStepKg)*SliderStepKg),
		High: math.Min(fixed.High, math.Ceil(observed.High/SliderStepKg)*SliderStepKg),
	}
}

// DefaultSelection is what a fresh session starts with: every site, full range
func (a *Aggregator) DefaultSelection() Selection {
	return Selection{Site: launches.AllSites, Payload: a.SliderBounds()}
}

// Layout describes the dropdown and slider
func (a *Aggregator) Layout() Layout {
	sites := a.service.Dataset().Sites()
	options := make([]Option, 0, len(sites)+1)
	options = append(options, Option{Label: AllSitesLabel, Value: launches.AllSites})
	for _, site := range sites {
		options = append(options, Option{Label: site, Value: site})
	}

	bounds := a.SliderBounds()
	var marks []Mark
	for v := bounds.Low; v <= bounds.High; v += SliderMarkStepKg {
		marks = append(marks, Mark{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}

	return Layout{
		Title: PageTitle,
		Dropdown: Dropdown{
			Options:     options,
			Value:       launches.AllSites,
			Placeholder: DropdownPlaceholder,
			Searchable:  true,
		},
		Slider: RangeSlider{
			Label: SliderLabel,
			Min:   bounds.Low,
			Max:   bounds.High,
			Step:  SliderStepKg,
			Marks: marks,
			Value: []float64{bounds.Low, bounds.High},
		},
	}
}

// PieFigure builds the success pie for site
func (a *Aggregator) PieFigure(site string) (*PieFigure, error) {
	slices, err := a.service.SiteSuccessSummary(site)
	if err != nil {
		return nil, err
	}

	fig := &PieFigure{Slices: make([]PieSlice, 0, len(slices))}
	if site == launches.AllSites {
		fig.Title = "Total Success Launches by Site"
	} else {
		fig.Title = fmt.Sprintf("Total Success vs. Failure for site %s", site)
	}
	for _, s := range slices {
		fig.Slices = append(fig.Slices, PieSlice{Name: s.Label, Value: s.Count})
	}

	return fig, nil
}

// ScatterFigure builds the payload-vs-outcome chart, one series per booster
// version category in order of first appearance
func (a *Aggregator) ScatterFigure(site string, payload launches.PayloadRange) (*ScatterFigure, error) {
	points, err := a.service.PayloadOutcomeFilter(site, payload)
	if err != nil {
		return nil, err
	}

	fig := &ScatterFigure{
		XAxisTitle: PayloadAxisTitle,
		YAxisTitle: OutcomeAxisTitle,
		Series:     make([]ScatterSeries, 0),
		PointCount: len(points),
	}
	if site == launches.AllSites {
		fig.Title = "Payload vs. Outcome for All Sites"
	} else {
		fig.Title = fmt.Sprintf("Payload vs. Outcome for site %s", site)
	}

	index := make(map[string]int)
	for _, p := range points {
		i, ok := index[p.BoosterVersionCategory]
		if !ok {
			i = len(fig.Series)
			index[p.BoosterVersionCategory] = i
			fig.Series = append(fig.Series, ScatterSeries{Category: p.BoosterVersionCategory})
		}
		fig.Series[i].Points = append(fig.Series[i].Points, Point{X: p.PayloadMassKg, Y: int(p.OutcomeClass)})
	}

	return fig, nil
}

// View recomputes both figures for sel
func (a *Aggregator) View(sel Selection) (*View, error) {
	pie, err := a.PieFigure(sel.Site)
	if err != nil {
		return nil, err
	}
	scatter, err := a.ScatterFigure(sel.Site, sel.Payload)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Dashboard view computed",
		logger.String("site", sel.Site),
		logger.Float64("low", sel.Payload.Low),
		logger.Float64("high", sel.Payload.High),
		logger.Int("pie_slices", len(pie.Slices)),
		logger.Int("scatter_points", scatter.PointCount),
	)

	return &View{Selection: sel, Pie: pie, Scatter: scatter}, nil
}
