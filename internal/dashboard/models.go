package dashboard

import "github.com/yegors/launchboard/internal/launches"

// Page text
const (
	PageTitle           = "SpaceX Launch Records Dashboard"
	AllSitesLabel       = "All Sites"
	DropdownPlaceholder = "Select a Launch Site here"
	SliderLabel         = "Payload range (Kg):"
	PayloadAxisTitle    = "Payload Mass (kg)"
	OutcomeAxisTitle    = "class"
	SliderStepKg        = 1000
	SliderMarkStepKg    = 2500
)

// Selection is the state of the two dashboard controls
type Selection struct {
	Site    string                `json:"site"`
	Payload launches.PayloadRange `json:"payload"`
}

// Option is one dropdown entry
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Dropdown describes the site selector
type Dropdown struct {
	Options     []Option `json:"options"`
	Value       string   `json:"value"`
	Placeholder string   `json:"placeholder"`
	Searchable  bool     `json:"searchable"`
}

// Mark is one labelled tick on the payload slider
type Mark struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// RangeSlider describes the payload range control
type RangeSlider struct {
	Label string    `json:"label"`
	Min   float64   `json:"min"`
	Max   float64   `json:"max"`
	Step  float64   `json:"step"`
	Marks []Mark    `json:"marks"`
	Value []float64 `json:"value"`
}

// Layout is everything a client needs to draw the controls
type Layout struct {
	Title    string      `json:"title"`
	Dropdown Dropdown    `json:"dropdown"`
	Slider   RangeSlider `json:"slider"`
}

// PieSlice is one slice of the success pie
type PieSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// PieFigure is the success pie chart
type PieFigure struct {
	Title  string     `json:"title"`
	Slices []PieSlice `json:"slices"`
}

// Point is one scatter marker
type Point struct {
	X float64 `json:"x"`
	Y int     `json:"y"`
}

// ScatterSeries holds the points of one booster version category (one colour)
type ScatterSeries struct {
	Category string  `json:"category"`
	Points   []Point `json:"points"`
}

// ScatterFigure is the payload-vs-outcome chart
type ScatterFigure struct {
	Title      string          `json:"title"`
	XAxisTitle string          `json:"x_axis_title"`
	YAxisTitle string          `json:"y_axis_title"`
	Series     []ScatterSeries `json:"series"`
	PointCount int             `json:"point_count"`
}

// View is the full recomputed dashboard for one selection
type View struct {
	Selection Selection      `json:"selection"`
	Pie       *PieFigure     `json:"pie"`
	Scatter   *ScatterFigure `json:"scatter"`
}
