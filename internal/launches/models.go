package launches

import (
	"errors"
	"strconv"
)

// AllSites is the site selector value that disables site filtering
const AllSites = "ALL"

// Fixed payload bounds exposed to the dashboard regardless of the data range
const (
	MinPayloadKg = 0.0
	MaxPayloadKg = 10000.0
)

var (
	// ErrUnknownSite is returned when a query names a site absent from the dataset
	ErrUnknownSite = errors.New("unknown launch site")
	// ErrInvalidRange is returned for payload ranges that cannot be compared (NaN)
	ErrInvalidRange = errors.New("invalid payload range")
	// ErrEmptyDataset is returned when a load produces no records
	ErrEmptyDataset = errors.New("dataset has no records")
	// ErrMissingColumn is returned when the source lacks a required column
	ErrMissingColumn = errors.New("missing required column")
)

// Outcome is the binary mission outcome of a launch
type Outcome int

const (
	OutcomeFailure Outcome = 0
	OutcomeSuccess Outcome = 1
)

// String renders the outcome the way the source table encodes it ("0" or "1")
func (o Outcome) String() string {
	return strconv.Itoa(int(o))
}

// LaunchRecord is one row of the launch table
type LaunchRecord struct {
	LaunchSite             string  `json:"launch_site"`
	PayloadMassKg          float64 `json:"payload_mass_kg"`
	BoosterVersionCategory string  `json:"booster_version_category"`
	OutcomeClass           Outcome `json:"class"`
}

// PayloadRange is an inclusive payload mass interval in kilograms
type PayloadRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether mass lies within the range, bounds included
func (r PayloadRange) Contains(mass float64) bool {
	return r.Low <= mass && mass <= r.High
}

// FixedPayloadBounds returns the [0, 10000] bounds the dashboard always exposes
func FixedPayloadBounds() PayloadRange {
	return PayloadRange{Low: MinPayloadKg, High: MaxPayloadKg}
}

// SummarySlice is one pie slice produced by SiteSuccessSummary.
// Label is a site name in ALL mode and the outcome class ("1"/"0") otherwise.
type SummarySlice struct {
	Label   string   `json:"label"`
	Count   int      `json:"count"`
	Outcome *Outcome `json:"outcome,omitempty"`
}

// ScatterPoint is one row produced by PayloadOutcomeFilter
type ScatterPoint struct {
	PayloadMassKg          float64 `json:"payload_mass_kg"`
	OutcomeClass           Outcome `json:"class"`
	BoosterVersionCategory string  `json:"booster_version_category"`
}
