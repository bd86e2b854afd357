package launches

import (
	"fmt"
	"math"
)

// Dataset is the immutable in-memory launch table. It is built once at
// startup and shared by every reader without locking.
type Dataset struct {
	records  []LaunchRecord
	sites    []string
	siteSet  map[string]struct{}
	observed PayloadRange
}

// NewDataset validates records and derives the site list (first-occurrence
// order) and the observed payload range. The slice is copied.
func NewDataset(records []LaunchRecord) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	d := &Dataset{
		records:  make([]LaunchRecord, len(records)),
		siteSet:  make(map[string]struct{}),
		observed: PayloadRange{Low: math.Inf(1), High: math.Inf(-1)},
	}
	copy(d.records, records)

	for i, rec := range d.records {
		if err := validateRecord(rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, seen := d.siteSet[rec.LaunchSite]; !seen {
			d.siteSet[rec.LaunchSite] = struct{}{}
			d.sites = append(d.sites, rec.LaunchSite)
		}
		d.observed.Low = math.Min(d.observed.Low, rec.PayloadMassKg)
		d.observed.High = math.Max(d.observed.High, rec.PayloadMassKg)
	}

	return d, nil
}

func validateRecord(rec LaunchRecord) error {
	if rec.LaunchSite == "" {
		return fmt.Errorf("empty launch site")
	}
	if math.IsNaN(rec.PayloadMassKg) || math.IsInf(rec.PayloadMassKg, 0) || rec.PayloadMassKg < 0 {
		return fmt.Errorf("payload mass %v is not a non-negative number", rec.PayloadMassKg)
	}
	if rec.OutcomeClass != OutcomeFailure && rec.OutcomeClass != OutcomeSuccess {
		return fmt.Errorf("class %d is not 0 or 1", rec.OutcomeClass)
	}
	return nil
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of all records in load order
func (d *Dataset) Records() []LaunchRecord {
	out := make([]LaunchRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Sites returns the distinct launch sites in first-occurrence order
func (d *Dataset) Sites() []string {
	out := make([]string, len(d.sites))
	copy(out, d.sites)
	return out
}

// HasSite reports whether site occurs in the dataset
func (d *Dataset) HasSite(site string) bool {
	_, ok := d.siteSet[site]
	return ok
}

// PayloadBounds returns the fixed [0, 10000] bounds, whatever the data holds
func (d *Dataset) PayloadBounds() PayloadRange {
	return FixedPayloadBounds()
}

// ObservedPayloadRange returns the actual min and max payload in the data
func (d *Dataset) ObservedPayloadRange() PayloadRange {
	return d.observed
}
