package launches

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Source column names
const (
	ColumnLaunchSite             = "Launch Site"
	ColumnPayloadMass            = "Payload Mass (kg)"
	ColumnBoosterVersionCategory = "Booster Version Category"
	ColumnClass                  = "class"
)

// MalformedRowPolicy decides what a load does with a row it cannot parse
type MalformedRowPolicy string

const (
	// MalformedFail aborts the whole load on the first bad row
	MalformedFail MalformedRowPolicy = "fail"
	// MalformedSkip drops bad rows and records them in the LoadReport
	MalformedSkip MalformedRowPolicy = "skip"
)

// LoadOptions configures CSV parsing
type LoadOptions struct {
	MalformedRows MalformedRowPolicy
}

// RowError describes one rejected row
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// LoadReport summarises a load
type LoadReport struct {
	Rows    int        `json:"rows"`
	Loaded  int        `json:"loaded"`
	Skipped []RowError `json:"skipped,omitempty"`
}

// LoadFile reads the CSV at path
func LoadFile(path string, opts LoadOptions) (*Dataset, *LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return LoadCSV(f, opts)
}

// LoadCSV parses a launch table. Columns are found by header name and extra
// columns are ignored.
func LoadCSV(r io.Reader, opts LoadOptions) (*Dataset, *LoadReport, error) {
	policy := opts.MalformedRows
	if policy == "" {
		policy = MalformedFail
	}
	if policy != MalformedFail && policy != MalformedSkip {
		return nil, nil, fmt.Errorf("unsupported malformed row policy: %s", policy)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("failed to read header: %w", ErrEmptyDataset)
		}
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols, err := locateColumns(header)
	if err != nil {
		return nil, nil, err
	}

	report := &LoadReport{}
	var records []LaunchRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read dataset: %w", err)
		}
		report.Rows++
		line, _ := reader.FieldPos(0)

		rec, err := cols.parse(row)
		if err != nil {
			rowErr := RowError{Line: line, Reason: err.Error()}
			if policy == MalformedFail {
				return nil, nil, fmt.Errorf("malformed row: %w", rowErr)
			}
			report.Skipped = append(report.Skipped, rowErr)
			continue
		}
		records = append(records, rec)
	}

	report.Loaded = len(records)
	d, err := NewDataset(records)
	if err != nil {
		return nil, report, err
	}
	return d, report, nil
}

type columnIndex struct {
	site, payload, category, class int
	width                          int
}

func locateColumns(header []string) (columnIndex, error) {
	idx := map[string]int{}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		idx[strings.TrimSpace(name)] = i
	}

	var cols columnIndex
	var missing []string
	lookup := func(name string, dst *int) {
		i, ok := idx[name]
		if !ok {
			missing = append(missing, name)
			return
		}
		*dst = i
		if i+1 > cols.width {
			cols.width = i + 1
		}
	}
	lookup(ColumnLaunchSite, &cols.site)
	lookup(ColumnPayloadMass, &cols.payload)
	lookup(ColumnBoosterVersionCategory, &cols.category)
	lookup(ColumnClass, &cols.class)

	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c columnIndex) parse(row []string) (LaunchRecord, error) {
	if len(row) < c.width {
		return LaunchRecord{}, fmt.Errorf("expected at least %d fields, got %d", c.width, len(row))
	}

	site := strings.TrimSpace(row[c.site])
	if site == "" {
		return LaunchRecord{}, fmt.Errorf("empty %q", ColumnLaunchSite)
	}

	mass, err := strconv.ParseFloat(strings.TrimSpace(row[c.payload]), 64)
	if err != nil || math.IsNaN(mass) || math.IsInf(mass, 0) {
		return LaunchRecord{}, fmt.Errorf("invalid %q value %q", ColumnPayloadMass, row[c.payload])
	}
	if mass < 0 {
		return LaunchRecord{}, fmt.Errorf("negative %q value %v", ColumnPayloadMass, mass)
	}

	class, err := parseOutcome(row[c.class])
	if err != nil {
		return LaunchRecord{}, err
	}

	return LaunchRecord{
		LaunchSite:             site,
		PayloadMassKg:          mass,
		BoosterVersionCategory: strings.TrimSpace(row[c.category]),
		OutcomeClass:           class,
	}, nil
}

// parseOutcome accepts "0"/"1" and their float spellings ("1.0")
func parseOutcome(raw string) (Outcome, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %q value %q", ColumnClass, raw)
	}
	switch v {
	case 0:
		return OutcomeFailure, nil
	case 1:
		return OutcomeSuccess, nil
	default:
		return 0, fmt.Errorf("%q must be 0 or 1, got %q", ColumnClass, raw)
	}
}
