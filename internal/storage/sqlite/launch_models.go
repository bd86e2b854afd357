package sqlite

import "time"

// ImportRecord describes one replacement of the launch mirror
type ImportRecord struct {
	ID         int64     `json:"id"`
	Source     string    `json:"source"` // file path or URL the rows came from
	RowCount   int       `json:"row_count"`
	ImportedAt time.Time `json:"imported_at"`
}
