package domain

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Row is one data line of a source table.
// The mapstructure tags match the table header names.
type Row struct {
	PlateName  string `json:"plate_name" mapstructure:"PlateName"`
	SourceWell string `json:"source_well" mapstructure:"SourceWell"`
	DestWell   string `json:"dest_well" mapstructure:"DestWell"`
}

// Table is the ingested form of a source table.
type Table struct {
	// Source names where the table came from (usually a file path).
	Source    string `json:"source"`
	DestPlate string `json:"dest_plate"`
	Rows      []Row  `json:"rows"`
}

// RunTimestampLayout formats the start time embedded in run IDs.
const RunTimestampLayout = "2006_01_02_15_04_05"

// Run describes one loaded protocol and names its record log.
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	DestPlate string    `json:"dest_plate"`
	StartedAt time.Time `json:"started_at"`
}

// NewRun derives the run descriptor for a table loaded at the given time.
func NewRun(table Table, at time.Time) Run {
	stem := strings.TrimSuffix(filepath.Base(table.Source), filepath.Ext(table.Source))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "protocol"
	}
	at = at.UTC()
	return Run{
		ID:        stem + "_transfer_record_" + at.Format(RunTimestampLayout),
		Source:    table.Source,
		DestPlate: table.DestPlate,
		StartedAt: at,
	}
}

// Nth returns a copy of r whose ID carries the sequence suffix n. Used when
// the same source is reloaded within the second that named the previous run.
func (r Run) Nth(n int) Run {
	r.ID += "_" + strconv.Itoa(n)
	return r
}
