package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoProtocol is returned when a command needs a loaded protocol and none is active.
var ErrNoProtocol = errors.New("no transfer protocol loaded")

// ErrEmptyTable is returned when a table contains no data rows.
var ErrEmptyTable = errors.New("table has no transfers")

// ErrRunNotFound is returned when a record store has nothing for a run ID.
var ErrRunNotFound = errors.New("run not found")

// ViolationKind classifies a table problem found during a build.
type ViolationKind string

const (
	ViolationDuplicateSource ViolationKind = "duplicate_source_well"
	ViolationSourceWell      ViolationKind = "invalid_source_well"
	ViolationDestWell        ViolationKind = "invalid_dest_well"
	ViolationPlateName       ViolationKind = "missing_plate_name"
	ViolationDestPlate       ViolationKind = "missing_dest_plate"
)

// Violation is a single problem found in a source table.
// Rows are 1-based and offset for the two header lines.
type Violation struct {
	Kind   ViolationKind `json:"kind"`
	Plate  string        `json:"plate,omitempty"`
	Well   string        `json:"well,omitempty"`
	Rows   []int         `json:"rows,omitempty"`
	Reason string        `json:"reason,omitempty"`
}

func (v Violation) String() string {
	where := fmt.Sprintf("Plate %s row %v", v.Plate, v.Rows)
	if v.Plate == "" {
		where = fmt.Sprintf("Row %v", v.Rows)
	}
	switch v.Kind {
	case ViolationDuplicateSource:
		return fmt.Sprintf("Plate %s has duplicates: SourceWell %s is duplicated in rows %v", v.Plate, v.Well, v.Rows)
	case ViolationSourceWell:
		return fmt.Sprintf("%s: invalid SourceWell %q: %s", where, v.Well, v.Reason)
	case ViolationDestWell:
		return fmt.Sprintf("%s: invalid DestWell %q: %s", where, v.Well, v.Reason)
	case ViolationPlateName:
		return fmt.Sprintf("Row %v: missing PlateName", v.Rows)
	case ViolationDestPlate:
		return "Missing destination plate name on the first line"
	default:
		return fmt.Sprintf("%s: %s", v.Kind, v.Reason)
	}
}

// BuildError aggregates every violation found in a table.
type BuildError struct {
	Violations []Violation
}

func (e *BuildError) Error() string {
	lines := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		lines = append(lines, v.String())
	}
	return fmt.Sprintf("table has %d problem(s):\n- %s", len(e.Violations), strings.Join(lines, "\n- "))
}

// Is lets errors.Is match any BuildError against another.
func (e *BuildError) Is(target error) bool {
	_, ok := target.(*BuildError)
	return ok
}
