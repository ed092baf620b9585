// Package wells checks well labels against a plate density.
package wells

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Density is the number of wells on a plate.
type Density int

const (
	Density96  Density = 96
	Density384 Density = 384
)

// ParseDensity converts a well count into a supported Density.
func ParseDensity(n int) (Density, error) {
	switch Density(n) {
	case Density96, Density384:
		return Density(n), nil
	default:
		return 0, fmt.Errorf("unsupported plate density %d (expected 96 or 384)", n)
	}
}

// Rows returns the number of row letters on the plate.
func (d Density) Rows() int {
	if d == Density384 {
		return 16
	}
	return 8
}

// Columns returns the number of columns on the plate.
func (d Density) Columns() int {
	if d == Density384 {
		return 24
	}
	return 12
}

// LastRow returns the last valid row letter.
func (d Density) LastRow() byte {
	return byte('A' + d.Rows() - 1)
}

func (d Density) String() string {
	return fmt.Sprintf("%d-well", int(d))
}

// Error describes why a label was rejected.
type Error struct {
	Label  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid well %q: %s", e.Label, e.Reason)
}

var labelPattern = regexp.MustCompile(`^([A-Z])([0-9]{1,3})$`)

// Validate syntax-checks a well label for the given density and returns it
// normalized to uppercase without leading zeros ("a01" -> "A1").
func Validate(label string, d Density) (string, error) {
	clean := strings.ToUpper(strings.TrimSpace(label))
	if clean == "" {
		return "", &Error{Label: label, Reason: "label is blank"}
	}

	m := labelPattern.FindStringSubmatch(clean)
	if m == nil {
		return "", &Error{Label: label, Reason: "expected a row letter followed by a column number"}
	}

	row := m[1][0]
	if row > d.LastRow() {
		return "", &Error{Label: label, Reason: fmt.Sprintf("row %c outside A-%c for a %s plate", row, d.LastRow(), d)}
	}

	col, err := strconv.Atoi(m[2])
	if err != nil {
		return "", &Error{Label: label, Reason: "column is not a number"}
	}
	if col < 1 || col > d.Columns() {
		return "", &Error{Label: label, Reason: fmt.Sprintf("column %d outside 1-%d for a %s plate", col, d.Columns(), d)}
	}

	return fmt.Sprintf("%c%d", row, col), nil
}
