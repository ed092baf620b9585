package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxLineSize bounds a single console line.
	DefaultMaxLineSize = 1024
	// EnvMaxLineSize overrides DefaultMaxLineSize.
	EnvMaxLineSize = "WELLLIT_MAX_LINE_SIZE"
)

var (
	ErrLineTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8  = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeLine rejects oversized or malformed console input and strips
// control characters (ANSI escapes, NUL, BEL) so they never reach the
// audit log or the terminal.
func SanitizeLine(line string) (string, error) {
	limit := maxLineSize()
	if len(line) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrLineTooLarge, len(line), limit)
	}
	if !utf8.ValidString(line) {
		return "", ErrInvalidUTF8
	}

	if strings.IndexFunc(line, dropRune) < 0 {
		return line, nil
	}

	var b strings.Builder
	b.Grow(len(line))
	for _, r := range line {
		if !dropRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// dropRune reports whether r is stripped from a command line. Input arrives
// one line per command, so a \r from CRLF terminals or an embedded \n would
// only corrupt the command word; tab is the only control kept.
func dropRune(r rune) bool {
	return unicode.IsControl(r) && r != '\t'
}

func maxLineSize() int {
	if val := os.Getenv(EnvMaxLineSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxLineSize
}
