package gridlog

import (
	"regexp"
	"strconv"
	"strings"
)

// LineKind is the category a single log line falls into.
type LineKind int

const (
	KindNoise LineKind = iota
	KindMarker
	KindRow
)

func (k LineKind) String() string {
	switch k {
	case KindMarker:
		return "marker"
	case KindRow:
		return "row"
	default:
		return "noise"
	}
}

// MarkerPattern matches a timestep marker anywhere in a line.
var MarkerPattern = regexp.MustCompile(`\btime\s*=\s*(\d+)\b`)

// MatchMarker returns the timestep of the first marker on the line.
// Digits that overflow int64 do not count as a marker.
func MatchMarker(line string) (int64, bool) {
	m := MarkerPattern.FindStringSubmatch(clean(line))
	if m == nil {
		return 0, false
	}
	t, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return t, true
}

// ParseRow parses a grid row of exactly width integer tokens.
// Any other shape is noise and yields ok == false.
func ParseRow(line string, width int) ([]int64, bool) {
	if width <= 0 {
		return nil, false
	}
	fields := strings.Fields(clean(line))
	if len(fields) != width {
		return nil, false
	}
	row := make([]int64, width)
	for i, f := range fields {
		if !isIntToken(f) {
			return nil, false
		}
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, false
		}
		row[i] = v
	}
	return row, true
}

// Classify reports the kind of a line. Marker detection wins over row
// detection.
func Classify(line string, width int) LineKind {
	if _, ok := MatchMarker(line); ok {
		return KindMarker
	}
	if _, ok := ParseRow(line, width); ok {
		return KindRow
	}
	return KindNoise
}

// isIntToken accepts an optional single leading '-' followed by ASCII digits.
func isIntToken(tok string) bool {
	if strings.HasPrefix(tok, "-") {
		tok = tok[1:]
	}
	if tok == "" {
		return false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return false
		}
	}
	return true
}

// clean drops invalid UTF-8 bytes.
func clean(line string) string {
	return strings.ToValidUTF8(line, "")
}
