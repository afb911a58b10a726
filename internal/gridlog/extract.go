package gridlog

import (
	"fmt"
	"strings"
)

// MarkerPolicy decides what a marker line does while rows are being collected.
type MarkerPolicy int

const (
	// MarkerSkipped treats a marker inside a block as noise.
	MarkerSkipped MarkerPolicy = iota
	// MarkerRestarts ends the current block as incomplete and hands the
	// marker back to the scan, so it starts the next block.
	MarkerRestarts
)

func (p MarkerPolicy) String() string {
	switch p {
	case MarkerRestarts:
		return "restart"
	default:
		return "skip"
	}
}

// ParseMarkerPolicy maps "skip" and "restart" to a policy. An empty name is
// the default policy.
func ParseMarkerPolicy(name string) (MarkerPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "skip":
		return MarkerSkipped, nil
	case "restart":
		return MarkerRestarts, nil
	}
	return MarkerSkipped, fmt.Errorf("%w: unknown marker policy %q", ErrInvalidOptions, name)
}

// block is one marker's worth of collected rows.
type block struct {
	rows        [][]int64
	noise       int
	interrupted bool
}

func (b *block) complete(height int) bool {
	return len(b.rows) == height
}

// extractBlock collects up to height rows from cur, which must sit just past
// a marker line. Noise lines are skipped and tallied in noise. On return the
// cursor is at the first line this block did not consume.
func extractBlock(cur *lineCursor, height, width int, policy MarkerPolicy) block {
	b := block{rows: make([][]int64, 0, height)}
	for len(b.rows) < height {
		line, ok := cur.Next()
		if !ok {
			break
		}
		if policy == MarkerRestarts {
			if _, isMarker := MatchMarker(line); isMarker {
				cur.Unread(line)
				b.interrupted = true
				break
			}
		}
		row, ok := ParseRow(line, width)
		if !ok {
			b.noise++
			continue
		}
		b.rows = append(b.rows, row)
	}
	return b
}
