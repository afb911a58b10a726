// Package gridlog extracts fixed-size integer grids from unstructured
// simulation logs.
//
// A log interleaves three kinds of lines:
//
//   - markers such as "time = 42" announcing a timestep
//   - grid rows: exactly Width whitespace-separated integers
//   - noise: anything else (CUDA chatter, blank lines, debug prints)
//
// The parser scans the input once. On every marker it collects the next
// Height grid rows, skipping noise in between, and keeps the block only when
// it is complete. Kept blocks are stacked into a [Series].
//
// # Example
//
//	s, err := gridlog.ParseFile("log.txt", gridlog.Options{Height: 100, Width: 100})
//	if errors.Is(err, gridlog.ErrEmptySeries) {
//		// no complete grid anywhere in the file
//	}
//	fmt.Println(s.Len(), s.Timesteps[0], s.Grid(0).At(0, 0))
//
// # Thread Safety
//
// Parse calls share no state and may run concurrently. A [Series] is not
// synchronized; treat it as read-only once returned.
package gridlog
