package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/gridlog/internal/gridlog"
)

// LongHeader is the first record of a long-format export.
var LongHeader = []string{"timestep", "x", "y", "value"}

// WriteLongCSV writes one record per cell: timestep, column x, row y, value.
// Records follow timestep order, then y, then x.
func WriteLongCSV(w io.Writer, s *gridlog.Series) error {
	if err := s.Validate(); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(LongHeader); err != nil {
		return err
	}

	rec := make([]string, 4)
	for i, t := range s.Timesteps {
		g := s.Grid(i)
		rec[0] = strconv.FormatInt(t, 10)
		for y := 0; y < g.Height; y++ {
			rec[2] = strconv.Itoa(y)
			for x := 0; x < g.Width; x++ {
				rec[1] = strconv.Itoa(x)
				rec[3] = strconv.FormatInt(g.At(y, x), 10)
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportLongCSV writes the long-format table to path.
func ExportLongCSV(path string, s *gridlog.Series) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteLongCSV(file, s); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
