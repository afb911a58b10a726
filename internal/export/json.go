package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/gridlog/internal/gridlog"
)

// ExportData is the JSON shape of a series.
type ExportData struct {
	Source    string             `json:"source,omitempty"`
	Height    int                `json:"height"`
	Width     int                `json:"width"`
	Steps     int                `json:"steps"`
	Timesteps []int64            `json:"timesteps"`
	Grids     [][][]int64        `json:"grids"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

func newExportData(source string, s *gridlog.Series, metrics map[string]float64) ExportData {
	data := ExportData{
		Source:    source,
		Height:    s.Height,
		Width:     s.Width,
		Steps:     s.Len(),
		Timesteps: s.Timesteps,
		Grids:     make([][][]int64, s.Len()),
		Metrics:   metrics,
	}

	for i := range data.Grids {
		g := s.Grid(i)
		rows := make([][]int64, g.Height)
		for y := range rows {
			rows[y] = g.Row(y)
		}
		data.Grids[i] = rows
	}
	return data
}

// WriteJSON encodes s as indented JSON with nested [T][H][W] grids.
func WriteJSON(w io.Writer, source string, s *gridlog.Series, metrics map[string]float64) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(source, s, metrics))
}

func ExportJSON(path, source string, s *gridlog.Series, metrics map[string]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, source, s, metrics)
}
