package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/gridlog/internal/export"
	"github.com/san-kum/gridlog/internal/gridlog"
	"github.com/san-kum/gridlog/internal/metrics"
)

// File names inside a run directory.
const (
	MetadataFile = "metadata.json"
	LongCSVFile  = "long.csv"
	SnapshotFile = "grids.npz"
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Source        string             `json:"source"`
	Timestamp     time.Time          `json:"timestamp"`
	Height        int                `json:"height"`
	Width         int                `json:"width"`
	MaxSteps      int                `json:"max_steps"`
	MarkerPolicy  string             `json:"marker_policy"`
	Steps         int                `json:"steps"`
	FirstTimestep int64              `json:"first_timestep"`
	LastTimestep  int64              `json:"last_timestep"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Save writes metadata, the long CSV and the snapshot of series into a new
// run directory named after the source file and the current time.
func (s *Store) Save(source string, opts gridlog.Options, series *gridlog.Series) (string, error) {
	if series == nil || series.Len() == 0 {
		return "", gridlog.ErrEmptySeries
	}
	now := s.now()
	runID := s.uniqueID(fmt.Sprintf("%s_%d", runName(source), now.Unix()))
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:            runID,
		Source:        source,
		Timestamp:     now,
		Height:        series.Height,
		Width:         series.Width,
		MaxSteps:      opts.MaxSteps,
		MarkerPolicy:  opts.Policy.String(),
		Steps:         series.Len(),
		FirstTimestep: series.Timesteps[0],
		LastTimestep:  series.Timesteps[series.Len()-1],
		Metrics:       metrics.Evaluate(series, metrics.DefaultMetrics()),
	}

	// metadata.json goes last: List only reports runs that have it.
	if err := writeRun(runDir, meta, series); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, series *gridlog.Series) error {
	if err := export.ExportLongCSV(filepath.Join(runDir, LongCSVFile), series); err != nil {
		return err
	}
	if err := export.SaveSnapshot(filepath.Join(runDir, SnapshotFile), series); err != nil {
		return err
	}

	metaFile, err := os.Create(filepath.Join(runDir, MetadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}
	return metaFile.Close()
}

// uniqueID appends a counter when two runs land in the same second.
func (s *Store) uniqueID(base string) string {
	id := base
	for i := 2; ; i++ {
		if _, err := os.Stat(filepath.Join(s.baseDir, id)); os.IsNotExist(err) {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, i)
	}
}

func runName(source string) string {
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "run"
	}
	return name
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(s.Path(runID, MetadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSeries reloads the snapshot of a run.
func (s *Store) LoadSeries(runID string) (*gridlog.Series, error) {
	return export.LoadSnapshot(s.Path(runID, SnapshotFile))
}

// Path returns the location of file inside a run directory.
func (s *Store) Path(runID, file string) string {
	return filepath.Join(s.baseDir, runID, file)
}
