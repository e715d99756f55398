package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/optim"
	"github.com/san-kum/motiontwin/internal/planner"
	"github.com/san-kum/motiontwin/internal/twin"
)

// Store keeps planned moves on disk, one directory per run holding
// metadata.json and trace.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator"`
	Step       float64            `json:"step"`
	From       dynamo.Vec3        `json:"from"`
	To         dynamo.Vec3        `json:"to"`
	Shape      optim.Shape        `json:"shape"`
	Optimized  bool               `json:"optimized"`
	Warning    string             `json:"warning,omitempty"`
	Cost       float64            `json:"cost"`
	Duration   float64            `json:"duration"`
	Quality    twin.Quality       `json:"quality"`
	Metrics    map[string]float64 `json:"metrics"`
	Profile    *optim.Profile     `json:"profile"`
}

var traceHeader = []string{
	"time",
	"target_x", "target_y", "target_z",
	"actual_x", "actual_y", "actual_z",
	"velocity_x", "velocity_y", "velocity_z",
	"error_x", "error_y", "error_z",
	"force_x", "force_y", "force_z",
	"accel_x", "accel_y", "accel_z",
}

// Save writes one planned move and returns its run id.
func (s *Store) Save(name, integrator string, step float64, res *planner.Result) (string, error) {
	if res == nil {
		return "", fmt.Errorf("%w: nothing to save", dynamo.ErrInput)
	}

	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       name,
		Timestamp:  now,
		Integrator: integrator,
		Step:       step,
		From:       res.From,
		To:         res.To,
		Optimized:  res.Optimized,
		Warning:    res.Warning,
		Cost:       res.Cost,
		Quality:    res.Quality,
		Metrics:    res.Metrics,
		Profile:    res.Profile,
	}
	if res.Profile != nil {
		meta.Shape = res.Profile.Shape
		meta.Duration = res.Profile.Duration()
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeTrace(filepath.Join(runDir, "trace.csv"), res.Trace); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTrace(path string, tr *twin.Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(traceHeader); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i := 0; i < tr.Len(); i++ {
		smp := tr.Samples[i]
		var acc dynamo.Vec3
		if i < len(tr.Acceleration) {
			acc = tr.Acceleration[i]
		}

		row := []string{format(smp.Time)}
		for _, v := range []dynamo.Vec3{smp.Target, smp.Actual, smp.Velocity, smp.Error, smp.Force, acc} {
			row = append(row, format(v[0]), format(v[1]), format(v[2]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first. A missing base directory
// is an empty store.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrace reads a run's trace back. Rows that fail to parse are an error
// rather than skipped.
func (s *Store) LoadTrace(runID string) (*twin.Trace, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "trace.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(traceHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	tr := &twin.Trace{}
	if len(records) < 2 {
		return tr, nil
	}

	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("trace.csv line %d: %w", line+2, err)
			}
			vals[j] = v
		}

		vec := func(k int) dynamo.Vec3 {
			off := 1 + 3*k
			return dynamo.Vec3{vals[off], vals[off+1], vals[off+2]}
		}
		tr.Samples = append(tr.Samples, twin.Sample{
			Time:     vals[0],
			Target:   vec(0),
			Actual:   vec(1),
			Velocity: vec(2),
			Error:    vec(3),
			Force:    vec(4),
		})
		tr.Acceleration = append(tr.Acceleration, vec(5))
	}

	if len(tr.Samples) < 2 {
		tr.Acceleration = nil
	}
	return tr, nil
}
