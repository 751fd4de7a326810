// Package storage keeps finished runs on disk, one directory per run with
// the metadata as JSON, the probe trace and energy history as CSV and the
// scene that produced them.
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

	"github.com/san-kum/fdtdabc/internal/config"
	"github.com/san-kum/fdtdabc/internal/experiment"
)

const (
	metadataFile = "metadata.json"
	probeFile    = "probe.csv"
	energyFile   = "energy.csv"
	sceneFile    = "scene.yaml"
)

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
	ID          string             `json:"id"`
	Scene       string             `json:"scene"`
	Timestamp   time.Time          `json:"timestamp"`
	Precision   string             `json:"precision"`
	Threads     int                `json:"threads"`
	Steps       uint               `json:"steps"`
	Dt          float64            `json:"dt"`
	Sheets      int                `json:"sheets"`
	Cells       int                `json:"cells"`
	Diagnostics int                `json:"diagnostics"`
	Skipped     int                `json:"skipped"`
	Elapsed     float64            `json:"elapsed_seconds"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes res under a new run ID. scene may be nil.
func (s *Store) Save(res *experiment.Result, scene *config.Scene) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", res.Scene, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Scene:       res.Scene,
		Timestamp:   now,
		Precision:   res.Precision,
		Threads:     res.Threads,
		Steps:       res.Steps,
		Dt:          res.Timestep,
		Sheets:      res.Sheets,
		Cells:       res.Cells,
		Diagnostics: len(res.Diagnostics),
		Skipped:     res.Skipped(),
		Elapsed:     res.Elapsed.Seconds(),
		Metrics: map[string]float64{
			"peak_energy":  res.PeakEnergy,
			"final_energy": res.FinalEnergy,
			"residual":     res.Residual(),
			"stability":    res.Stability,
		},
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	probe := make([][]string, 0, len(res.ProbeValues)+1)
	probe = append(probe, []string{"step", "time", "value"})
	for i, v := range res.ProbeValues {
		probe = append(probe, []string{strconv.Itoa(i + 1), formatFloat(res.ProbeTimes[i]), formatFloat(v)})
	}
	if err := writeCSV(filepath.Join(runDir, probeFile), probe); err != nil {
		return "", err
	}

	energy := make([][]string, 0, len(res.Energy)+1)
	energy = append(energy, []string{"step", "energy"})
	for i, v := range res.Energy {
		step := uint(i+1) * res.EnergyEvery
		energy = append(energy, []string{strconv.FormatUint(uint64(step), 10), formatFloat(v)})
	}
	if err := writeCSV(filepath.Join(runDir, energyFile), energy); err != nil {
		return "", err
	}

	if scene != nil {
		if err := config.Save(filepath.Join(runDir, sceneFile), scene); err != nil {
			return "", err
		}
	}

	return runID, nil
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadProbe returns the probe sample times and values of a run.
func (s *Store) LoadProbe(runID string) (times, values []float64, err error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, probeFile))
	if err != nil {
		return nil, nil, err
	}

	times = make([]float64, 0, len(records))
	values = make([]float64, 0, len(records))
	for _, record := range records {
		if len(record) < 3 {
			continue
		}
		t, err1 := strconv.ParseFloat(record[1], 64)
		v, err2 := strconv.ParseFloat(record[2], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		times = append(times, t)
		values = append(values, v)
	}
	return times, values, nil
}

// LoadEnergy returns the sampled steps and energies of a run.
func (s *Store) LoadEnergy(runID string) (steps []uint, energy []float64, err error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, energyFile))
	if err != nil {
		return nil, nil, err
	}

	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		step, err1 := strconv.ParseUint(record[0], 10, 64)
		e, err2 := strconv.ParseFloat(record[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		steps = append(steps, uint(step))
		energy = append(energy, e)
	}
	return steps, energy, nil
}

// LoadScene returns the scene saved with a run.
func (s *Store) LoadScene(runID string) (*config.Scene, error) {
	return config.Load(filepath.Join(s.baseDir, runID, sceneFile))
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

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return f.Close()
}

// readCSV returns the records after the header row.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
