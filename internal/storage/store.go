package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/mcmol/internal/config"
	"github.com/san-kum/mcmol/internal/move"
	"github.com/san-kum/mcmol/internal/sim"
	"github.com/san-kum/mcmol/internal/space"
)

// Store persists simulation runs under a base directory, one
// subdirectory per run.
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
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	Seed          int64              `json:"seed"`
	Geometry      string             `json:"geometry"`
	Sweeps        int                `json:"sweeps"`
	SampleEvery   int                `json:"sample_every"`
	InitialEnergy float64            `json:"initial_energy"`
	FinalEnergy   float64            `json:"final_energy"`
	Drift         float64            `json:"drift"`
	ElapsedSec    float64            `json:"elapsed_sec"`
	Acceptance    map[string]float64 `json:"acceptance"`
}

// Save writes metadata, the input configuration, the energy trace and a
// final configuration snapshot for one run and returns the run ID.
func (s *Store) Save(cfg *config.Config, res *sim.Result, spc *space.Space, moves []move.Mover) (string, error) {
	runID := fmt.Sprintf("%s_%s", time.Now().Format("20060102-150405"), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:            runID,
		Timestamp:     time.Now(),
		Seed:          cfg.Seed,
		Geometry:      cfg.Geometry.Type,
		Sweeps:        res.Sweeps,
		SampleEvery:   cfg.Sampling.SampleEvery,
		InitialEnergy: res.InitialEnergy,
		FinalEnergy:   res.FinalEnergy,
		Drift:         res.Drift,
		ElapsedSec:    res.Elapsed.Seconds(),
		Acceptance:    make(map[string]float64, len(moves)),
	}
	for _, m := range moves {
		meta.Acceptance[m.Name()] = m.Acceptance()
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := config.Save(filepath.Join(runDir, "config.yaml"), cfg); err != nil {
		return "", err
	}

	if err := s.writeTrace(filepath.Join(runDir, "energy.csv"), res, meta.SampleEvery); err != nil {
		return "", err
	}

	if err := spc.SaveFile(filepath.Join(runDir, "groups.json")); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) writeTrace(path string, res *sim.Result, sampleEvery int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"sweep", "energy"}); err != nil {
		return err
	}
	if sampleEvery < 1 {
		sampleEvery = 1
	}
	for i, u := range res.Trace {
		row := []string{
			strconv.Itoa(i * sampleEvery),
			strconv.FormatFloat(u, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// SaveCoordinates writes the recorded coordinate traces of a run as
// coordinates.csv, one column per coordinate.
func (s *Store) SaveCoordinates(runID string, names []string, sweeps []int, values [][]float64) error {
	if len(names) != len(values) {
		return fmt.Errorf("storage: %d names for %d coordinate traces", len(names), len(values))
	}
	f, err := os.Create(filepath.Join(s.baseDir, runID, "coordinates.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(append([]string{"sweep"}, names...)); err != nil {
		return err
	}
	for k, sweep := range sweeps {
		row := make([]string, 0, len(values)+1)
		row = append(row, strconv.Itoa(sweep))
		for _, trace := range values {
			row = append(row, strconv.FormatFloat(trace[k], 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// LoadCoordinates reads back a run's coordinate traces.
func (s *Store) LoadCoordinates(runID string) (names []string, sweeps []int, values [][]float64, err error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "coordinates.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) == 0 || len(records[0]) < 2 {
		return nil, nil, nil, fmt.Errorf("storage: run %s has no coordinate traces", runID)
	}
	names = records[0][1:]
	values = make([][]float64, len(names))
	for _, record := range records[1:] {
		if len(record) != len(names)+1 {
			continue
		}
		sweep, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		sweeps = append(sweeps, sweep)
		for i := range names {
			v, err := strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				v = 0
			}
			values[i] = append(values[i], v)
		}
	}
	return names, sweeps, values, nil
}

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

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadConfig reads back the configuration a run was built from.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, "config.yaml"))
}

// LoadTrace reads the sampled energy trace of a run.
func (s *Store) LoadTrace(runID string) (sweeps []int, energies []float64, err error) {
	csvPath := filepath.Join(s.baseDir, runID, "energy.csv")
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []int{}, []float64{}, nil
	}

	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		sweep, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		u, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		sweeps = append(sweeps, sweep)
		energies = append(energies, u)
	}
	return sweeps, energies, nil
}

// LoadSnapshot restores the final configuration of a run into spc,
// whose group layout must match the one the run was built with.
func (s *Store) LoadSnapshot(runID string, spc *space.Space) error {
	return spc.LoadFile(filepath.Join(s.baseDir, runID, "groups.json"))
}
