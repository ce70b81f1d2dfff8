// Package storage persists finished runs as a metadata file plus a CSV of the
// sampled trajectory.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/autopilot/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

var ErrMalformed = errors.New("storage: malformed run data")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunInfo describes how a run was configured.
type RunInfo struct {
	Name        string
	Integrator  string
	Controller  string
	Start       float64
	Duration    float64
	MaxStep     float64
	RelTol      float64
	AbsTol      float64
	Adaptive    bool
	Eigenvalues []complex128
}

type Eigenvalue struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Integrator  string             `json:"integrator"`
	Controller  string             `json:"controller"`
	Start       float64            `json:"start"`
	Duration    float64            `json:"duration"`
	MaxStep     float64            `json:"max_step"`
	RelTol      float64            `json:"rtol"`
	AbsTol      float64            `json:"atol"`
	Adaptive    bool               `json:"adaptive"`
	Samples     int                `json:"samples"`
	Rejected    int                `json:"rejected"`
	Evaluations int                `json:"evaluations"`
	Final       []float64          `json:"final"`
	Eigenvalues []Eigenvalue       `json:"eigenvalues,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
}

func (s *Store) Save(info RunInfo, result *dynamo.Result) (string, error) {
	name := info.Name
	if name == "" {
		name = "run"
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Name:        name,
		Timestamp:   now,
		Integrator:  info.Integrator,
		Controller:  info.Controller,
		Start:       info.Start,
		Duration:    info.Duration,
		MaxStep:     info.MaxStep,
		RelTol:      info.RelTol,
		AbsTol:      info.AbsTol,
		Adaptive:    info.Adaptive,
		Samples:     len(result.Times),
		Rejected:    result.Rejected,
		Evaluations: result.Evaluations,
		Final:       result.Final(),
		Metrics:     result.Metrics,
	}
	for _, v := range info.Eigenvalues {
		meta.Eigenvalues = append(meta.Eigenvalues, Eigenvalue{Re: real(v), Im: imag(v)})
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), result); err != nil {
		return "", err
	}

	return runID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeStates(path string, result *dynamo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if len(result.States) > 0 {
		numControls := 0
		if len(result.Controls) > 0 {
			numControls = len(result.Controls[0])
		}

		header := []string{"time"}
		for i := range result.States[0] {
			header = append(header, fmt.Sprintf("x%d", i))
		}
		for i := 0; i < numControls; i++ {
			header = append(header, fmt.Sprintf("u%d", i))
		}
		if err := w.Write(header); err != nil {
			return err
		}

		for i := range result.States {
			row := []string{formatFloat(result.Times[i])}
			for _, val := range result.States[i] {
				row = append(row, formatFloat(val))
			}
			for j := 0; j < numControls; j++ {
				val := 0.0
				if i < len(result.Controls) && j < len(result.Controls[i]) {
					val = result.Controls[i][j]
				}
				row = append(row, formatFloat(val))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// formatFloat uses the shortest representation that parses back to the same
// value.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns stored runs, newest first. Directories without readable
// metadata are skipped.
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
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, metadataFile, err)
	}

	return &meta, nil
}

// LoadResult rebuilds the sampled trajectory of a run. Metrics and counters
// come from the metadata.
func (s *Store) LoadResult(runID string) (*dynamo.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, statesFile, err)
	}

	res := &dynamo.Result{
		Metrics:     meta.Metrics,
		StepsTaken:  max(meta.Samples-1, 0),
		Rejected:    meta.Rejected,
		Evaluations: meta.Evaluations,
	}
	if len(records) < 2 {
		return res, nil
	}

	header := records[0]
	nx := 0
	for _, col := range header[1:] {
		if strings.HasPrefix(col, "x") {
			nx++
		}
	}

	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s line %d: %w", ErrMalformed, statesFile, line+2, err)
			}
			vals[j] = v
		}

		res.Times = append(res.Times, vals[0])
		res.States = append(res.States, dynamo.State(vals[1:1+nx]))
		res.Controls = append(res.Controls, dynamo.Control(vals[1+nx:]))
	}

	return res, nil
}

// CopyStates writes the raw states.csv of a run to path.
func (s *Store) CopyStates(runID, path string) error {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
