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

	"github.com/google/uuid"
	"github.com/san-kum/partsim/internal/config"
	"github.com/san-kum/partsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	snapshotFile = "snapshot.json"
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
	ID        string               `json:"id"`
	Preset    string               `json:"preset"`
	Timestamp time.Time            `json:"timestamp"`
	Seed      uint64               `json:"seed"`
	Dt        float32              `json:"dt"`
	Frames    int                  `json:"frames"`
	Emitter   config.EmitterConfig `json:"emitter"`
	Metrics   map[string]float64   `json:"metrics"`
	Saturated int                  `json:"saturated_frames"`
	Alive     int                  `json:"final_alive"`
}

// FrameRecord is one row of frames.csv.
type FrameRecord struct {
	Frame  int
	Dt     float32
	Alive  int
	Births int
	Deaths int
}

// Save writes metadata, per-frame counts and the final render buffer of a
// run into a fresh directory and returns its id.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d_%s", meta.Preset, time.Now().Unix(), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Metrics = result.Metrics
	meta.Saturated = result.Saturated
	meta.Alive = result.FinalAlive

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result); err != nil {
		return "", err
	}
	snap := Snapshot{Frame: result.FramesRun, Buffer: result.Final}
	if err := SaveSnapshot(filepath.Join(runDir, snapshotFile), snap); err != nil {
		return "", err
	}

	return runID, nil
}

func writeFrames(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frame", "dt", "alive", "births", "deaths"}); err != nil {
		return err
	}
	for i := range result.Alive {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(float64(result.Dt[i]), 'f', 6, 32),
			strconv.Itoa(result.Alive[i]),
			strconv.Itoa(result.Births[i]),
			strconv.Itoa(result.Deaths[i]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
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
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]FrameRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []FrameRecord{}, nil
	}

	frames := make([]FrameRecord, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != 5 {
			continue
		}
		var fr FrameRecord
		var perr error
		fr.Frame, perr = strconv.Atoi(record[0])
		if perr != nil {
			continue
		}
		dt, perr := strconv.ParseFloat(record[1], 32)
		if perr != nil {
			continue
		}
		fr.Dt = float32(dt)
		if fr.Alive, perr = strconv.Atoi(record[2]); perr != nil {
			continue
		}
		if fr.Births, perr = strconv.Atoi(record[3]); perr != nil {
			continue
		}
		if fr.Deaths, perr = strconv.Atoi(record[4]); perr != nil {
			continue
		}
		frames = append(frames, fr)
	}

	return frames, nil
}

func (s *Store) LoadRunSnapshot(runID string) (*Snapshot, error) {
	return LoadSnapshot(filepath.Join(s.baseDir, runID, snapshotFile))
}
