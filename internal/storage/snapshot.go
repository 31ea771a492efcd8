package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/san-kum/partsim/internal/particle"
)

// Snapshot is a render buffer frozen at some frame.
type Snapshot struct {
	Preset string    `json:"preset,omitempty"`
	Frame  int       `json:"frame"`
	Stride int       `json:"stride"`
	Count  int       `json:"count"`
	Buffer []float32 `json:"buffer"`
}

func SaveSnapshot(path string, snap Snapshot) error {
	snap.Stride = particle.FloatsPerParticle
	snap.Count = len(snap.Buffer) / particle.FloatsPerParticle
	if snap.Buffer == nil {
		snap.Buffer = []float32{}
	}
	return writeJSON(path, snap)
}

func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	if snap.Stride != particle.FloatsPerParticle || len(snap.Buffer) != snap.Count*snap.Stride {
		return nil, fmt.Errorf("snapshot %s: %d floats do not match %d particles of stride %d",
			path, len(snap.Buffer), snap.Count, snap.Stride)
	}
	return &snap, nil
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
