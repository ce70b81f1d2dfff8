package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	RunMetadata
	Times    []float64   `json:"times"`
	States   [][]float64 `json:"states"`
	Controls [][]float64 `json:"controls"`
}

// ExportJSON writes the metadata and the full trajectory of a run as one
// JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	res, err := s.LoadResult(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Times:       res.Times,
		States:      make([][]float64, len(res.States)),
		Controls:    make([][]float64, len(res.Controls)),
	}
	for i, st := range res.States {
		data.States[i] = st
	}
	for i, c := range res.Controls {
		data.Controls[i] = c
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
