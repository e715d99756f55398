package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/motiontwin/internal/twin"
)

type ExportData struct {
	Run     RunMetadata `json:"run"`
	Samples int         `json:"samples"`
	Trace   *twin.Trace `json:"trace"`
}

// ExportJSON writes a stored run with its full trace as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	tr, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, Samples: tr.Len(), Trace: tr})
}

func (s *Store) ExportFile(path, runID string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.ExportJSON(f, runID); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
