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
	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/dynamo"
	"github.com/san-kum/cradle/internal/session"
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
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Timestamp  time.Time          `json:"timestamp"`
	Settings   config.Config      `json:"settings"`
	Frames     int                `json:"frames"`
	Collisions int                `json:"collisions"`
	Metrics    map[string]float64 `json:"metrics"`
}

func (s *Store) Save(scenario string, settings config.Config, rec *session.Recording) (string, error) {
	runID := fmt.Sprintf("%s_%s", scenario, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scenario:   scenario,
		Timestamp:  time.Now(),
		Settings:   settings,
		Frames:     rec.Frames(),
		Collisions: len(rec.Contacts),
		Metrics:    rec.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "positions.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := writePositions(w, rec); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

func writePositions(w *csv.Writer, rec *session.Recording) error {
	width := 0
	for _, row := range rec.Positions {
		width = max(width, len(row))
	}

	header := []string{"time"}
	for i := 0; i < width; i++ {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, row := range rec.Positions {
		record := []string{strconv.FormatFloat(rec.Times[i], 'f', 6, 64)}
		for _, p := range row {
			record = append(record,
				strconv.FormatFloat(p.X, 'f', 6, 64),
				strconv.FormatFloat(p.Y, 'f', 6, 64))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// List returns all stored runs, oldest first.
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

// LoadPositions reads the recorded bob positions back. Rows may differ in
// width when the cradle was rebuilt during the run.
func (s *Store) LoadPositions(runID string) ([][]dynamo.Vec2, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "positions.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]dynamo.Vec2{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	positions := make([][]dynamo.Vec2, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		row := make([]dynamo.Vec2, 0, (len(record)-1)/2)
		for j := 1; j+1 < len(record); j += 2 {
			x, errX := strconv.ParseFloat(record[j], 64)
			y, errY := strconv.ParseFloat(record[j+1], 64)
			if errX != nil || errY != nil {
				continue
			}
			row = append(row, dynamo.V(x, y))
		}
		times = append(times, t)
		positions = append(positions, row)
	}

	return positions, times, nil
}

// LoadRecording rebuilds a Recording from a stored run.
func (s *Store) LoadRecording(runID string) (*RunMetadata, *session.Recording, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	positions, times, err := s.LoadPositions(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, &session.Recording{Times: times, Positions: positions, Metrics: meta.Metrics}, nil
}
