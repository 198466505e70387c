package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/dynamo"
	"github.com/san-kum/cradle/internal/session"
)

type ExportData struct {
	Scenario  string                 `json:"scenario"`
	Settings  config.Config          `json:"settings"`
	Steps     int                    `json:"steps"`
	Times     []float64              `json:"times"`
	Positions [][]dynamo.Vec2        `json:"positions"`
	Contacts  []session.ContactEvent `json:"contacts"`
	Metrics   map[string]float64     `json:"metrics"`
}

func ExportJSON(w io.Writer, scenario string, settings config.Config, rec *session.Recording) error {
	data := ExportData{
		Scenario:  scenario,
		Settings:  settings,
		Steps:     rec.Frames(),
		Times:     rec.Times,
		Positions: rec.Positions,
		Contacts:  rec.Contacts,
		Metrics:   rec.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path, scenario string, settings config.Config, rec *session.Recording) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, scenario, settings, rec)
}
