package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DataVersion is the version written into exported payloads.
const DataVersion = "1.0"

// DefaultOllamaModel is used when no model has been configured.
const DefaultOllamaModel = "llama3.1:8b"

// View is the dashboard view opened by default.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewKanban    View = "kanban"
	ViewTimeline  View = "timeline"
	ViewInsights  View = "insights"
)

func (v View) Valid() bool {
	switch v {
	case ViewDashboard, ViewKanban, ViewTimeline, ViewInsights:
		return true
	}
	return false
}

// Settings are the user preferences carried inside AppData.
type Settings struct {
	DefaultView View   `json:"defaultView"`
	OllamaModel string `json:"ollamaModel"`
}

// AppData is the whole state of the tracker. It is the unit of export and import.
type AppData struct {
	Version     string     `json:"version"`
	LastUpdated time.Time  `json:"lastUpdated"`
	Ideas       []Idea     `json:"ideas"`
	Themes      []Theme    `json:"themes"`
	Learnings   []Learning `json:"learnings"`
	Settings    Settings   `json:"settings"`
}

// DefaultAppData returns the empty state.
func DefaultAppData(now time.Time) AppData {
	return AppData{
		Version:     DataVersion,
		LastUpdated: now,
		Ideas:       []Idea{},
		Themes:      []Theme{},
		Learnings:   []Learning{},
		Settings: Settings{
			DefaultView: ViewDashboard,
			OllamaModel: DefaultOllamaModel,
		},
	}
}

// ErrInvalidImport is returned when an import payload is not a usable AppData document.
var ErrInvalidImport = errors.New("invalid import data")

// ParseAppData decodes an exported payload. The payload must be a JSON object with an
// ideas array; every other field falls back to the defaults. lastUpdated is reset to now.
func ParseAppData(payload []byte, now time.Time) (AppData, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return AppData{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	rawIdeas, ok := fields["ideas"]
	if !ok {
		return AppData{}, fmt.Errorf("%w: missing ideas", ErrInvalidImport)
	}
	var ideas []json.RawMessage
	if err := json.Unmarshal(rawIdeas, &ideas); err != nil || ideas == nil {
		return AppData{}, fmt.Errorf("%w: ideas is not an array", ErrInvalidImport)
	}

	data := DefaultAppData(now)
	data.Version = ""
	if err := json.Unmarshal(payload, &data); err != nil {
		return AppData{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	data.Normalize()
	data.LastUpdated = now
	return data, nil
}

// Normalize fills fields that older or partial documents may lack with their
// defaults. lastUpdated is left alone.
func (d *AppData) Normalize() {
	if d.Version == "" {
		d.Version = DataVersion
	}
	if d.Ideas == nil {
		d.Ideas = []Idea{}
	}
	if d.Themes == nil {
		d.Themes = []Theme{}
	}
	if d.Learnings == nil {
		d.Learnings = []Learning{}
	}
	if d.Settings.DefaultView == "" {
		d.Settings.DefaultView = ViewDashboard
	}
	if d.Settings.OllamaModel == "" {
		d.Settings.OllamaModel = DefaultOllamaModel
	}
	for i := range d.Ideas {
		if d.Ideas[i].Tags == nil {
			d.Ideas[i].Tags = []string{}
		}
		if d.Ideas[i].StageHistory == nil {
			d.Ideas[i].StageHistory = []StageHistoryEntry{}
		}
	}
}

// Marshal renders the payload that ParseAppData accepts.
func (d AppData) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Clone deep-copies the data.
func (d AppData) Clone() AppData {
	out := d
	out.Ideas = make([]Idea, len(d.Ideas))
	for i, idea := range d.Ideas {
		out.Ideas[i] = idea.Clone()
	}
	out.Themes = make([]Theme, len(d.Themes))
	for i, t := range d.Themes {
		out.Themes[i] = t.Clone()
	}
	out.Learnings = make([]Learning, len(d.Learnings))
	for i, l := range d.Learnings {
		out.Learnings[i] = l.Clone()
	}
	return out
}

// FindIdea returns the index of the idea with id, or -1.
func (d AppData) FindIdea(id string) int {
	for i, idea := range d.Ideas {
		if idea.ID == id {
			return i
		}
	}
	return -1
}
