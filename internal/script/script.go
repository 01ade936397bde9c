package script

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/schema"
)

// Script is a replayable sequence of plays.
type Script struct {
	// Name identifies the script and names its golden snapshot.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Config overrides the recording options for this script.
	Config *Overrides `yaml:"config,omitempty"`

	Plays []Play `yaml:"plays"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Overrides are per-script recording options. Unset fields keep the
// caller's configuration.
type Overrides struct {
	RecordBombHits   *bool `yaml:"record_bomb_hits,omitempty"`
	RecordDeviations *bool `yaml:"record_deviations,omitempty"`
	BatchSize        *int  `yaml:"batch_size,omitempty"`
}

// Play is one attempt at a beatmap.
type Play struct {
	Beatmap   ir.BeatmapDescriptor `yaml:"beatmap"`
	Modifiers []string             `yaml:"modifiers,omitempty"`
	Practice  bool                 `yaml:"practice,omitempty"`
	Events    []Event              `yaml:"events,omitempty"`

	// Outcome is finished, failed or none. None leaves the play Active.
	Outcome string `yaml:"outcome,omitempty"`
}

// Event is one host note event.
type Event struct {
	// Type is cut or miss.
	Type          string  `yaml:"type"`
	Time          float64 `yaml:"time"`
	Note          Note    `yaml:"note"`
	OK            bool    `yaml:"ok,omitempty"`
	TimeDeviation float64 `yaml:"time_deviation,omitempty"`
	DirDeviation  float64 `yaml:"dir_deviation,omitempty"`

	// Score completes a good cut. A good cut without a score stays parked.
	Score *Score `yaml:"score,omitempty"`
}

// Note places an event on the grid. A color of none makes it a bomb.
type Note struct {
	Color     string `yaml:"color"`
	Direction string `yaml:"direction"`
	LineIndex int    `yaml:"line_index"`
	LineLayer int    `yaml:"line_layer"`
}

// Score is the host's final rating of a good cut.
type Score struct {
	Before   int `yaml:"before"`
	After    int `yaml:"after"`
	Accuracy int `yaml:"accuracy"`

	// Delay is the number of later events processed before the score
	// arrives. Zero delivers it right after the cut.
	Delay int `yaml:"delay,omitempty"`
}

// Expect holds assertions on the replayed tables.
type Expect struct {
	// Rows maps table names to expected row counts.
	Rows map[string]int64 `yaml:"rows,omitempty"`
}

// Event types.
const (
	EventCut  = "cut"
	EventMiss = "miss"
)

// Play outcomes.
const (
	OutcomeFinished = "finished"
	OutcomeFailed   = "failed"
	OutcomeNone     = "none"
)

// Load reads, schema-checks and decodes a play script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return Parse(filepath.Base(path), data)
}

// Parse schema-checks and decodes a play script. filename is used in
// error positions only.
func Parse(filename string, data []byte) (*Script, error) {
	if err := CheckSchema(filename, data); err != nil {
		return nil, err
	}

	var s Script
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(&s); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return &s, nil
}

// validate checks what the CUE schema cannot express.
func validate(s *Script) error {
	reg := schema.HitData()

	for i, p := range s.Plays {
		if ir.IsBlank(p.Beatmap.Hash()) {
			return fmt.Errorf("plays[%d].beatmap: level_hash or level_id is required", i)
		}
		for j, e := range p.Events {
			if e.Score != nil && (e.Type != EventCut || !e.OK) {
				return fmt.Errorf("plays[%d].events[%d]: score is only valid on a cut with ok: true", i, j)
			}
		}
	}

	if s.Expect != nil {
		for table := range s.Expect.Rows {
			if _, err := reg.Table(table); err != nil {
				return fmt.Errorf("expect.rows: %w", err)
			}
		}
	}
	return nil
}
