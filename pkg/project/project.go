// Package project persists a modeling history as an ordered list of
// feature records and replays it through the history engine. Replaying a
// saved project from an empty scene reproduces an identical set of
// artifact names; that round-trip property is what makes the stored
// name references inside the records durable.
package project

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/chazu/adze/pkg/feature"
	"github.com/chazu/adze/pkg/history"
)

// FormatVersion is written into every saved project.
const FormatVersion = 1

// Record is one persisted history entry.
type Record struct {
	FeatureID      string         `json:"featureID"`
	FeatureType    string         `json:"featureType"`
	InputParams    map[string]any `json:"inputParams"`
	PersistentData map[string]any `json:"persistentData,omitempty"`
}

// Project is the persisted form of a history.
type Project struct {
	Version  int      `json:"version"`
	Features []Record `json:"features"`
}

// Snapshot captures an engine's history as a project.
func Snapshot(e *history.Engine) *Project {
	p := &Project{Version: FormatVersion}
	for _, entry := range e.Entries() {
		f := entry.Feature
		p.Features = append(p.Features, Record{
			FeatureID:      f.ID(),
			FeatureType:    f.Type(),
			InputParams:    f.Params(),
			PersistentData: f.Persistent(),
		})
	}
	return p
}

// Save serializes a project to indented JSON.
func Save(p *Project) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("project: save: %w", err)
	}
	return data, nil
}

// Load parses project JSON. Legacy feature type tags are rewritten to
// their canonical names through the registry's aliases before the strict
// decode, so saved projects referencing renamed types still load.
func Load(data []byte, reg *feature.Registry) (*Project, error) {
	if reg == nil {
		reg = feature.Default()
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("project: load: not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.Get("features").IsArray() {
		return nil, fmt.Errorf("project: load: missing features array")
	}

	for i, rec := range root.Get("features").Array() {
		typeTag := rec.Get("featureType").String()
		if typeTag == "" {
			return nil, fmt.Errorf("project: load: feature %d has no featureType", i)
		}
		canonical, ok := reg.Canonical(typeTag)
		if ok && canonical != typeTag {
			var err error
			data, err = sjson.SetBytes(data, fmt.Sprintf("features.%d.featureType", i), canonical)
			if err != nil {
				return nil, fmt.Errorf("project: load: migrating feature %d: %w", i, err)
			}
		}
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("project: load: %w", err)
	}
	return &p, nil
}

// Replay rebuilds a history from a project and recomputes it from an
// empty scene. Unknown feature types are fatal, identifying the
// offending record.
func Replay(p *Project, reg *feature.Registry, log *slog.Logger) (*history.Engine, error) {
	e := history.New(reg, log)
	for _, rec := range p.Features {
		f, err := e.Append(rec.FeatureType, rec.FeatureID, rec.InputParams)
		if err != nil {
			return nil, err
		}
		if rec.PersistentData != nil {
			if setter, ok := f.(interface{ SetPersistent(map[string]any) }); ok {
				setter.SetPersistent(rec.PersistentData)
			}
		}
	}
	if err := e.Recompute(""); err != nil {
		return nil, err
	}
	return e, nil
}
