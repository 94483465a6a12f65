package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"airlinesim"

	"gopkg.in/yaml.v3"
)

// LoadPlanFiles reads one plan per file, JSON or YAML by extension. Files that cannot be read
// or parsed are logged and skipped. It fails only when no plan could be loaded.
func LoadPlanFiles(paths []string) ([]airlinesim.Plan, error) {
	var plans []airlinesim.Plan
	for _, path := range paths {
		p, err := loadPlanFile(path)
		if err != nil {
			slog.Warn("WORKFLOW: Skipping plan file", "path", path, "error", err)
			continue
		}
		plans = append(plans, p)
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("%w: no valid plan files among %d", airlinesim.ErrEmptyBatch, len(paths))
	}
	return plans, nil
}

func loadPlanFile(path string) (airlinesim.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return airlinesim.Plan{}, err
	}

	var p airlinesim.Plan
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	default:
		err = json.Unmarshal(data, &p)
	}
	if err != nil {
		return airlinesim.Plan{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if p.SubmittedAt.IsZero() {
		if info, statErr := os.Stat(path); statErr == nil {
			p.SubmittedAt = info.ModTime()
		} else {
			p.SubmittedAt = time.Now()
		}
	}
	return p, nil
}

// RosterEntry is one team in a roster file. Zero cash or reputation takes the roster default.
type RosterEntry struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	Cash       float64 `yaml:"cash"`
	Reputation float64 `yaml:"reputation"`
}

// Roster is the YAML document used to seed a class.
type Roster struct {
	StartingCash       float64       `yaml:"starting_cash"`
	StartingReputation float64       `yaml:"starting_reputation"`
	Teams              []RosterEntry `yaml:"teams"`
}

func LoadRoster(r io.Reader) (Roster, error) {
	var roster Roster
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&roster); err != nil {
		return Roster{}, fmt.Errorf("decode roster: %w", err)
	}
	for i, t := range roster.Teams {
		if t.ID == "" {
			return Roster{}, fmt.Errorf("roster entry %d has no id", i+1)
		}
	}
	return roster, nil
}

// Seed registers every roster team that does not exist yet. Existing teams are left untouched
// and reported in skipped.
func (o *Orchestrator) Seed(ctx context.Context, roster Roster, defaultCash, defaultReputation float64) (created, skipped []string, err error) {
	if roster.StartingCash > 0 {
		defaultCash = roster.StartingCash
	}
	if roster.StartingReputation > 0 {
		defaultReputation = roster.StartingReputation
	}

	var errs []error
	for _, t := range roster.Teams {
		cash, rep := t.Cash, t.Reputation
		if cash == 0 {
			cash = defaultCash
		}
		if rep == 0 {
			rep = defaultReputation
		}
		if _, regErr := o.repo.RegisterTeam(ctx, t.ID, t.Name, cash, rep); regErr != nil {
			if errors.Is(regErr, airlinesim.ErrAlreadyExists) {
				skipped = append(skipped, t.ID)
				continue
			}
			errs = append(errs, regErr)
			continue
		}
		created = append(created, t.ID)
	}
	return created, skipped, errors.Join(errs...)
}
