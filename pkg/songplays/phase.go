package songplays

import (
	"fmt"
	"strings"
)

// Phase groups plan steps by what they do to the warehouse.
type Phase int

const (
	PhaseDrop      Phase = iota // DROP TABLE IF EXISTS
	PhaseCreate                 // CREATE SCHEMA / CREATE TABLE IF NOT EXISTS
	PhaseLoad                   // bulk load of staging tables
	PhaseTransform              // insert-select into the star schema
)

// AllPhases is the full reload: reset, load, transform.
var AllPhases = []Phase{PhaseDrop, PhaseCreate, PhaseLoad, PhaseTransform}

// ResetPhases drops and recreates every table.
var ResetPhases = []Phase{PhaseDrop, PhaseCreate}

func (p Phase) String() string {
	switch p {
	case PhaseDrop:
		return "drop"
	case PhaseCreate:
		return "create"
	case PhaseLoad:
		return "load"
	case PhaseTransform:
		return "transform"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Destructive reports whether the phase discards existing data.
func (p Phase) Destructive() bool {
	return p == PhaseDrop
}

// ParsePhase maps a phase name to a Phase.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "drop":
		return PhaseDrop, nil
	case "create":
		return PhaseCreate, nil
	case "load", "copy":
		return PhaseLoad, nil
	case "transform", "insert":
		return PhaseTransform, nil
	default:
		return 0, fmt.Errorf("unknown phase %q: %w", s, ErrInvalidConfig)
	}
}
