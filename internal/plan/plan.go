// Package plan turns the table set into an ordered list of executable steps.
//
// Steps declare their dependencies explicitly: a table is created after it is
// dropped, staging tables are loaded after they exist, and every transform
// runs after the staging tables it reads are loaded and its own table exists.
// All creates follow all drops, so a reset never leaves a mix of old and new
// tables. The executed order is a deterministic topological sort of those
// declarations: drop, create, load, transform.
package plan

import (
	"fmt"

	"github.com/vvka-141/songplays/internal/dialect"
	"github.com/vvka-141/songplays/internal/schema"
	"github.com/vvka-141/songplays/internal/sqlgen"
	"github.com/vvka-141/songplays/pkg/songplays"
)

// SchemaStepID identifies the CREATE SCHEMA step.
const SchemaStepID = "create:schema"

// Step is one unit of work: a single statement or one client-side load.
type Step struct {
	ID    string
	Phase songplays.Phase
	Table string

	// SQL is the statement to execute. Empty when Load is set.
	SQL string

	// Load is set for staging loads the client performs itself.
	Load *Load

	DependsOn []string
}

// Load describes a client-side bulk load of a staging table.
type Load struct {
	Schema string
	Table  schema.Table
	Spec   dialect.CopySpec
}

// Plan is an ordered list of steps.
type Plan struct {
	Steps []Step
}

// StepID returns the conventional ID of a step: "<phase>:<table>".
func StepID(phase songplays.Phase, table string) string {
	return phase.String() + ":" + table
}

// Build declares every step for the builder's dialect and sources, orders
// them, and keeps the steps of the given phases (all when none are given).
func Build(b *sqlgen.Builder, phases ...songplays.Phase) (*Plan, error) {
	steps, err := Declare(b, phases...)
	if err != nil {
		return nil, err
	}
	ordered, err := Order(steps)
	if err != nil {
		return nil, err
	}
	return (&Plan{Steps: ordered}).Select(phases...), nil
}

// Declare returns the unordered step declarations. Declaration order is
// used only to break ties between independent steps. Load statements are
// rendered only when the load phase is among phases, so plans without it
// need no sources.
func Declare(b *sqlgen.Builder, phases ...songplays.Phase) ([]Step, error) {
	renderLoads := len(phases) == 0
	for _, ph := range phases {
		if ph == songplays.PhaseLoad {
			renderLoads = true
		}
	}

	tables := schema.All()
	var steps []Step
	var drops, creates []string

	for _, t := range tables {
		id := StepID(songplays.PhaseDrop, t.Name)
		drops = append(drops, id)
		steps = append(steps, Step{ID: id, Phase: songplays.PhaseDrop, Table: t.Name, SQL: b.Drop(t)})
	}

	var schemaDeps []string
	if sql, ok := b.CreateSchema(); ok {
		steps = append(steps, Step{ID: SchemaStepID, Phase: songplays.PhaseCreate, SQL: sql, DependsOn: drops})
		schemaDeps = []string{SchemaStepID}
	}

	for _, t := range tables {
		id := StepID(songplays.PhaseCreate, t.Name)
		creates = append(creates, id)
		deps := append(append([]string{}, drops...), schemaDeps...)
		steps = append(steps, Step{ID: id, Phase: songplays.PhaseCreate, Table: t.Name, SQL: b.Create(t), DependsOn: deps})
	}

	for _, t := range schema.OfKind(schema.Staging) {
		step := Step{
			ID:        StepID(songplays.PhaseLoad, t.Name),
			Phase:     songplays.PhaseLoad,
			Table:     t.Name,
			DependsOn: []string{StepID(songplays.PhaseCreate, t.Name)},
		}
		switch {
		case !renderLoads:
		case b.Dialect().ServerSideCopy():
			sql, err := b.Copy(t)
			if err != nil {
				return nil, err
			}
			step.SQL = sql
		default:
			spec, err := b.CopySpec(t)
			if err != nil {
				return nil, err
			}
			step.Load = &Load{Schema: b.Schema(), Table: t, Spec: spec}
		}
		steps = append(steps, step)
	}

	for _, t := range tables {
		if t.Kind == schema.Staging {
			continue
		}
		sql, err := b.Insert(t)
		if err != nil {
			return nil, err
		}
		deps := []string{StepID(songplays.PhaseCreate, t.Name)}
		for _, src := range sqlgen.SourcesOf(t.Name) {
			deps = append(deps, StepID(songplays.PhaseLoad, src))
		}
		steps = append(steps, Step{
			ID:        StepID(songplays.PhaseTransform, t.Name),
			Phase:     songplays.PhaseTransform,
			Table:     t.Name,
			SQL:       sql,
			DependsOn: deps,
		})
	}

	return steps, nil
}

// Order sorts steps so that every step follows its dependencies.
// Independent steps keep their relative input order.
func Order(steps []Step) ([]Step, error) {
	g := newGraph()
	byID := make(map[string]Step, len(steps))
	for _, s := range steps {
		if err := g.addNode(s.ID); err != nil {
			return nil, err
		}
		byID[s.ID] = s
	}
	for _, s := range steps {
		for _, dep := range s.DependsOn {
			if err := g.addEdge(dep, s.ID); err != nil {
				return nil, err
			}
		}
	}

	ids, err := g.sorted()
	if err != nil {
		return nil, err
	}
	out := make([]Step, len(ids))
	for i, id := range ids {
		out[i] = byID[id]
	}
	return out, nil
}

// Select returns the steps belonging to the given phases, in plan order.
// Dependencies on steps outside the selection are assumed satisfied by an
// earlier run. No phases selects everything.
func (p *Plan) Select(phases ...songplays.Phase) *Plan {
	if len(phases) == 0 {
		return &Plan{Steps: append([]Step(nil), p.Steps...)}
	}
	want := make(map[songplays.Phase]bool, len(phases))
	for _, ph := range phases {
		want[ph] = true
	}
	out := &Plan{}
	for _, s := range p.Steps {
		if want[s.Phase] {
			out.Steps = append(out.Steps, s)
		}
	}
	return out
}

// Destructive reports whether any step discards existing data.
func (p *Plan) Destructive() bool {
	for _, s := range p.Steps {
		if s.Phase.Destructive() {
			return true
		}
	}
	return false
}

// Infos returns progress descriptors for every step.
func (p *Plan) Infos() []songplays.StepInfo {
	infos := make([]songplays.StepInfo, len(p.Steps))
	for i, s := range p.Steps {
		infos[i] = s.Info(i, len(p.Steps))
	}
	return infos
}

// Info returns the progress descriptor of the step at position index.
func (s Step) Info(index, total int) songplays.StepInfo {
	return songplays.StepInfo{ID: s.ID, Phase: s.Phase, Table: s.Table, Index: index, Total: total}
}

// Statement returns the SQL of the step, or a description of the client-side
// load for steps that have no statement.
func (s Step) Statement() string {
	if s.Load == nil {
		return s.SQL
	}
	return fmt.Sprintf("-- client-side load of %s from %s (format %s)",
		dialect.Qualify(s.Load.Schema, s.Load.Table.Name), s.Load.Spec.Source, s.Load.Spec.JSONPaths)
}
