package plan

import (
	"fmt"
	"sort"

	"github.com/vvka-141/songplays/pkg/songplays"
)

// graph is a dependency graph over step IDs. Edges point from a dependency
// to its dependent.
type graph struct {
	order    map[string]int // insertion order, used to break ties
	children map[string][]string
	parents  map[string][]string
}

func newGraph() *graph {
	return &graph{
		order:    make(map[string]int),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

func (g *graph) addNode(id string) error {
	if _, exists := g.order[id]; exists {
		return fmt.Errorf("duplicate step %q", id)
	}
	g.order[id] = len(g.order)
	return nil
}

// addEdge records that child depends on parent.
func (g *graph) addEdge(parent, child string) error {
	if _, ok := g.order[parent]; !ok {
		return fmt.Errorf("step %q depends on unknown step %q", child, parent)
	}
	if _, ok := g.order[child]; !ok {
		return fmt.Errorf("unknown step %q", child)
	}
	if parent == child {
		return fmt.Errorf("step %q depends on itself: %w", parent, songplays.ErrPlanCycle)
	}
	if !contains(g.children[parent], child) {
		g.children[parent] = append(g.children[parent], child)
		g.parents[child] = append(g.parents[child], parent)
	}
	return nil
}

// cycle returns one dependency cycle, or nil if the graph is acyclic.
func (g *graph) cycle() []string {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(g.order))
	via := make(map[string]string)
	var found []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		state[id] = active
		for _, next := range g.children[id] {
			switch state[next] {
			case unvisited:
				via[next] = id
				if dfs(next) {
					return true
				}
			case active:
				found = []string{next}
				for cur := id; cur != next; cur = via[cur] {
					found = append([]string{cur}, found...)
				}
				found = append([]string{next}, found...)
				return true
			}
		}
		state[id] = done
		return false
	}

	for _, id := range g.ids() {
		if state[id] == unvisited && dfs(id) {
			return found
		}
	}
	return nil
}

// sorted returns every node in dependency order. Nodes are grouped by level
// (longest dependency chain from a root) and ordered by insertion within a
// level, so the result is deterministic.
func (g *graph) sorted() ([]string, error) {
	if c := g.cycle(); c != nil {
		return nil, fmt.Errorf("%v: %w", c, songplays.ErrPlanCycle)
	}

	level := make(map[string]int, len(g.order))
	var levelOf func(id string) int
	levelOf = func(id string) int {
		if l, ok := level[id]; ok {
			return l
		}
		l := 0
		for _, p := range g.parents[id] {
			if pl := levelOf(p) + 1; pl > l {
				l = pl
			}
		}
		level[id] = l
		return l
	}

	ids := g.ids()
	for _, id := range ids {
		levelOf(id)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return level[ids[i]] < level[ids[j]]
	})
	return ids, nil
}

// ids returns node IDs in insertion order.
func (g *graph) ids() []string {
	ids := make([]string, len(g.order))
	for id, i := range g.order {
		ids[i] = id
	}
	return ids
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
