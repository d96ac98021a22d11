package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/songplays/pkg/songplays"
)

func testSteps(n int) []songplays.StepInfo {
	steps := make([]songplays.StepInfo, n)
	for i := range steps {
		steps[i] = songplays.StepInfo{ID: "step:" + string(rune('a'+i)), Index: i, Total: n}
	}
	return steps
}

func update(t *testing.T, m ProgressModel, msg tea.Msg) ProgressModel {
	t.Helper()
	next, _ := m.Update(msg)
	pm, ok := next.(ProgressModel)
	require.True(t, ok)
	return pm
}

func TestProgressModel_TracksSteps(t *testing.T) {
	steps := testSteps(3)
	m := NewProgressModel("songplays run", steps, nil)

	m = update(t, m, stepStartedMsg(steps[0]))
	assert.Contains(t, m.View(), "step:a")
	assert.Contains(t, m.View(), "[1/3]")

	m = update(t, m, stepFinishedMsg{result: songplays.StepResult{StepInfo: steps[0], Rows: 42, Duration: 15 * time.Millisecond}})
	view := m.View()
	assert.Contains(t, view, "✓ ")
	assert.Contains(t, view, "42 row(s) in 15ms")
	assert.Contains(t, view, "1/3 done")
}

func TestProgressModel_ShowsFailure(t *testing.T) {
	steps := testSteps(2)
	m := NewProgressModel("songplays run", steps, nil)

	m = update(t, m, stepStartedMsg(steps[1]))
	m = update(t, m, stepFinishedMsg{result: songplays.StepResult{StepInfo: steps[1]}, err: errors.New("step \"step:b\": execution failed\n  statement: INSERT")})

	view := m.View()
	assert.Contains(t, view, `✗ step "step:b": execution failed`)
	assert.NotContains(t, view, "statement: INSERT")
}

func TestProgressModel_CollapsesOlderSteps(t *testing.T) {
	steps := testSteps(8)
	m := NewProgressModel("songplays run", steps, nil)
	for _, s := range steps {
		m = update(t, m, stepFinishedMsg{result: songplays.StepResult{StepInfo: s, Rows: -1}})
	}

	view := m.View()
	assert.Contains(t, view, "3 earlier step(s)")
	assert.NotContains(t, view, "step:a")
	assert.Contains(t, view, "step:h")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	assert.Contains(t, m.View(), "step:a")
}

func TestProgressModel_QuitCancelsOnce(t *testing.T) {
	calls := 0
	m := NewProgressModel("songplays run", testSteps(1), func() { calls++ })

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.Equal(t, 1, calls)
	assert.Contains(t, m.View(), "Cancelling")
}

func TestProgressModel_RunDoneQuits(t *testing.T) {
	m := NewProgressModel("songplays run", testSteps(1), nil)

	next, cmd := m.Update(runDoneMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.NotContains(t, next.View(), "done •")
}

func TestProgressDisplay_FinishWithoutPlan(t *testing.T) {
	d := NewProgressDisplay("songplays run", func() {})
	d.StepStarted(songplays.StepInfo{ID: "ignored"})
	assert.NoError(t, d.Finish(nil))
}

func TestProgressDisplay_RunsProgram(t *testing.T) {
	var out strings.Builder
	d := NewProgressDisplay("songplays run", func() {},
		tea.WithInput(nil), tea.WithOutput(&out), tea.WithoutSignalHandler())

	steps := testSteps(2)
	d.PlanReady(steps)
	for _, s := range steps {
		d.StepStarted(s)
		d.StepFinished(songplays.StepResult{StepInfo: s, Rows: 1}, nil)
	}
	require.NoError(t, d.Finish(nil))
	assert.Contains(t, out.String(), "songplays run")
}
