package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vvka-141/songplays/pkg/songplays"
)

// recentSteps is how many finished steps stay on screen when details are off.
const recentSteps = 5

type stepStartedMsg songplays.StepInfo

type stepFinishedMsg struct {
	result songplays.StepResult
	err    error
}

type runDoneMsg struct{ err error }

// ProgressModel renders the steps of one run as they execute.
type ProgressModel struct {
	spinner  spinner.Model
	keys     KeyMap
	title    string
	total    int
	current  *songplays.StepInfo
	finished []songplays.StepResult
	failed   error
	details  bool
	quitting bool
	done     bool
	cancel   context.CancelFunc
}

// NewProgressModel creates the model for a plan of steps. cancel is called
// when the user quits; the model keeps rendering until the run returns.
func NewProgressModel(title string, steps []songplays.StepInfo, cancel context.CancelFunc) ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StepIDStyle

	return ProgressModel{
		spinner: s,
		keys:    DefaultKeyMap(),
		title:   title,
		total:   len(steps),
		cancel:  cancel,
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if !m.quitting && m.cancel != nil {
				m.cancel()
			}
			m.quitting = true
		case key.Matches(msg, m.keys.Details):
			m.details = !m.details
		}
		return m, nil

	case stepStartedMsg:
		info := songplays.StepInfo(msg)
		m.current = &info
		return m, nil

	case stepFinishedMsg:
		m.current = nil
		if msg.err != nil {
			m.failed = msg.err
		} else {
			m.finished = append(m.finished, msg.result)
		}
		return m, nil

	case runDoneMsg:
		m.done = true
		m.current = nil
		if msg.err != nil && m.failed == nil {
			m.failed = msg.err
		}
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ProgressModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")

	shown := m.finished
	if !m.details && len(shown) > recentSteps {
		fmt.Fprintf(&b, "%s\n", MutedStyle.Render(fmt.Sprintf("  … %d earlier step(s)", len(shown)-recentSteps)))
		shown = shown[len(shown)-recentSteps:]
	}
	for _, r := range shown {
		b.WriteString(SuccessStyle.Render("✓ "))
		b.WriteString(StepIDStyle.Render(r.ID))
		b.WriteString(MutedStyle.Render(" " + describeResult(r)))
		b.WriteString("\n")
	}

	switch {
	case m.failed != nil:
		b.WriteString(ErrorStyle.Render("✗ " + firstLine(m.failed.Error())))
		b.WriteString("\n")
	case m.current != nil:
		fmt.Fprintf(&b, "%s %s %s\n", m.spinner.View(), StepIDStyle.Render(m.current.ID),
			MutedStyle.Render(fmt.Sprintf("[%d/%d]", m.current.Index+1, m.current.Total)))
	}

	if m.done {
		return b.String()
	}
	if m.quitting {
		b.WriteString(WarningStyle.Render("Cancelling after the current statement..."))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(HelpStyle.Render(fmt.Sprintf("%d/%d done • %s", len(m.finished), m.total, m.keys.HelpText())))
	b.WriteString("\n")
	return b.String()
}

func describeResult(r songplays.StepResult) string {
	d := r.Duration.Round(time.Millisecond)
	if r.Rows < 0 {
		return d.String()
	}
	return fmt.Sprintf("%d row(s) in %v", r.Rows, d)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
